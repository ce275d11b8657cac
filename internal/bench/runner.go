package bench

import (
	"github.com/arkilian/codecbench/internal/codec"
	"github.com/arkilian/codecbench/internal/config"
	"github.com/arkilian/codecbench/internal/membudget"
	"github.com/arkilian/codecbench/internal/timing"
)

// Runner benchmarks a list of files and aggregates their results.
type Runner struct {
	cfg     *config.Config
	rep     *Reporter
	clock   timing.Clock
	prober  *membudget.Prober
	session *Session
}

// NewRunner builds a runner for the configured codec and mode. clock and
// prober may be nil for the production defaults.
func NewRunner(cfg *config.Config, rep *Reporter, clock timing.Clock, prober *membudget.Prober) (*Runner, error) {
	comp, err := codec.New(cfg.Codec, codec.Options{TableLog: cfg.TableLog})
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:     cfg,
		rep:     rep,
		clock:   clock,
		prober:  prober,
		session: NewSession(cfg, comp, clock, rep, prober),
	}, nil
}

// Run benchmarks every file in order. A failing file is reported and
// skipped; totals over the files that completed stay valid and the
// grand total line is still emitted when more than one completed. The
// returned error is the first per-file failure, kept so the caller can
// map it to an exit code.
func (r *Runner) Run(paths []string) ([]*FileResult, *Totals, error) {
	r.rep.Iterations(r.cfg.Iterations)

	var results []*FileResult
	var firstErr error
	totals := &Totals{}

	for _, path := range paths {
		var (
			res *FileResult
			err error
		)
		if r.cfg.Mode == config.ModeCore {
			res, err = r.session.RunCore(path)
		} else {
			res, err = r.session.RunFile(path)
		}
		if err != nil {
			r.rep.FileError(path, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, res)
		totals.Add(res)
	}

	if totals.Files > 1 {
		r.rep.TotalLine(totals)
	}
	return results, totals, firstErr
}
