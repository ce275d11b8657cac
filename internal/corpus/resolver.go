package corpus

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/arkilian/codecbench/internal/config"
	benchErrors "github.com/arkilian/codecbench/internal/errors"
	"github.com/arkilian/codecbench/internal/storage"
)

const remoteScheme = "s3://"

// fetchConcurrency bounds parallel corpus downloads.
const fetchConcurrency = 4

// Resolver turns benchmark arguments into local file paths. Plain paths
// pass through untouched; s3://bucket/key references are downloaded into
// the work directory first, and s3://bucket/prefix/ references expand to
// every object under the prefix.
type Resolver struct {
	workDir  string
	newStore func(ctx context.Context, bucket string) (storage.ObjectStorage, error)
	stores   map[string]storage.ObjectStorage
}

// NewResolver creates a resolver that downloads remote corpora into
// cfg.WorkDir using the configured storage backend.
func NewResolver(cfg *config.Config) *Resolver {
	r := &Resolver{
		workDir: cfg.WorkDir,
		stores:  make(map[string]storage.ObjectStorage),
	}
	storageCfg := cfg.Storage
	r.newStore = func(ctx context.Context, bucket string) (storage.ObjectStorage, error) {
		if storageCfg.Type == "local" {
			// The bucket name maps to a directory under the local root,
			// which keeps s3:// arguments testable without AWS.
			return storage.NewLocalStorage(storageCfg.Path + "/" + bucket)
		}
		return storage.NewS3Storage(ctx, bucket, storage.S3Config{
			Region:   storageCfg.S3.Region,
			Endpoint: storageCfg.S3.Endpoint,
		})
	}
	return r
}

// Resolve maps each argument to a local path, downloading what it must.
// Order is preserved; a prefix reference contributes its objects in
// listing order.
func (r *Resolver) Resolve(ctx context.Context, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, remoteScheme) {
			paths = append(paths, arg)
			continue
		}

		local, err := r.resolveRemote(ctx, arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, local...)
	}
	return paths, nil
}

func (r *Resolver) resolveRemote(ctx context.Context, ref string) ([]string, error) {
	trimmed := strings.TrimPrefix(ref, remoteScheme)
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return nil, benchErrors.NewConfigError(
			fmt.Sprintf("malformed corpus reference %q, want s3://bucket/key", ref))
	}

	store, err := r.store(ctx, bucket)
	if err != nil {
		return nil, err
	}

	objects := []string{key}
	if strings.HasSuffix(key, "/") {
		objects, err = store.ListObjects(ctx, key)
		if err != nil {
			return nil, benchErrors.NewStorageError(benchErrors.CodeDownloadFailed,
				fmt.Sprintf("cannot list corpus prefix %s", ref), err)
		}
		if len(objects) == 0 {
			return nil, benchErrors.NewStorageError(benchErrors.CodeObjectNotFound,
				fmt.Sprintf("no corpus objects under %s", ref), nil)
		}
	}

	fetcher := storage.NewFetcher(store, fetchConcurrency, r.workDir)
	result, err := fetcher.Fetch(ctx, objects)
	if err != nil {
		return nil, benchErrors.NewStorageError(benchErrors.CodeDownloadFailed,
			fmt.Sprintf("corpus fetch from %s failed", ref), err)
	}

	paths := make([]string, 0, len(objects))
	for _, obj := range objects {
		local, ok := result.LocalPaths[obj]
		if !ok {
			fetchErr := result.Errors[obj]
			code := benchErrors.CodeDownloadFailed
			if stderrors.Is(fetchErr, storage.ErrObjectNotFound) {
				code = benchErrors.CodeObjectNotFound
			}
			return nil, benchErrors.NewStorageError(code,
				fmt.Sprintf("cannot fetch %s%s/%s", remoteScheme, bucket, obj), fetchErr)
		}
		paths = append(paths, local)
	}
	return paths, nil
}

func (r *Resolver) store(ctx context.Context, bucket string) (storage.ObjectStorage, error) {
	if store, ok := r.stores[bucket]; ok {
		return store, nil
	}
	store, err := r.newStore(ctx, bucket)
	if err != nil {
		return nil, benchErrors.NewStorageError(benchErrors.CodeDownloadFailed,
			fmt.Sprintf("cannot open storage for bucket %s", bucket), err)
	}
	r.stores[bucket] = store
	return store, nil
}
