package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Fetcher coordinates parallel corpus downloads from object storage.
// Already-downloaded files in the cache directory are reused so repeated
// benchmark runs skip the transfer.
type Fetcher struct {
	storage     ObjectStorage
	concurrency int
	cacheDir    string
}

// FetchResult contains the outcome of a corpus fetch.
type FetchResult struct {
	// LocalPaths maps object paths to their local copies.
	LocalPaths map[string]string
	// Errors maps object paths to their download failures.
	Errors    map[string]error
	CacheHits int
	Downloads int
}

// NewFetcher creates a corpus fetcher.
// concurrency limits parallel downloads; cacheDir receives the files.
func NewFetcher(store ObjectStorage, concurrency int, cacheDir string) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		storage:     store,
		concurrency: concurrency,
		cacheDir:    cacheDir,
	}
}

// Fetch downloads the given objects in parallel and returns where each
// one landed. Individual failures are collected per object rather than
// aborting the batch, so a missing corpus file fails only its own run.
func (f *Fetcher) Fetch(ctx context.Context, objectPaths []string) (*FetchResult, error) {
	result := &FetchResult{
		LocalPaths: make(map[string]string),
		Errors:     make(map[string]error),
	}
	if len(objectPaths) == 0 {
		return result, nil
	}

	var pending []string
	for _, path := range objectPaths {
		local := f.localPath(path)
		if _, err := os.Stat(local); err == nil {
			result.LocalPaths[path] = local
			result.CacheHits++
			continue
		}
		pending = append(pending, path)
	}

	sem := semaphore.NewWeighted(int64(f.concurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, path := range pending {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			result.Errors[path] = fmt.Errorf("semaphore acquire failed: %w", err)
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(path, local string) {
			defer sem.Release(1)
			defer wg.Done()

			if err := f.storage.Download(ctx, path, local); err != nil {
				mu.Lock()
				result.Errors[path] = err
				mu.Unlock()
				return
			}

			mu.Lock()
			result.LocalPaths[path] = local
			result.Downloads++
			mu.Unlock()
		}(path, f.localPath(path))
	}

	wg.Wait()
	return result, nil
}

// localPath returns the cache location for an object. Only the base name
// is kept, which also rules out directory traversal via object keys.
func (f *Fetcher) localPath(objectPath string) string {
	sanitized := filepath.Base(filepath.FromSlash(objectPath))
	if f.cacheDir == "" {
		return sanitized
	}
	return filepath.Join(f.cacheDir, sanitized)
}
