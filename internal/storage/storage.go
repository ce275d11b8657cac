// Package storage provides object storage abstractions for fetching
// benchmark corpora and publishing result files.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrDownloadFailed = errors.New("download failed")
	ErrUploadFailed   = errors.New("upload failed")
)

// ObjectStorage abstracts the object store holding benchmark corpora.
// Implementations include S3 and local filesystem for testing.
type ObjectStorage interface {
	// Download fetches an object to the local filesystem.
	// objectPath is the source path in object storage.
	// localPath is the destination path on the local filesystem.
	Download(ctx context.Context, objectPath, localPath string) error

	// Upload stores a local file as an object. Used to publish result
	// files next to the corpus they describe.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns all object paths under the given prefix.
	// Used to expand corpus prefixes into individual benchmark inputs.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}
