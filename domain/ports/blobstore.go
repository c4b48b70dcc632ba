package ports

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned by Get and Delete when the blob id is unknown.
// A task attachment whose blob is gone is a dangling reference; callers
// report it as "stored file missing", not as a missing attachment record.
var ErrBlobNotFound = errors.New("blob not found")

// BlobInfo describes a stored payload.
type BlobInfo struct {
	FileName    string
	ContentType string
	Size        int64
}

// BlobStore owns binary payload lifetime. Task attachments reference blobs
// by opaque id but never own them.
type BlobStore interface {
	// Put uploads the payload and returns its opaque blob id.
	Put(ctx context.Context, payload io.Reader, size int64, fileName, contentType string) (string, error)

	// Get opens the payload for reading. Returns ErrBlobNotFound if absent.
	Get(ctx context.Context, blobID string) (io.ReadCloser, BlobInfo, error)

	// Delete removes the payload. Deleting an absent blob is not an error.
	Delete(ctx context.Context, blobID string) error

	// List returns every stored blob id. Used by the orphan sweeper.
	List(ctx context.Context) ([]string, error)

	// ProviderName identifies the backend (s3, local, memory).
	ProviderName() string
}
