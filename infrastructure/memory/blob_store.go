package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"taskhub/domain/ports"
)

type blobEntry struct {
	data []byte
	info ports.BlobInfo
}

// BlobStore keeps payloads in process memory. Test-only.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blobEntry
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]blobEntry)}
}

var _ ports.BlobStore = (*BlobStore)(nil)

func (s *BlobStore) Put(ctx context.Context, payload io.Reader, size int64, fileName, contentType string) (string, error) {
	data, err := io.ReadAll(payload)
	if err != nil {
		return "", err
	}

	blobID := uuid.New().String()
	s.mu.Lock()
	s.blobs[blobID] = blobEntry{
		data: data,
		info: ports.BlobInfo{FileName: fileName, ContentType: contentType, Size: int64(len(data))},
	}
	s.mu.Unlock()
	return blobID, nil
}

func (s *BlobStore) Get(ctx context.Context, blobID string) (io.ReadCloser, ports.BlobInfo, error) {
	s.mu.RLock()
	entry, ok := s.blobs[blobID]
	s.mu.RUnlock()
	if !ok {
		return nil, ports.BlobInfo{}, ports.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(entry.data)), entry.info, nil
}

func (s *BlobStore) Delete(ctx context.Context, blobID string) error {
	s.mu.Lock()
	delete(s.blobs, blobID)
	s.mu.Unlock()
	return nil
}

func (s *BlobStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.blobs))
	for id := range s.blobs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *BlobStore) ProviderName() string {
	return "memory"
}

// Drop removes a blob without going through Delete semantics. Tests use it
// to simulate a dangling attachment reference.
func (s *BlobStore) Drop(blobID string) {
	s.mu.Lock()
	delete(s.blobs, blobID)
	s.mu.Unlock()
}

// Len reports how many blobs are stored.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
