package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"taskhub/domain/ports"
)

// LocalBlobStore keeps payloads on the local filesystem, one file per blob
// id plus a JSON sidecar with the original file name and content type.
type LocalBlobStore struct {
	basePath string
}

type LocalBlobStoreConfig struct {
	BasePath string // ./uploads
}

const metaSuffix = ".meta"

type blobMeta struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

func NewLocalBlobStore(config LocalBlobStoreConfig) (ports.BlobStore, error) {
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalBlobStore{basePath: config.BasePath}, nil
}

func (l *LocalBlobStore) Put(ctx context.Context, payload io.Reader, size int64, fileName, contentType string) (string, error) {
	blobID := uuid.New().String()
	fullPath := filepath.Join(l.basePath, blobID)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, payload)
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	meta := blobMeta{FileName: fileName, ContentType: contentType, Size: written}
	data, err := json.Marshal(meta)
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(fullPath+metaSuffix, data, 0644); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}

	return blobID, nil
}

func (l *LocalBlobStore) Get(ctx context.Context, blobID string) (io.ReadCloser, ports.BlobInfo, error) {
	fullPath := filepath.Join(l.basePath, blobID)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.BlobInfo{}, ports.ErrBlobNotFound
		}
		return nil, ports.BlobInfo{}, fmt.Errorf("failed to open file: %w", err)
	}

	info := ports.BlobInfo{ContentType: "application/octet-stream"}
	if data, err := os.ReadFile(fullPath + metaSuffix); err == nil {
		var meta blobMeta
		if json.Unmarshal(data, &meta) == nil {
			info = ports.BlobInfo(meta)
		}
	}
	if info.Size == 0 {
		if stat, err := file.Stat(); err == nil {
			info.Size = stat.Size()
		}
	}

	return file, info, nil
}

func (l *LocalBlobStore) Delete(ctx context.Context, blobID string) error {
	fullPath := filepath.Join(l.basePath, blobID)

	// An absent blob counts as deleted.
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	os.Remove(fullPath + metaSuffix)
	return nil
}

func (l *LocalBlobStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	var blobIDs []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), metaSuffix) {
			continue
		}
		blobIDs = append(blobIDs, entry.Name())
	}
	return blobIDs, nil
}

func (l *LocalBlobStore) ProviderName() string {
	return "local"
}
