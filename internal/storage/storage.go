package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"seqtrack/internal/config"
	"seqtrack/internal/errors"
	"seqtrack/ports"
)

// StorageProvider represents different storage backends
type StorageProvider string

const (
	StorageLocal  StorageProvider = "local"
	StorageS3     StorageProvider = "s3"
	StorageMemory StorageProvider = "memory"
)

// New builds the blob store selected by cfg
func New(ctx context.Context, cfg config.BlobConfig) (ports.BlobStore, error) {
	switch cfg.Driver {
	case config.BlobLocal, "":
		return NewLocalBlobStore(cfg.Root)
	case config.BlobMemory:
		return NewMemoryBlobStore(), nil
	case config.BlobS3:
		return NewS3BlobStore(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		})
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unknown blob driver %q", cfg.Driver))
	}
}

// ArchiveKey returns the object key for an uploaded file
func ArchiveKey(id, filename string) string {
	return "uploads/" + id + strings.ToLower(filepath.Ext(filename))
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return errors.InvalidInput(fmt.Sprintf("invalid blob key %q", key))
	}
	return nil
}

// LocalBlobStore implements ports.BlobStore using the local filesystem
type LocalBlobStore struct {
	basePath string
}

// NewLocalBlobStore creates a new local blob store
func NewLocalBlobStore(basePath string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.StoreError("failed to create base directory", err)
	}

	return &LocalBlobStore{
		basePath: basePath,
	}, nil
}

// Provider returns the storage provider type
func (lbs *LocalBlobStore) Provider() StorageProvider {
	return StorageLocal
}

// Put writes r to the file for key
func (lbs *LocalBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := validateKey(key); err != nil {
		return err
	}
	filePath := lbs.keyToPath(key)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.StoreError(fmt.Sprintf("failed to create directory %s", dir), err)
	}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.StoreError(fmt.Sprintf("failed to create file %s", filePath), err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(filePath)
		return errors.StoreError(fmt.Sprintf("failed to write file %s", filePath), err)
	}
	if err := f.Close(); err != nil {
		return errors.StoreError(fmt.Sprintf("failed to write file %s", filePath), err)
	}

	return nil
}

// Get opens the file for key
func (lbs *LocalBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	filePath := lbs.keyToPath(key)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("blob " + key)
		}
		return nil, errors.StoreError(fmt.Sprintf("failed to open file %s", filePath), err)
	}

	return file, nil
}

// Delete removes the file for key; a missing file is not an error
func (lbs *LocalBlobStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	filePath := lbs.keyToPath(key)

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return errors.StoreError(fmt.Sprintf("failed to delete file %s", filePath), err)
	}

	return nil
}

// keyToPath converts an S3-style key to a filesystem path
func (lbs *LocalBlobStore) keyToPath(key string) string {
	return filepath.Join(lbs.basePath, filepath.FromSlash(key))
}

// MemoryBlobStore keeps blobs in a map
type MemoryBlobStore struct {
	blobs map[string][]byte
	mu    sync.RWMutex
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Provider() StorageProvider {
	return StorageMemory
}

func (m *MemoryBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.StoreError("failed to read blob", err)
	}
	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("blob " + key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}

// Len reports how many blobs are stored
func (m *MemoryBlobStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
