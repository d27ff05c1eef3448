package sink

import (
	"context"
	"path/filepath"

	"github.com/ralt/repodiff/internal/utils"
)

// FileStore stores blobs below a local directory
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Put implements Store. Files are replaced atomically.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return utils.WriteFileAtomic(s.Location(key), data, 0644)
}

// Location implements Store
func (s *FileStore) Location(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// NewFileSystemSink creates a sink writing reports below dir
func NewFileSystemSink(dir string, opts ...Option) *BlobSink {
	return New(NewFileStore(dir), opts...)
}
