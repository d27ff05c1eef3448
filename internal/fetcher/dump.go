package fetcher

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.trai.ch/zerr"

	"github.com/ralt/repodiff/internal/dump"
)

// DumpFetcher reads previously saved export documents from a directory
// instead of calling the API.
type DumpFetcher struct {
	dir string
}

// NewDumpFetcher creates a fetcher reading dumps from dir
func NewDumpFetcher(dir string) *DumpFetcher {
	return &DumpFetcher{dir: dir}
}

// Fetch implements Fetcher
func (f *DumpFetcher) Fetch(ctx context.Context, repositoryID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := dump.Find(f.dir, repositoryID)
	if err != nil {
		return nil, zerr.With(err, "dump_dir", f.dir)
	}

	logrus.Infof("Loading packages for %s from %s", repositoryID, path)
	data, err := dump.Read(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read dump"), "path", path)
	}
	return data, nil
}
