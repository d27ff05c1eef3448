// Package dump stores and loads raw export documents on disk, optionally
// compressed. Dump files are named <repository>_packages.json with an extra
// .gz, .zst or .xz suffix when compressed.
package dump

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ralt/repodiff/internal/utils"
)

// ErrNotFound is returned when no dump exists for a repository
var ErrNotFound = errors.New("dump not found")

// readOrder is the order candidate dump files are looked up in
var readOrder = []Encoding{EncodingJSON, EncodingGzip, EncodingZstd, EncodingXz}

// FileName returns the dump file name of a repository for an encoding
func FileName(repository string, enc Encoding) string {
	return repository + "_packages" + enc.Extension()
}

// Write saves a raw document for repository into dir, gzip-compressed when
// compress is set, and returns the written path. Existing dumps of the
// repository in other encodings are removed.
func Write(dir, repository string, data []byte, compress bool) (string, error) {
	enc := EncodingJSON
	if compress {
		compressed, err := utils.GzipCompress(data)
		if err != nil {
			return "", fmt.Errorf("failed to compress dump: %w", err)
		}
		data = compressed
		enc = EncodingGzip
	}

	path := filepath.Join(dir, FileName(repository, enc))
	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write dump: %w", err)
	}

	// Drop dumps of the same repository in other encodings so Find never
	// returns an older document.
	for _, other := range readOrder {
		if other == enc {
			continue
		}
		stale := filepath.Join(dir, FileName(repository, other))
		if err := os.Remove(stale); err == nil {
			logrus.Debugf("Removed stale dump %s", stale)
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to remove stale dump: %w", err)
		}
	}

	logrus.Infof("Saved packages from %s branch to %s", repository, path)
	return path, nil
}

// Find returns the path of the first existing dump of repository in dir
func Find(dir, repository string) (string, error) {
	for _, enc := range readOrder {
		path := filepath.Join(dir, FileName(repository, enc))
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrNotFound, repository, dir)
}

// Read loads a dump file and returns the decoded JSON document. The encoding
// is detected from the file contents, not the name.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	enc := DetectEncoding(data)
	logrus.Debugf("Reading %s dump: %s", enc, path)

	switch enc {
	case EncodingJSON:
		return data, nil
	case EncodingGzip:
		return utils.GzipDecompress(data)
	case EncodingZstd:
		return utils.ZstdDecompress(data)
	case EncodingXz:
		return utils.XzDecompress(data)
	default:
		return nil, fmt.Errorf("unrecognized dump encoding: %s", path)
	}
}
