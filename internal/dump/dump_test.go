package dump

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const document = `{"packages": [{"name": "bash", "version": "5.2", "arch": "x86_64"}]}`

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		header []byte
		want   Encoding
	}{
		{[]byte(`{"packages": []}`), EncodingJSON},
		{[]byte("\n  {\"packages\": []}"), EncodingJSON},
		{[]byte{0x1F, 0x8B, 0x08}, EncodingGzip},
		{[]byte{0x28, 0xB5, 0x2F, 0xFD, 0x00}, EncodingZstd},
		{[]byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00, 0x00}, EncodingXz},
		{[]byte("<html>"), EncodingUnknown},
		{nil, EncodingUnknown},
	}

	for _, tt := range tests {
		if got := DetectEncoding(tt.header); got != tt.want {
			t.Errorf("DetectEncoding(%q) = %s, want %s", tt.header, got, tt.want)
		}
	}
}

func TestWriteAndReadPlain(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, "p10", []byte(document), false)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Base(path) != "p10_packages.json" {
		t.Errorf("unexpected dump name %s", path)
	}

	found, err := Find(dir, "p10")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found != path {
		t.Errorf("Find returned %s, want %s", found, path)
	}

	data, err := Read(found)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != document {
		t.Errorf("unexpected document %q", data)
	}
}

func TestWriteAndReadGzip(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, "sisyphus", []byte(document), true)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Base(path) != "sisyphus_packages.json.gz" {
		t.Errorf("unexpected dump name %s", path)
	}

	data, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != document {
		t.Errorf("unexpected document %q", data)
	}
}

func TestReadZstdAndXz(t *testing.T) {
	dir := t.TempDir()

	var zbuf bytes.Buffer
	zw, err := zstd.NewWriter(&zbuf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := zw.Write([]byte(document)); err != nil {
		t.Fatalf("zstd write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}

	var xbuf bytes.Buffer
	xw, err := xz.NewWriter(&xbuf)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := xw.Write([]byte(document)); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	if err := xw.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}

	files := map[string][]byte{
		FileName("p9", EncodingZstd): zbuf.Bytes(),
		FileName("p10", EncodingXz):  xbuf.Bytes(),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	for _, repo := range []string{"p9", "p10"} {
		path, err := Find(dir, repo)
		if err != nil {
			t.Fatalf("Find(%s) failed: %v", repo, err)
		}
		data, err := Read(path)
		if err != nil {
			t.Fatalf("Read(%s) failed: %v", path, err)
		}
		if string(data) != document {
			t.Errorf("%s: unexpected document %q", path, data)
		}
	}
}

func TestWriteReplacesDumpInOtherEncoding(t *testing.T) {
	dir := t.TempDir()
	older := `{"packages": [{"name": "old", "version": "1", "arch": "x86_64"}]}`
	newer := `{"packages": [{"name": "new", "version": "2", "arch": "x86_64"}]}`

	if _, err := Write(dir, "p10", []byte(older), false); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := Write(dir, "sisyphus", []byte(older), false); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	gzPath, err := Write(dir, "p10", []byte(newer), true)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "p10_packages.json")); !os.IsNotExist(err) {
		t.Errorf("plain dump should have been removed, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sisyphus_packages.json")); err != nil {
		t.Errorf("dump of another repository was touched: %v", err)
	}

	found, err := Find(dir, "p10")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found != gzPath {
		t.Fatalf("Find returned %s, want %s", found, gzPath)
	}
	data, err := Read(found)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != newer {
		t.Errorf("read stale document %q", data)
	}

	// And back to plain
	if _, err := Write(dir, "p10", []byte(older), false); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(gzPath); !os.IsNotExist(err) {
		t.Errorf("gzip dump should have been removed, stat err = %v", err)
	}
}

func TestFindMissing(t *testing.T) {
	_, err := Find(t.TempDir(), "p9")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadUnknownEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p9_packages.json")
	if err := os.WriteFile(path, []byte("<html>error</html>"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}
