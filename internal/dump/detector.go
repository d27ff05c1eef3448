package dump

import "bytes"

// Encoding is the on-disk encoding of a raw export document
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingJSON
	EncodingGzip
	EncodingZstd
	EncodingXz
)

// Magic bytes for dump detection
var (
	// Gzip magic bytes
	gzipMagic = []byte{0x1F, 0x8B}

	// Zstandard magic bytes
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

	// XZ magic bytes
	xzMagic = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
)

// String returns the string representation of Encoding
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingGzip:
		return "gzip"
	case EncodingZstd:
		return "zstd"
	case EncodingXz:
		return "xz"
	default:
		return "unknown"
	}
}

// Extension returns the file name suffix used for the encoding
func (e Encoding) Extension() string {
	switch e {
	case EncodingJSON:
		return ".json"
	case EncodingGzip:
		return ".json.gz"
	case EncodingZstd:
		return ".json.zst"
	case EncodingXz:
		return ".json.xz"
	default:
		return ""
	}
}

// DetectEncoding determines the encoding of a dump from its leading bytes
func DetectEncoding(header []byte) Encoding {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return EncodingGzip
	case bytes.HasPrefix(header, zstdMagic):
		return EncodingZstd
	case bytes.HasPrefix(header, xzMagic):
		return EncodingXz
	}

	// Plain JSON documents start with an object, possibly after whitespace
	trimmed := bytes.TrimLeft(header, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("{")) {
		return EncodingJSON
	}

	return EncodingUnknown
}
