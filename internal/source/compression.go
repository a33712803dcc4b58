package source

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies how the input bytes are wrapped.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGZ
	CompressionBZ2
	CompressionXZ
	CompressionZSTD
)

// String returns a human-readable string representation of the Compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGZ:
		return "gzip"
	case CompressionBZ2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

var (
	magicGZ   = []byte{0x1f, 0x8b}
	magicBZ2  = []byte("BZh")
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZSTD = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// CompressionFromPath infers the compression from the file suffix.
func CompressionFromPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGZ
	case ".bz2":
		return CompressionBZ2
	case ".xz":
		return CompressionXZ
	case ".zst":
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// Sniff peeks at the first bytes of r and reports the compression they announce.
// The returned reader yields the full stream, peeked bytes included.
func Sniff(r io.Reader) (Compression, io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(magicXZ))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return CompressionNone, br, err
	}

	switch {
	case bytes.HasPrefix(head, magicGZ):
		return CompressionGZ, br, nil
	case bytes.HasPrefix(head, magicXZ):
		return CompressionXZ, br, nil
	case bytes.HasPrefix(head, magicZSTD):
		return CompressionZSTD, br, nil
	case bytes.HasPrefix(head, magicBZ2):
		return CompressionBZ2, br, nil
	}
	return CompressionNone, br, nil
}

// Decompress wraps r with a reader for c. The returned close function
// releases decoder resources and must always be called.
func Decompress(c Compression, r io.Reader) (io.Reader, func() error, error) {
	switch c {
	case CompressionNone:
		return r, func() error { return nil }, nil

	case CompressionGZ:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case CompressionBZ2:
		return bzip2.NewReader(r), func() error { return nil }, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, func() error { return nil }, nil

	case CompressionZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression %v", c)
	}
}
