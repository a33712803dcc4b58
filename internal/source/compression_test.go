package source

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionFromPath(t *testing.T) {
	tests := map[string]Compression{
		"people.xlsx":     CompressionNone,
		"people.xlsx.gz":  CompressionGZ,
		"people.xlsx.GZ":  CompressionGZ,
		"people.xlsx.bz2": CompressionBZ2,
		"people.xlsx.xz":  CompressionXZ,
		"people.xlsx.zst": CompressionZSTD,
	}
	for path, want := range tests {
		assert.Equal(t, want, CompressionFromPath(path), path)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Compression
	}{
		{"zip", []byte("PK\x03\x04rest"), CompressionNone},
		{"gzip", []byte{0x1f, 0x8b, 0x08, 0x00}, CompressionGZ},
		{"bzip2", []byte("BZh91AY"), CompressionBZ2},
		{"xz", []byte{0xfd, '7', 'z', 'X', 'Z', 0x00, 0x00}, CompressionXZ},
		{"zstd", []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, CompressionZSTD},
		{"short", []byte{0x1f}, CompressionNone},
		{"empty", nil, CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r, err := Sniff(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)

			rest, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, len(tt.data), len(rest), "peeked bytes must not be consumed")
		})
	}
}
