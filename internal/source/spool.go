package source

import (
	"fmt"
	"io"
	"os"

	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// spoolStream copies r, decompressed if its magic bytes say so, into a temporary file.
func spoolStream(r io.Reader, tempDir string) (string, error) {
	c, sniffed, err := Sniff(r)
	if err != nil {
		return "", fmt.Errorf("read input stream: %v: %w", err, sheetload.ErrInputFailed)
	}
	return spool(sniffed, c, tempDir, "stdin")
}

// spoolFile decompresses the file at path into a temporary file.
func spoolFile(path string, c Compression, tempDir string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %v: %w", path, err, sheetload.ErrInputFailed)
	}
	defer f.Close()
	return spool(f, c, tempDir, path)
}

func spool(r io.Reader, c Compression, tempDir, origin string) (string, error) {
	reader, closeReader, err := Decompress(c, r)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, sheetload.ErrInputFailed)
	}
	defer closeReader()

	tmp, err := os.CreateTemp(tempDir, "sheetload-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("create temporary input: %w", err)
	}

	n, copyErr := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		removeQuietly(tmp.Name())
		return "", fmt.Errorf("spool input: %v: %w", copyErr, sheetload.ErrInputFailed)
	case closeErr != nil:
		removeQuietly(tmp.Name())
		return "", fmt.Errorf("spool input: %w", closeErr)
	case n == 0:
		removeQuietly(tmp.Name())
		return "", fmt.Errorf("no input detected in %s: %w", origin, sheetload.ErrNoInput)
	}
	return tmp.Name(), nil
}

func removeQuietly(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
