package logcat

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Open opens a capture for reading. "-" reads stdin. Gzip and zstd
// input is decoded transparently.
func Open(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return Decompress(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	rc, err := Decompress(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &fileReader{ReadCloser: rc, file: f}, nil
}

// Decompress wraps r in a gzip or zstd decoder when it starts with the
// matching magic number, and passes it through otherwise. Closing the
// result does not close r.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	case bytes.HasPrefix(head, zstdMagic):
		// Single-threaded decoding keeps the decoder free of background goroutines.
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(br), nil
	}
}

type fileReader struct {
	io.ReadCloser
	file *os.File
}

func (f *fileReader) Close() error {
	err := f.ReadCloser.Close()
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}
