package logcat

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCapture = "03-14 09:26:53.200  4321  4321 D MyApp: onCreate\n03-14 09:26:54.001  4321  4339 W MyApp: slow frame\n"

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestDecompress(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"plain", []byte(sampleCapture)},
		{"gzip", gzipBytes(t, sampleCapture)},
		{"zstd", zstdBytes(t, sampleCapture)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := Decompress(bytes.NewReader(tt.data))
			require.NoError(t, err)
			defer rc.Close()

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, sampleCapture, string(got))
		})
	}
}

func TestDecompressShortInput(t *testing.T) {
	for _, in := range []string{"", "x", "\x1f"} {
		rc, err := Decompress(bytes.NewReader([]byte(in)))
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, in, string(got))
		require.NoError(t, rc.Close())
	}
}

func TestDecompressCorruptGzip(t *testing.T) {
	_, err := Decompress(bytes.NewReader([]byte{0x1f, 0x8b, 0x00}))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capture.txt.zst")
	require.NoError(t, os.WriteFile(path, zstdBytes(t, sampleCapture), 0o644))

	rc, err := Open(path)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, sampleCapture, string(got))

	_, err = Open(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
