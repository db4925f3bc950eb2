package handler

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/unpack/internal/atomicfile"
	"github.com/mmr-tortoise/unpack/internal/model"
)

// writeGzipFixture compresses content into path as a gzip stream.
// Fixtures are produced in-process so the tests do not depend on a
// compressor binary being installed.
func writeGzipFixture(t *testing.T, path string, content []byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := kgzip.NewWriter(f)
	_, err = zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// writeLZ4Fixture compresses content into path as an LZ4 frame.
func writeLZ4Fixture(t *testing.T, path string, content []byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := lz4.NewWriter(f)
	_, err = zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// requireDecoder skips the test when the external decoder binary is
// not installed on the machine running the tests.
func requireDecoder(t *testing.T, program string) {
	t.Helper()
	if _, err := exec.LookPath(program); err != nil {
		t.Skipf("decoder %q not installed", program)
	}
}

// TestStreamHandler_GzipRoundTrip decompresses a known gzip stream and
// verifies the plaintext is reproduced byte-for-byte at the derived
// output path, with the input left untouched.
func TestStreamHandler_GzipRoundTrip(t *testing.T) {
	requireDecoder(t, "gzip")

	dir := t.TempDir()
	input := filepath.Join(dir, "greeting.txt.gz")
	writeGzipFixture(t, input, []byte("hello"))
	inputBefore, err := os.ReadFile(input)
	require.NoError(t, err)

	h := NewStreamHandler(OpGzip, "gzip", "-dc")
	reg := atomicfile.NewTempRegistry()
	require.NoError(t, h.Unpack(input, reg))

	out, err := os.ReadFile(filepath.Join(dir, "greeting.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	// The original input is never modified or deleted.
	inputAfter, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, inputBefore, inputAfter)

	assert.Zero(t, reg.Len(), "no temporaries may remain after success")
}

// TestStreamHandler_LZ4RoundTrip exercises the extensible-operation
// path with an LZ4 frame.
func TestStreamHandler_LZ4RoundTrip(t *testing.T) {
	requireDecoder(t, "lz4")

	dir := t.TempDir()
	input := filepath.Join(dir, "trace.lz4")
	writeLZ4Fixture(t, input, []byte("lz4 payload"))

	h := NewStreamHandler(OpLZ4, "lz4", "-dc")
	reg := atomicfile.NewTempRegistry()
	require.NoError(t, h.Unpack(input, reg))

	out, err := os.ReadFile(filepath.Join(dir, "trace"))
	require.NoError(t, err)
	assert.Equal(t, "lz4 payload", string(out))
}

// TestStreamHandler_Idempotent runs the same decompression twice and
// requires byte-identical output both times — the second run simply
// overwrites with the same content.
func TestStreamHandler_Idempotent(t *testing.T) {
	requireDecoder(t, "gzip")

	dir := t.TempDir()
	input := filepath.Join(dir, "notes.gz")
	writeGzipFixture(t, input, []byte("same every time"))

	h := NewStreamHandler(OpGzip, "gzip", "-dc")
	reg := atomicfile.NewTempRegistry()
	output := filepath.Join(dir, "notes")

	require.NoError(t, h.Unpack(input, reg))
	first, err := os.ReadFile(output)
	require.NoError(t, err)

	require.NoError(t, h.Unpack(input, reg))
	second, err := os.ReadFile(output)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestStreamHandler_MissingDecoder verifies the MissingDecoderTool
// classification when the decoder binary does not exist.
func TestStreamHandler_MissingDecoder(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "x.gz")
	writeGzipFixture(t, input, []byte("x"))

	h := NewStreamHandler(OpGzip, "definitely-not-a-real-decoder-binary", "-dc")
	reg := atomicfile.NewTempRegistry()

	err := h.Unpack(input, reg)
	require.Error(t, err)
	assert.Equal(t, model.KindMissingDecoderTool, model.KindOf(err))
	assert.Zero(t, reg.Len())
}

// TestStreamHandler_DecoderFailureAtomic feeds garbage to a real
// decoder and verifies both the DecoderFailure classification and the
// atomicity property: a pre-existing file at the output path is left
// exactly as it was.
func TestStreamHandler_DecoderFailureAtomic(t *testing.T) {
	requireDecoder(t, "gzip")

	dir := t.TempDir()
	input := filepath.Join(dir, "broken.gz")
	// Valid gzip magic so detection would match, followed by garbage
	// that makes the decoder fail mid-stream.
	require.NoError(t, os.WriteFile(input, []byte{0x1F, 0x8B, 0x08, 0xFF, 0xFF, 0x00, 0x01}, 0o644))

	// Pre-existing output that must survive the failed attempt.
	output := filepath.Join(dir, "broken")
	require.NoError(t, os.WriteFile(output, []byte("previous result"), 0o644))

	h := NewStreamHandler(OpGzip, "gzip", "-dc")
	reg := atomicfile.NewTempRegistry()

	err := h.Unpack(input, reg)
	require.Error(t, err)
	assert.Equal(t, model.KindDecoderFailure, model.KindOf(err))

	content, readErr := os.ReadFile(output)
	require.NoError(t, readErr)
	assert.Equal(t, "previous result", string(content),
		"failed decode must not touch the existing output")
	assert.Zero(t, reg.Len())
}
