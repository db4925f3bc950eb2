package atomicfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteAtomic_Success writes a fresh target and verifies content,
// absence of leftover temporaries, and an empty registry afterwards.
func TestWriteAtomic_Success(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	reg := NewTempRegistry()

	err := WriteAtomic(reg, target, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	})
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	assert.Zero(t, reg.Len(), "committed temporary must be deregistered")
	assertNoStrays(t, dir, "out.txt")
}

// TestWriteAtomic_OverwritesExisting verifies the unconditional
// overwrite contract: a pre-existing target is replaced wholesale.
func TestWriteAtomic_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(target, []byte("old content"), 0o644))

	reg := NewTempRegistry()
	err := WriteAtomic(reg, target, func(w io.Writer) error {
		_, err := w.Write([]byte("new"))
		return err
	})
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

// TestWriteAtomic_ProducerFailure verifies the atomicity contract: a
// failing producer leaves the target exactly as it was (here: present
// with its prior content) and removes the temporary.
func TestWriteAtomic_ProducerFailure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(target, []byte("precious"), 0o644))

	reg := NewTempRegistry()
	boom := errors.New("decoder died mid-stream")
	err := WriteAtomic(reg, target, func(w io.Writer) error {
		// Write partial output first — it must never reach the target.
		_, _ = w.Write([]byte("partial garbage"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	content, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, "precious", string(content), "target must be untouched on failure")

	assert.Zero(t, reg.Len())
	assertNoStrays(t, dir, "out.txt")
}

// TestWriteAtomic_ProducerFailureAbsentTarget covers the other half of
// the atomicity property: if the target never existed, it still does
// not exist after a failed write.
func TestWriteAtomic_ProducerFailureAbsentTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	reg := NewTempRegistry()
	err := WriteAtomic(reg, target, func(w io.Writer) error {
		return errors.New("no output today")
	})
	require.Error(t, err)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "failed write must not create the target")
	assertNoStrays(t, dir)
}

// TestTempRegistry_CleanupAll registers a file and a directory, then
// verifies CleanupAll removes both and is safe to call twice.
// TestWriteAtomic_OutputMode verifies the committed output carries a
// normal file mode rather than the 0600 that CreateTemp starts with.
func TestWriteAtomic_OutputMode(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	reg := NewTempRegistry()

	err := WriteAtomic(reg, target, func(w io.Writer) error {
		_, err := w.Write([]byte("data"))
		return err
	})
	require.NoError(t, err)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestTempRegistry_CleanupAll(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "stray.tmp")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	sub := filepath.Join(dir, "staging")
	require.NoError(t, os.MkdirAll(filepath.Join(sub, "nested"), 0o755))

	reg := NewTempRegistry()
	reg.Add(file)
	reg.Add(sub)
	require.Equal(t, 2, reg.Len())

	reg.CleanupAll()
	assert.Zero(t, reg.Len())
	assert.NoFileExists(t, file)
	assert.NoDirExists(t, sub)

	// Idempotent: nothing left to remove, nothing blows up.
	reg.CleanupAll()
}

// TestTempRegistry_Remove verifies deregistration of one path leaves
// the others tracked.
func TestTempRegistry_Remove(t *testing.T) {
	reg := NewTempRegistry()
	reg.Add("/tmp/a")
	reg.Add("/tmp/b")
	reg.Remove("/tmp/a")
	assert.Equal(t, 1, reg.Len())

	// Removing an unknown path is a no-op.
	reg.Remove("/tmp/never-added")
	assert.Equal(t, 1, reg.Len())
}

// TestStagingDir verifies creation, registration, and release of a
// container staging directory.
// TestTempRegistry_ConcurrentCleanup exercises the registry the way
// the interrupt handler does: CleanupAll on one goroutine while the
// main flow keeps registering and deregistering. Run under the race
// detector this pins the locking contract.
func TestTempRegistry_ConcurrentCleanup(t *testing.T) {
	dir := t.TempDir()
	reg := NewTempRegistry()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			reg.CleanupAll()
		}
	}()

	path := filepath.Join(dir, "tmp")
	for i := 0; i < 1000; i++ {
		reg.Add(path)
		reg.Remove(path)
	}
	<-done

	reg.CleanupAll()
	assert.Zero(t, reg.Len())
}

func TestStagingDir(t *testing.T) {
	parent := t.TempDir()
	reg := NewTempRegistry()

	dir, err := StagingDir(reg, parent)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, 1, reg.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "half-extracted"), []byte("x"), 0o644))

	ReleaseStagingDir(reg, dir)
	assert.NoDirExists(t, dir)
	assert.Zero(t, reg.Len())
}

// assertNoStrays fails if dir contains anything beyond the expected
// entries — i.e. a leaked temporary file.
func assertNoStrays(t *testing.T, dir string, expected ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	want := make(map[string]bool, len(expected))
	for _, name := range expected {
		want[name] = true
	}
	for _, e := range entries {
		assert.True(t, want[e.Name()], "unexpected stray entry %q", e.Name())
	}
}
