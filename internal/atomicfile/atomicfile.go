package atomicfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// TempRegistry tracks temporary paths pending cleanup. The run itself
// is sequential, but the interrupt handler calls CleanupAll from its
// own goroutine, so all access goes through the mutex.
type TempRegistry struct {
	mu    sync.Mutex
	paths []string
}

// NewTempRegistry creates an empty registry.
func NewTempRegistry() *TempRegistry {
	return &TempRegistry{}
}

// Add registers a path for cleanup.
func (r *TempRegistry) Add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// Remove deregisters a path, typically after a successful commit.
// Unknown paths are ignored.
func (r *TempRegistry) Remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.paths {
		if p == path {
			r.paths = append(r.paths[:i], r.paths[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered paths. Used by tests and by the
// runner's post-run sanity logging.
func (r *TempRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

// CleanupAll removes every registered path and empties the registry.
// RemoveAll is used so registered staging directories are covered too.
// The call is idempotent and never fails: a path that is already gone
// is exactly what cleanup wants.
func (r *TempRegistry) CleanupAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.paths {
		_ = os.RemoveAll(p)
	}
	r.paths = r.paths[:0]
}

// WriteAtomic writes the output of produce to target atomically.
//
// A temporary file is created next to target, registered with reg, and
// handed to produce as an io.Writer. On success the temporary is
// synced, closed, renamed over target (overwriting any existing file),
// and deregistered. On any failure the temporary is removed and the
// target is left exactly as it was — the caller sees the error, the
// filesystem never sees a half-written target.
func WriteAtomic(reg *TempRegistry, target string, produce func(io.Writer) error) (err error) {
	dir := filepath.Dir(target)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	reg.Add(tmpPath)

	// Failure path: drop the temporary and its registration. The
	// deferred form covers every early return below.
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
			reg.Remove(tmpPath)
		}
	}()

	if err := produce(tmp); err != nil {
		return err
	}

	// CreateTemp makes the file 0600; the committed output should carry
	// a normal file mode, since the rename preserves whatever the
	// temporary had.
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmpPath, err)
	}

	// Sync before rename so a crash immediately after commit cannot
	// surface an empty or truncated target on disk.
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("renaming %s onto %s: %w", tmpPath, target, err)
	}

	committed = true
	reg.Remove(tmpPath)
	return nil
}

// StagingDir creates a private staging directory in parent, registered
// with reg. Container handlers extract into it and move fully-extracted
// entries out, so a mid-extraction failure never half-populates the
// real target directory.
func StagingDir(reg *TempRegistry, parent string) (string, error) {
	dir, err := os.MkdirTemp(parent, ".unpack-staging-*")
	if err != nil {
		return "", fmt.Errorf("creating staging directory in %s: %w", parent, err)
	}
	reg.Add(dir)
	return dir, nil
}

// ReleaseStagingDir removes a staging directory and drops its
// registration. Called on both the success path (after all entries
// moved out) and the failure path (discarding partial extraction).
func ReleaseStagingDir(reg *TempRegistry, dir string) {
	_ = os.RemoveAll(dir)
	reg.Remove(dir)
}
