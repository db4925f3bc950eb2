package runner

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/unpack/internal/atomicfile"
	"github.com/mmr-tortoise/unpack/internal/model"
	"github.com/mmr-tortoise/unpack/internal/registry"
)

// Sniffer classifies file content into a TypeIdentifier. Satisfied by
// *detect.Detector; defined here so tests can substitute a stub.
type Sniffer interface {
	DetectFile(path string) model.TypeIdentifier
}

// errHalt is the internal signal that the processed-item ceiling was
// reached. It stops traversal immediately; remaining items are left
// untouched and contribute to neither counter.
var errHalt = errors.New("item count limit reached")

// Session carries everything one run needs: configuration, the wired
// components, and the mutable per-run state. It is passed explicitly
// through the traversal — there is no ambient global state, which
// keeps ownership and test isolation clear.
type Session struct {
	// Registry resolves detected types to handlers.
	Registry *registry.Registry

	// Detector classifies item content.
	Detector Sniffer

	// Limits are the per-run resource ceilings.
	Limits model.Limits

	// Temps tracks temporaries for cleanup on every exit route. The
	// same registry must be wired into the interrupt handler.
	Temps *atomicfile.TempRegistry

	// Recursive selects full-depth directory traversal.
	Recursive bool

	// Verbose enables the per-item progress lines.
	Verbose bool

	// Out receives the per-item lines and the final summary (stdout in
	// the CLI; a buffer in tests).
	Out io.Writer

	// Errs receives warnings and per-item error detail (stderr in the
	// CLI).
	Errs io.Writer

	// Counters accumulates outcomes. Zero value is ready to use.
	Counters Counters
}

// Run processes every requested path in order and returns the final
// counters. Per-item failures are absorbed; the returned error is
// non-nil only for unexpected orchestration faults, in which case the
// caller must clean up Temps and terminate.
//
// Traversal order within a directory is the filesystem's enumeration
// order and is not guaranteed stable across filesystems.
func (s *Session) Run(paths []string) (Counters, error) {
	defer s.Temps.CleanupAll()

	for _, path := range paths {
		if err := s.traverse(path); err != nil {
			if errors.Is(err, errHalt) {
				fmt.Fprintf(s.Errs, "Warning: item limit (%d) reached, remaining items skipped\n",
					s.Limits.MaxCount)
				break
			}
			return s.Counters, err
		}
	}

	return s.Counters, nil
}

// traverse yields candidate items from one requested path: a regular
// file is an item itself; a directory is expanded one level (or fully,
// in recursive mode); anything else — missing path, broken symlink,
// device node — is recorded as not-decompressed without entering the
// detector.
func (s *Session) traverse(path string) error {
	info, err := os.Stat(path)
	if err != nil || !(info.Mode().IsRegular() || info.IsDir()) {
		// The argument itself is the candidate, and it cannot be
		// processed. Count-limit semantics still apply to it.
		if s.Counters.Processed() >= s.Limits.MaxCount {
			return errHalt
		}
		fmt.Fprintf(s.Errs, "Warning: %s is not a file or directory\n", path)
		s.Counters.RecordFailure()
		return nil
	}

	if info.Mode().IsRegular() {
		return s.processItem(path, info.Size())
	}

	if s.Recursive {
		return s.walkRecursive(path)
	}
	return s.walkShallow(path)
}

// walkShallow processes the direct regular-file children of dir.
// Subdirectories are not descended into.
func (s *Session) walkShallow(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.WrapError(model.KindInternal, dir, "cannot read directory", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if isSidecar(path) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if err := s.recordVanished(path); err != nil {
				return err
			}
			continue
		}
		if err := s.processItem(path, info.Size()); err != nil {
			return err
		}
	}
	return nil
}

// isSidecar reports whether path is a checksum sidecar accompanying an
// existing input. Such files describe their neighbor rather than being
// candidates themselves, so directory traversal skips them. A .sha256
// file with no neighbor is still a candidate (it may be anything).
func isSidecar(path string) bool {
	base, found := strings.CutSuffix(path, sidecarSuffix)
	if !found {
		return false
	}
	_, err := os.Stat(base)
	return err == nil
}

// walkRecursive processes every regular file reachable under dir.
func (s *Session) walkRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return model.WrapError(model.KindInternal, path, "walking directory", err)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if isSidecar(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return s.recordVanished(path)
		}
		return s.processItem(path, info.Size())
	})
}

// recordVanished records a candidate whose metadata disappeared between
// directory enumeration and processing (deleted or made unreadable in
// the window). The item was enumerated, so it still gets an outcome,
// and the count ceiling still applies to it.
func (s *Session) recordVanished(path string) error {
	if s.Counters.Processed() >= s.Limits.MaxCount {
		return errHalt
	}
	fmt.Fprintf(s.Errs, "Warning: cannot stat %s\n", path)
	s.Counters.RecordFailure()
	return nil
}

// processItem runs the per-item pipeline: count check, size check,
// sidecar verification, detection, registry lookup, dispatch. Exactly
// one outcome is recorded for the item unless the count ceiling, or a
// fatal fault inside a handler, halts the run first.
func (s *Session) processItem(path string, size int64) error {
	// Count check comes first: once the ceiling is reached, this item
	// is not processed at all and must not be counted either.
	if s.Counters.Processed() >= s.Limits.MaxCount {
		return errHalt
	}

	// Size check: oversized items never reach the detector.
	if size > s.Limits.MaxSize {
		fmt.Fprintf(s.Errs, "Warning: %s exceeds size limit (%d > %d bytes)\n",
			path, size, s.Limits.MaxSize)
		s.ignore(path)
		return nil
	}

	// Advisory integrity check. A mismatch warns and continues.
	if warning := verifySidecar(path); warning != "" {
		fmt.Fprintf(s.Errs, "Warning: %s\n", warning)
	}

	typ := s.Detector.DetectFile(path)
	if typ == model.TypeUnknown {
		s.ignore(path)
		return nil
	}

	h, ok := s.Registry.Lookup(typ)
	if !ok {
		s.ignore(path)
		return nil
	}

	if s.Verbose {
		fmt.Fprintf(s.Out, "Unpacking %s...\n", path)
	}

	if err := h.Unpack(path, s.Temps); err != nil {
		if model.KindOf(err).Fatal() {
			// An orchestration fault, not a property of the item:
			// continuing could misattribute outcomes or leak
			// temporaries, so the run terminates.
			return err
		}
		if s.Verbose {
			fmt.Fprintf(s.Out, "Failed %s\n", path)
		}
		fmt.Fprintf(s.Errs, "Error: %v\n", err)
		s.Counters.RecordFailure()
		return nil
	}

	s.Counters.RecordSuccess()
	return nil
}

// ignore records an item that never dispatched (unknown content, no
// handler, size violation) and emits the verbose line for it.
func (s *Session) ignore(path string) {
	if s.Verbose {
		fmt.Fprintf(s.Out, "Ignoring %s\n", path)
	}
	s.Counters.RecordFailure()
}
