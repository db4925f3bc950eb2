package safepath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/unpack/internal/model"
)

// Within verifies that candidate resolves to base itself or a
// descendant of base. Both paths are made absolute and cleaned first;
// base is additionally resolved through symlinks when it exists, so a
// target directory that is itself a symlink still anchors the check at
// its real location.
//
// A violation is returned as an UnpackError with KindPathEscape. Any
// other resolution failure is reported with the same kind: a path we
// cannot canonicalize is a path we cannot vouch for.
func Within(base, candidate string) error {
	resolvedBase, err := canonicalBase(base)
	if err != nil {
		return model.WrapError(model.KindPathEscape, candidate,
			"cannot resolve base directory", err)
	}

	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return model.WrapError(model.KindPathEscape, candidate,
			"cannot resolve output path", err)
	}
	absCandidate = filepath.Clean(absCandidate)

	if absCandidate == resolvedBase {
		return nil
	}
	if strings.HasPrefix(absCandidate, resolvedBase+string(filepath.Separator)) {
		return nil
	}

	return model.NewError(model.KindPathEscape, candidate,
		"output path escapes "+resolvedBase)
}

// canonicalBase returns the absolute, cleaned, symlink-resolved form
// of base. Symlink resolution is skipped when base does not exist yet
// (EvalSymlinks fails on missing paths); in that case the lexical form
// is the best anchor available.
func canonicalBase(base string) (string, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	if _, err := os.Lstat(abs); err == nil {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			return resolved, nil
		}
	}
	return abs, nil
}

// ContainsDotDot reports whether any path component of v is "..".
// Container handlers use it as a cheap pre-filter on archive entry
// names before the full Within resolution.
func ContainsDotDot(v string) bool {
	if !strings.Contains(v, "..") {
		return false
	}
	for _, ent := range strings.FieldsFunc(v, isSlashRune) {
		if ent == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool { return r == '/' || r == '\\' }
