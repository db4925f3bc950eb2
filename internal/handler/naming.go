package handler

import (
	"path/filepath"
	"strings"
)

// Output naming policy for stream decompression: strip the recognized
// compression suffix to recover the stem (log.txt.gz -> log.txt);
// combined tar suffixes are rewritten to .tar (backup.tgz ->
// backup.tar); when no known suffix matches — content detection does
// not depend on names, so this is common — the fallback appends
// fallbackExt to the full input name. The output always sits in the
// input's directory.

// fallbackExt is appended when no known compression suffix matches.
const fallbackExt = ".out"

// stripSuffixes lists suffixes removed to recover the stem.
// Matching is case-insensitive (FILE.GZ behaves like file.gz).
var stripSuffixes = []string{".gz", ".bz2", ".z", ".xz", ".zst", ".lz4"}

// tarSuffixes lists combined suffixes rewritten to ".tar".
var tarSuffixes = []string{".tgz", ".tbz", ".tbz2", ".txz", ".tzst"}

// OutputPath derives the decompressed output path for input according
// to the naming policy above.
func OutputPath(input string) string {
	dir := filepath.Dir(input)
	name := filepath.Base(input)
	lower := strings.ToLower(name)

	for _, suf := range tarSuffixes {
		if strings.HasSuffix(lower, suf) && len(name) > len(suf) {
			return filepath.Join(dir, name[:len(name)-len(suf)]+".tar")
		}
	}

	for _, suf := range stripSuffixes {
		// The stem must be non-empty: ".gz" alone has nothing to recover,
		// so it falls through to the append policy.
		if strings.HasSuffix(lower, suf) && len(name) > len(suf) {
			return filepath.Join(dir, name[:len(name)-len(suf)])
		}
	}

	return filepath.Join(dir, name+fallbackExt)
}
