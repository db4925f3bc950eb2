package handler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestOutputPath pins the documented naming policy: recognized
// compression suffixes are stripped to recover the stem, combined tar
// suffixes become .tar, and everything else gets the fixed fallback
// extension appended.
func TestOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strip gz", "log.txt.gz", "log.txt"},
		{"strip bz2", "dump.sql.bz2", "dump.sql"},
		{"strip legacy Z", "old.tar.Z", "old.tar"},
		{"strip xz", "kernel.tar.xz", "kernel.tar"},
		{"strip zst", "data.bin.zst", "data.bin"},
		{"strip lz4", "trace.lz4", "trace"},
		{"uppercase suffix", "REPORT.GZ", "REPORT"},
		{"tgz to tar", "backup.tgz", "backup.tar"},
		{"tbz2 to tar", "backup.tbz2", "backup.tar"},
		{"txz to tar", "backup.txz", "backup.tar"},
		{"no known suffix", "mislabeled.txt", "mislabeled.txt.out"},
		{"no extension at all", "blob", "blob.out"},
		{"bare suffix has no stem", ".gz", ".gz.out"},
		{"dotted name keeps other dots", "a.b.c.gz", "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputPath(filepath.Join("/data", tt.input))
			assert.Equal(t, filepath.Join("/data", tt.expected), got)
		})
	}
}

// TestOutputPath_StaysInInputDirectory verifies that the derived path
// always shares the input's directory, which is what the path guard
// later enforces.
func TestOutputPath_StaysInInputDirectory(t *testing.T) {
	out := OutputPath("/some/dir/file.gz")
	assert.Equal(t, "/some/dir", filepath.Dir(out))
}
