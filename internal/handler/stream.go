package handler

import (
	"io"
	"path/filepath"

	"github.com/mmr-tortoise/unpack/internal/atomicfile"
	"github.com/mmr-tortoise/unpack/internal/safepath"
)

// Handler is the decompression operation bound to a TypeIdentifier.
//
// Unpack decompresses the file at input in place: output appears in
// the same directory as the input, the input itself is never modified
// or deleted. Temporaries created along the way are tracked in reg so
// an aborted run can clean them up.
type Handler interface {
	// Name is the operation name used in mapping files and verbose logs.
	Name() string

	// Unpack performs the decompression. Failures are returned as
	// UnpackError values carrying the taxonomy kind.
	Unpack(input string, reg *atomicfile.TempRegistry) error
}

// StreamHandler decompresses single-stream formats (gzip, bzip2,
// legacy compress, xz, zstd, lz4) by piping the external decoder's
// stdout through the atomic writer.
type StreamHandler struct {
	// name is the catalog operation name ("gzip", "bzip2", ...).
	name string

	// program is the decoder binary to invoke.
	program string

	// args are the decoder flags placed before the input path,
	// conventionally "decompress to stdout" ("-dc" or equivalent).
	args []string
}

// NewStreamHandler creates a stream handler for the given operation
// name, decoder program, and flags.
func NewStreamHandler(name, program string, args ...string) *StreamHandler {
	return &StreamHandler{name: name, program: program, args: args}
}

// Name returns the operation name.
func (h *StreamHandler) Name() string {
	return h.name
}

// Unpack derives the output path next to the input, verifies it stays
// within the input's directory, and streams the decoder output into it
// atomically. A mid-stream decoder failure discards the temporary and
// leaves any pre-existing output untouched.
func (h *StreamHandler) Unpack(input string, reg *atomicfile.TempRegistry) error {
	output := OutputPath(input)

	if err := safepath.Within(filepath.Dir(input), output); err != nil {
		return err
	}

	return atomicfile.WriteAtomic(reg, output, func(w io.Writer) error {
		args := append(append([]string{}, h.args...), input)
		return runDecoder(h.program, args, input, w)
	})
}
