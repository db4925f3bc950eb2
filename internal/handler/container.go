package handler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/unpack/internal/atomicfile"
	"github.com/mmr-tortoise/unpack/internal/model"
	"github.com/mmr-tortoise/unpack/internal/safepath"
)

// ContainerHandler extracts archive containers (zip) via an external
// extractor into a private staging directory, then moves each fully
// extracted top-level entry into the target directory.
//
// The staging directory lives inside the target directory, so the
// final per-entry moves are same-filesystem renames. A mid-extraction
// failure discards the staging directory wholesale — the target
// directory is never left half-populated.
type ContainerHandler struct {
	// name is the catalog operation name ("zip").
	name string

	// program is the extractor binary to invoke.
	program string
}

// NewContainerHandler creates a container handler for the given
// operation name and extractor program.
func NewContainerHandler(name, program string) *ContainerHandler {
	return &ContainerHandler{name: name, program: program}
}

// Name returns the operation name.
func (h *ContainerHandler) Name() string {
	return h.name
}

// Unpack extracts input into the directory containing it.
//
// Existing files with the same names as extracted top-level entries
// are overwritten; every destination path is checked against the
// target directory before the move, so crafted entry names cannot
// write outside it.
func (h *ContainerHandler) Unpack(input string, reg *atomicfile.TempRegistry) error {
	targetDir := filepath.Dir(input)

	staging, err := atomicfile.StagingDir(reg, targetDir)
	if err != nil {
		return model.WrapError(model.KindInternal, input, "cannot create staging directory", err)
	}

	// -o: overwrite without prompting (prompts would hang a batch run).
	// -q: quiet; the runner owns all user-facing output.
	if err := runDecoder(h.program, []string{"-o", "-q", input, "-d", staging}, input, nil); err != nil {
		atomicfile.ReleaseStagingDir(reg, staging)
		return err
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		atomicfile.ReleaseStagingDir(reg, staging)
		return model.WrapError(model.KindInternal, input, "cannot list staging directory", err)
	}

	for _, entry := range entries {
		if safepath.ContainsDotDot(entry.Name()) {
			atomicfile.ReleaseStagingDir(reg, staging)
			return model.NewError(model.KindPathEscape, input,
				fmt.Sprintf("archive entry %q traverses upward", entry.Name()))
		}

		dest := filepath.Join(targetDir, entry.Name())
		if err := safepath.Within(targetDir, dest); err != nil {
			atomicfile.ReleaseStagingDir(reg, staging)
			return err
		}

		// Overwrite semantics: clear whatever occupies the destination,
		// then rename the fully-extracted entry into place.
		if err := os.RemoveAll(dest); err != nil {
			atomicfile.ReleaseStagingDir(reg, staging)
			return model.WrapError(model.KindInternal, input,
				fmt.Sprintf("cannot replace %s", dest), err)
		}
		if err := os.Rename(filepath.Join(staging, entry.Name()), dest); err != nil {
			atomicfile.ReleaseStagingDir(reg, staging)
			return model.WrapError(model.KindInternal, input,
				fmt.Sprintf("cannot move %s into place", entry.Name()), err)
		}
	}

	atomicfile.ReleaseStagingDir(reg, staging)
	return nil
}
