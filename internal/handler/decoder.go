package handler

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/unpack/internal/model"
)

// runDecoder executes an external decoder program, streaming its
// stdout into out (which may be nil for programs like unzip that
// write files themselves).
//
// An absent program maps to MissingDecoderTool and a non-zero exit to
// DecoderFailure — both non-fatal handler failures; the run continues
// with the next item. Stderr is captured and folded into the error
// message so a verbose user can see what the decoder actually said.
func runDecoder(program string, args []string, input string, out io.Writer) error {
	if _, err := exec.LookPath(program); err != nil {
		return model.WrapError(model.KindMissingDecoderTool, input,
			fmt.Sprintf("decoder %q is not installed", program), err)
	}

	// #nosec G204 — program comes from the closed catalog (optionally a
	// settings-file override), args are built internally
	cmd := exec.Command(program, args...)

	var stderr strings.Builder
	cmd.Stderr = &stderr
	if out != nil {
		cmd.Stdout = out
	}

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("decoder %s %s failed", program, strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return model.WrapError(model.KindDecoderFailure, input, message, err)
	}

	return nil
}
