package runner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// sidecarSuffix names the optional integrity sidecar: a file holding
// the expected SHA-256 of its neighbor, in sha256sum(1) format (hex
// digest, optionally followed by a filename field).
const sidecarSuffix = ".sha256"

// verifySidecar checks input against its checksum sidecar, if one
// exists. The check is advisory: every outcome other than a clean
// match returns a warning string, never an error — a mismatched or
// malformed sidecar must not block processing.
//
// Returns "" when there is no sidecar or the checksum matches.
func verifySidecar(input string) string {
	data, err := os.ReadFile(input + sidecarSuffix)
	if err != nil {
		// No sidecar (or unreadable): nothing to verify.
		return ""
	}

	expected := parseSidecar(data)
	if expected == "" {
		return fmt.Sprintf("checksum sidecar for %s is malformed", input)
	}

	actual, err := hashFile(input)
	if err != nil {
		return fmt.Sprintf("cannot hash %s for sidecar verification: %v", input, err)
	}

	if !strings.EqualFold(expected, actual) {
		return fmt.Sprintf("checksum mismatch for %s: sidecar says %s, file is %s",
			input, expected, actual)
	}
	return ""
}

// parseSidecar extracts the hex digest from sidecar content: the first
// whitespace-separated field of the first non-empty line. Returns ""
// when no plausible digest is found.
func parseSidecar(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		digest := fields[0]
		if len(digest) != sha256.Size*2 {
			return ""
		}
		if _, err := hex.DecodeString(digest); err != nil {
			return ""
		}
		return digest
	}
	return ""
}

// hashFile computes the hex SHA-256 of the file at path.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
