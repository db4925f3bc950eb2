package model

import (
	"fmt"
)

// TypeIdentifier is the canonical label produced by content sniffing.
// It is a MIME-like string and is entirely independent of the file's
// name or extension: two inputs with identical bytes always classify
// to the same identifier regardless of what they are called.
type TypeIdentifier string

const (
	// TypeZip is a zip container (PK local-file, empty, or spanned header).
	TypeZip TypeIdentifier = "application/zip"

	// TypeGzip is a gzip-compressed stream.
	TypeGzip TypeIdentifier = "application/gzip"

	// TypeBzip2 is a bzip2-compressed stream.
	TypeBzip2 TypeIdentifier = "application/x-bzip2"

	// TypeCompress is a legacy compress(1) stream (.Z).
	TypeCompress TypeIdentifier = "application/x-compress"

	// TypeXz is an xz-compressed stream.
	TypeXz TypeIdentifier = "application/x-xz"

	// TypeZstd is a Zstandard-compressed stream.
	TypeZstd TypeIdentifier = "application/zstd"

	// TypeLZ4 is an LZ4 frame stream.
	TypeLZ4 TypeIdentifier = "application/x-lz4"

	// TypeUnknown is the fallback identifier for content that matched no
	// known signature, or that could not be inspected at all. Items with
	// this identifier are ignored rather than failing the run.
	TypeUnknown TypeIdentifier = "application/octet-stream"
)

// String returns the identifier as a plain string.
// Satisfies fmt.Stringer for log and error formatting.
func (t TypeIdentifier) String() string {
	return string(t)
}

// Limits holds the per-run resource ceilings. The values are resolved
// once at startup (defaults, then settings file, then environment) and
// never mutated afterwards — components receive a copy by value.
type Limits struct {
	// MaxSize is the largest item, in bytes, that will be dispatched to
	// a handler. Larger items are recorded as not-decompressed without
	// ever reaching the detector.
	MaxSize int64

	// MaxCount is the maximum number of items (successes plus failures)
	// processed in one run. Reaching it halts the entire run: remaining
	// items are left untouched and contribute to neither counter.
	MaxCount int
}

const (
	// DefaultMaxSize is the item size ceiling applied when neither the
	// settings file nor the environment overrides it (1 GiB).
	DefaultMaxSize int64 = 1 << 30

	// DefaultMaxCount is the processed-item ceiling applied when neither
	// the settings file nor the environment overrides it.
	DefaultMaxCount = 10000
)

// DefaultLimits returns the built-in resource ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxSize:  DefaultMaxSize,
		MaxCount: DefaultMaxCount,
	}
}

// ExitCeiling is the largest exit status the host process mechanism can
// represent. Failure counts beyond it all map to the ceiling so a run
// with very many failures still exits with an unambiguous "many
// failures" value instead of wrapping around to a small number.
const ExitCeiling = 255

// SaturateExit converts a failure count into a process exit status,
// clamped to [0, ExitCeiling].
func SaturateExit(failures int) int {
	if failures < 0 {
		return 0
	}
	if failures > ExitCeiling {
		return ExitCeiling
	}
	return failures
}

// ErrorKind classifies every way an item (or the whole run) can fail.
// Handlers and the runner wrap low-level errors in an UnpackError with
// the matching kind; the runner uses the kind to decide whether a
// failure is absorbed into the counters or aborts the run.
type ErrorKind string

const (
	// KindDetectionUnknown — content matched no known signature.
	KindDetectionUnknown ErrorKind = "DETECTION_UNKNOWN"

	// KindNoHandler — the type was recognized but no operation is
	// registered for it.
	KindNoHandler ErrorKind = "NO_HANDLER"

	// KindMissingDecoderTool — the external decoder program required by
	// the matched handler is not installed.
	KindMissingDecoderTool ErrorKind = "MISSING_DECODER_TOOL"

	// KindDecoderFailure — the external decoder ran but exited non-zero.
	KindDecoderFailure ErrorKind = "DECODER_FAILURE"

	// KindSizeLimitExceeded — the item exceeded the size ceiling and was
	// skipped before detection.
	KindSizeLimitExceeded ErrorKind = "SIZE_LIMIT_EXCEEDED"

	// KindCountLimitExceeded — the processed-item ceiling was reached.
	// Unlike every other per-item kind, this one aborts the run.
	KindCountLimitExceeded ErrorKind = "COUNT_LIMIT_EXCEEDED"

	// KindPathEscape — a computed output path resolved outside the
	// directory it must remain within.
	KindPathEscape ErrorKind = "PATH_ESCAPE"

	// KindIntegrityMismatch — a checksum sidecar disagreed with the
	// input. Advisory only: reported as a warning, never a failure.
	KindIntegrityMismatch ErrorKind = "INTEGRITY_MISMATCH"

	// KindInternal — an unexpected fault during orchestration. Triggers
	// immediate cleanup of tracked temporaries and termination.
	KindInternal ErrorKind = "INTERNAL_ERROR"
)

// Fatal reports whether this kind aborts the whole run rather than
// being absorbed into the failure counter.
func (k ErrorKind) Fatal() bool {
	return k == KindCountLimitExceeded || k == KindInternal
}

// UnpackError is the error type used throughout the unpacker. It
// carries the taxonomy kind, the path of the item involved (when there
// is one), and the underlying cause for errors.Is/errors.As chains.
type UnpackError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Path is the filesystem path of the item involved, if any.
	Path string

	// Message is the human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *UnpackError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", msg, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s [%s]", msg, e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *UnpackError) Unwrap() error {
	return e.Err
}

// NewError creates an UnpackError without an underlying cause.
func NewError(kind ErrorKind, path, message string) *UnpackError {
	return &UnpackError{Kind: kind, Path: path, Message: message}
}

// WrapError creates an UnpackError wrapping an existing error.
func WrapError(kind ErrorKind, path, message string, err error) *UnpackError {
	return &UnpackError{Kind: kind, Path: path, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from an error chain. Errors that are
// not (and do not wrap) an UnpackError report KindInternal, matching
// the propagation policy: anything unclassified is an orchestration
// fault.
func KindOf(err error) ErrorKind {
	for err != nil {
		if ue, ok := err.(*UnpackError); ok {
			return ue.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return KindInternal
}
