// Package registry maps detected content types to decompression
// operations.
//
// The mapping is built in two layers with explicit, deterministic
// precedence: built-in entries first, then entries from an optional
// local mapping file, applied in file order. A later registration for
// the same type always replaces the earlier one, so the file can both
// add types (bind application/x-xz to the xz operation) and override
// built-ins (send application/gzip to a different operation).
//
// Operation names resolve against the closed handler catalog only.
// A mapping line can never point at arbitrary code — an unknown
// operation name is skipped, exactly like a malformed line.
package registry
