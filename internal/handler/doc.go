// Package handler implements the decompression operations that the
// registry binds to detected content types.
//
// No codec is implemented in-process. Every operation delegates the
// actual decoding to an external program (unzip, gzip, bzip2, ...)
// and concerns itself only with orchestration: deriving the output
// path, guarding it against directory escape, and writing the result
// atomically so failures never leave partial output behind.
//
// The set of operations is closed: NewCatalog enumerates every
// operation the tool can ever perform. Externally supplied mapping
// entries can rebind detected types to these named operations but can
// never introduce new executable behavior.
package handler
