package handler

// Operation names in the closed catalog. Mapping files refer to
// operations by these names; anything else is skipped.
const (
	OpZip      = "zip"
	OpGzip     = "gzip"
	OpBzip2    = "bzip2"
	OpCompress = "compress"
	OpXz       = "xz"
	OpZstd     = "zstd"
	OpLZ4      = "lz4"
)

// defaultPrograms maps each operation to the decoder binary it invokes
// when the settings file does not override it.
var defaultPrograms = map[string]string{
	OpZip:      "unzip",
	OpGzip:     "gzip",
	OpBzip2:    "bzip2",
	OpCompress: "uncompress",
	OpXz:       "xz",
	OpZstd:     "zstd",
	OpLZ4:      "lz4",
}

// NewCatalog builds the complete, closed set of named operations.
//
// overrides substitutes decoder program names per operation (e.g.
// gzip -> pigz) without changing behavior; unknown override keys are
// ignored. The returned map is the only source the registry resolves
// operation names from — externally supplied mapping entries can never
// reach code outside this set.
func NewCatalog(overrides map[string]string) map[string]Handler {
	prog := func(op string) string {
		if p, ok := overrides[op]; ok && p != "" {
			return p
		}
		return defaultPrograms[op]
	}

	return map[string]Handler{
		OpZip:      NewContainerHandler(OpZip, prog(OpZip)),
		OpGzip:     NewStreamHandler(OpGzip, prog(OpGzip), "-dc"),
		OpBzip2:    NewStreamHandler(OpBzip2, prog(OpBzip2), "-dc"),
		OpCompress: NewStreamHandler(OpCompress, prog(OpCompress), "-c"),
		OpXz:       NewStreamHandler(OpXz, prog(OpXz), "-dc"),
		OpZstd:     NewStreamHandler(OpZstd, prog(OpZstd), "-d", "-c", "-q"),
		OpLZ4:      NewStreamHandler(OpLZ4, prog(OpLZ4), "-dc"),
	}
}
