package registry

import (
	"bufio"
	"os"
	"strings"

	"github.com/mmr-tortoise/unpack/internal/handler"
	"github.com/mmr-tortoise/unpack/internal/model"
)

// Registry associates TypeIdentifiers with handlers. At most one
// handler per identifier; Register overwrites.
type Registry struct {
	entries map[model.TypeIdentifier]handler.Handler
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[model.TypeIdentifier]handler.Handler)}
}

// Register inserts or overwrites the handler for typ.
func (r *Registry) Register(typ model.TypeIdentifier, h handler.Handler) {
	r.entries[typ] = h
}

// Lookup returns the handler registered for typ, if any.
func (r *Registry) Lookup(typ model.TypeIdentifier) (handler.Handler, bool) {
	h, ok := r.entries[typ]
	return h, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.entries)
}

// builtins lists the type bindings present before any mapping file is
// applied. The detector also recognizes xz/zstd/lz4 content, but those
// types are deliberately unbound by default — binding them is what the
// mapping file is for.
var builtins = map[model.TypeIdentifier]string{
	model.TypeZip:      handler.OpZip,
	model.TypeGzip:     handler.OpGzip,
	model.TypeBzip2:    handler.OpBzip2,
	model.TypeCompress: handler.OpCompress,
}

// NewWithBuiltins creates a registry pre-populated with the built-in
// type bindings, resolved against catalog.
func NewWithBuiltins(catalog map[string]handler.Handler) *Registry {
	r := New()
	for typ, op := range builtins {
		if h, ok := catalog[op]; ok {
			r.Register(typ, h)
		}
	}
	return r
}

// LoadMappingFile merges entries from the mapping file at path into r,
// resolving operation names against catalog.
//
// File format, one entry per line:
//
//	<type> <operationName>
//
// Blank lines and lines starting with '#' are ignored. Malformed lines
// (missing operation name, extra fields, unknown operation) are
// skipped silently — the mapping file is user-editable configuration,
// not a program, and a bad line must not take the run down.
//
// A missing file is not an error: the file is optional.
func LoadMappingFile(r *Registry, path string, catalog map[string]handler.Handler) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}

		h, ok := catalog[fields[1]]
		if !ok {
			continue
		}
		r.Register(model.TypeIdentifier(fields[0]), h)
	}

	return scanner.Err()
}
