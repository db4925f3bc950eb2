// Package safepath rejects output paths that would escape the
// directory they are supposed to stay within.
//
// Handlers derive output paths from input names and, for containers,
// from archive entry names. Either source can be crafted (or buggy)
// in ways that resolve outside the target directory — "../../etc/x",
// absolute entry names, symlinked bases. Every computed output path
// goes through Within before anything is written to it.
package safepath
