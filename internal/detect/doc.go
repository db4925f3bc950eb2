// Package detect classifies file content into a TypeIdentifier by
// inspecting leading bytes (magic numbers).
//
// Detection is strictly content-based: the file name and extension play
// no part, so a gzip stream named "report.txt" classifies exactly like
// one named "report.gz". The signature table is closed and ordered —
// longer, more specific signatures are listed before shorter prefixes
// of the same leading byte so the first match is always the right one.
package detect
