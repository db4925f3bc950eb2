// Package atomicfile provides crash-safe output writing and the
// process-wide registry of temporary paths that backs it.
//
// The writing pattern is write-to-temporary-then-rename: the temporary
// lives in the same directory as the final path so the commit is a
// same-filesystem rename, which is atomic. An observer of the target
// path sees either the old content (or nothing) or the complete new
// content, never a partial write.
//
// Every temporary — files created here and staging directories created
// by container handlers — is registered on creation and deregistered on
// commit. The registry's CleanupAll runs on every exit route (normal
// return, error, interrupt), so an aborted run leaves no strays behind.
package atomicfile
