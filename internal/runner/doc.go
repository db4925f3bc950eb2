// Package runner drives a batch decompression run: it walks the
// requested paths, applies the resource limits, dispatches each
// candidate through the detector and registry, and accumulates the
// outcome of every item.
//
// Execution is single-threaded and strictly sequential — items are
// processed one at a time in traversal order, and operations that
// invoke an external decoder block until it exits. The only shared
// mutable state (the counters and the temporary registry) is owned by
// the Session and needs no locking.
package runner
