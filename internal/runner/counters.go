package runner

import (
	"fmt"
	"io"
)

// Counters accumulates per-item outcomes for one run. It is owned by
// the Session's single sequential flow; components report outcomes
// through the Session rather than mutating shared state.
type Counters struct {
	// Succeeded is the number of items decompressed successfully.
	Succeeded int

	// Failed is the number of items recorded as not-decompressed for
	// any reason (ignored, failed, or skipped).
	Failed int
}

// RecordSuccess counts one decompressed item.
func (c *Counters) RecordSuccess() {
	c.Succeeded++
}

// RecordFailure counts one not-decompressed item.
func (c *Counters) RecordFailure() {
	c.Failed++
}

// Processed is the total number of items that received an outcome.
func (c *Counters) Processed() int {
	return c.Succeeded + c.Failed
}

// Report writes the final summary line to w and returns the failure
// count for the caller to convert into an exit status.
func (c *Counters) Report(w io.Writer) int {
	fmt.Fprintf(w, "Decompressed %d archive(s)\n", c.Succeeded)
	return c.Failed
}
