// Package mergelog defines the durable audit trail of guest-to-server cart
// merges.
//
// A merge is not atomic across line items: each guest line is pushed to the
// server cart individually, and a partial failure leaves some lines merged
// and others not. The log records every transition so that
//
//  1. support can see exactly which lines made it across, correlated with
//     the distributed trace via trace_id, and
//  2. a restarted process can detect a merge that was cut short and leave
//     the unmerged guest lines in place for the next attempt.
package mergelog

import "time"

// Status is the lifecycle state of a merge execution.
type Status string

const (
	StatusStarted  Status = "STARTED"
	StatusStepDone Status = "STEP_DONE"
	StatusComplete Status = "COMPLETED"
	StatusPartial  Status = "PARTIAL"
	StatusFailed   Status = "FAILED"
)

// Entry is one row of the merge log: a point-in-time snapshot of a merge.
type Entry struct {
	// MergeID identifies one merge execution (a UUID minted at login).
	MergeID string

	// Status is the lifecycle state at the time this row was written.
	Status Status

	// CurrentStep names the line-item step that just executed or failed,
	// e.g. "bump:prod-42".
	CurrentStep string

	// Payload is the JSON-serialised guest cart that started the merge.
	// Written once on STARTED.
	Payload string

	// ErrorMessages is a JSON array of failure details, one per failed line.
	ErrorMessages string

	// TraceID / SpanID come from the OpenTelemetry span active when the
	// entry was written, linking the row to the full trace.
	TraceID string
	SpanID  string

	// UpdatedAt is the wall-clock time of this entry.
	UpdatedAt time.Time
}
