package constants

// RunStatus is the canonical status for rows in extract_runs.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning RunStatus = "RUNNING" // submitted, not finished
	RunStatusOK      RunStatus = "OK"      // json persisted (and image, if requested)
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure for this file
)
