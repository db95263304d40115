package constants

// OutcomeStatus is the canonical status for a per-document outcome.
type OutcomeStatus string

// Stable values (store these exact strings in DB and exports).
const (
	StatusOK      OutcomeStatus = "ok"      // extracted and validated
	StatusError   OutcomeStatus = "error"   // terminal failure for this document
	StatusSkipped OutcomeStatus = "skipped" // not attempted (unsupported file type)
)
