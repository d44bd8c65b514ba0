package models

import "time"

// SyncError records a single failed item during a sync pass. ItemID is the
// local event id or the remote event id of the offending item.
type SyncError struct {
	ItemID  string `json:"item_id"`
	Message string `json:"message"`
}

// SyncResult aggregates the outcome of one reconciliation pass. Individual
// item failures land in Errors and never abort the surrounding phase.
type SyncResult struct {
	Imported   int         `json:"imported"`
	Exported   int         `json:"exported"`
	Updated    int         `json:"updated"`
	Errors     []SyncError `json:"errors,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// AddError appends a per-item failure.
func (r *SyncResult) AddError(itemID string, err error) {
	r.Errors = append(r.Errors, SyncError{ItemID: itemID, Message: err.Error()})
}
