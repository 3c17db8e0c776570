package models

import "time"

type EventAction string

const (
	EventSubmit EventAction = "submit"
	EventDelete EventAction = "delete"
)

// SubmissionEvent is one line of a week's audit trail, appended whenever the
// week is submitted or deleted.
type SubmissionEvent struct {
	ID        int64       `json:"id"`
	BranchID  int         `json:"branchId"`
	WeekID    string      `json:"weekId"`
	Action    EventAction `json:"action"`
	Status    Status      `json:"status"`
	FileCount int         `json:"fileCount"`
	Actor     string      `json:"actor"`
	CreatedAt time.Time   `json:"createdAt"`
}
