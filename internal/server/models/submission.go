// Package models defines the server-side records persisted by the portal.
package models

import (
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/attachments"
	"github.com/bomin1134/gb-ud-portal/internal/common"
)

// Status is the closed set of weekly submission states. The string values
// are what the status column stores.
type Status string

const (
	StatusNotSubmitted      Status = "NONE"
	StatusReportSubmitted   Status = "REPORT"
	StatusOfficialSubmitted Status = "OFFICIAL"
)

var statusLabels = map[Status]string{
	StatusNotSubmitted:      "미제출",
	StatusReportSubmitted:   "보고서 제출",
	StatusOfficialSubmitted: "공문 제출",
}

// ParseStatus reads a stored status. Unknown or empty values read as
// StatusNotSubmitted.
func ParseStatus(s string) Status {
	st := Status(s)
	if _, ok := statusLabels[st]; ok {
		return st
	}
	return StatusNotSubmitted
}

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Submitted is true for the two states a submit action can set.
func (s Status) Submitted() bool {
	return s == StatusReportSubmitted || s == StatusOfficialSubmitted
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[StatusNotSubmitted]
}

// Submission is the record for one (branch, week). A record that was never
// written reads as the value returned by NewSubmission.
type Submission struct {
	BranchID    int               `json:"branchId"`
	WeekID      string            `json:"weekId"`
	Title       string            `json:"title"`
	Status      Status            `json:"status"`
	Note        string            `json:"note"`
	Files       []attachments.Ref `json:"files"`
	SubmittedAt *time.Time        `json:"submittedAt"`
}

// NewSubmission returns the all-default record for a branch week.
func NewSubmission(branchID int, weekID string) *Submission {
	return &Submission{
		BranchID: branchID,
		WeekID:   weekID,
		Status:   StatusNotSubmitted,
		Files:    []attachments.Ref{},
	}
}

// ID is the row key, "<branch>_<week>".
func (s *Submission) ID() string {
	return common.RecordID(s.BranchID, s.WeekID)
}

// Reset clears the record back to its defaults, keeping its key.
func (s *Submission) Reset() {
	*s = *NewSubmission(s.BranchID, s.WeekID)
}
