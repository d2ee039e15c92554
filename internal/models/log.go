package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LogKind string

const (
	LogInitiated        LogKind = "initiated"
	LogCommitRecorded   LogKind = "commit"
	LogCheckRun         LogKind = "check"
	LogReviewerAssigned LogKind = "reviewer_assigned"
	LogApproved         LogKind = "approved"
)

// LogRecord is one element of an entry's append-only log. All variants
// share the same storage shape; optional fields are omitted per kind so
// existing rows written by older services still decode.
type LogRecord struct {
	Kind             LogKind     `json:"kind"`
	Timestamp        time.Time   `json:"timestamp"`
	Status           EntryStatus `json:"status,omitempty"`
	Message          string      `json:"message,omitempty"`
	Commit           string      `json:"commit,omitempty"`
	ChecksPassed     *bool       `json:"checks_passed,omitempty"`
	ReviewerID       string      `json:"reviewer_id,omitempty"`
	ReviewerUsername string      `json:"reviewer,omitempty"`
}

func NewInitiatedRecord() LogRecord {
	return LogRecord{
		Kind:      LogInitiated,
		Timestamp: time.Now().UTC(),
		Status:    StatusInitiated,
	}
}

func NewCommitRecord(commit string, message string) LogRecord {
	return LogRecord{
		Kind:      LogCommitRecorded,
		Timestamp: time.Now().UTC(),
		Commit:    commit,
		Message:   message,
	}
}

func NewCheckRunRecord(commit string, passed bool) LogRecord {
	return LogRecord{
		Kind:         LogCheckRun,
		Timestamp:    time.Now().UTC(),
		Commit:       commit,
		ChecksPassed: &passed,
	}
}

func NewReviewerAssignedRecord(reviewerID uuid.UUID, reviewerUsername string) LogRecord {
	return LogRecord{
		Kind:             LogReviewerAssigned,
		Timestamp:        time.Now().UTC(),
		Status:           StatusUnderReview,
		ReviewerID:       reviewerID.String(),
		ReviewerUsername: reviewerUsername,
	}
}

func NewApprovedRecord(commit string, reviewerUsername string) LogRecord {
	return LogRecord{
		Kind:             LogApproved,
		Timestamp:        time.Now().UTC(),
		Status:           StatusApproved,
		Commit:           commit,
		ReviewerUsername: reviewerUsername,
	}
}

type EntryLog []LogRecord

func DecodeLog(raw datatypes.JSON) (EntryLog, error) {
	if len(raw) == 0 {
		return EntryLog{}, nil
	}

	var log EntryLog
	if err := json.Unmarshal(raw, &log); err != nil {
		return nil, err
	}

	return log, nil
}

func (l EntryLog) Encode() (datatypes.JSON, error) {
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(raw), nil
}

// LatestCheckResult reports whether the given commit passed checks.
// The rule is last-record-wins: among log records for this commit that
// carry a check result, the most recently appended one governs, so a
// re-run always overrides an earlier run of the same commit.
func (l EntryLog) LatestCheckResult(latestCommit string) (bool, error) {
	if len(l) == 0 {
		return false, ErrNoLogs
	}

	matched := false
	found := false
	passed := false

	for _, record := range l {
		if record.Commit != latestCommit {
			continue
		}

		matched = true
		if record.ChecksPassed != nil {
			found = true
			passed = *record.ChecksPassed
		}
	}

	if !matched {
		return false, ErrNoLogsForCommit
	}

	if !found {
		return false, ErrNoCheckResult
	}

	return passed, nil
}

// DecodedLog returns the entry's log as typed records.
func (e *AssessmentTrackerEntry) DecodedLog() (EntryLog, error) {
	return DecodeLog(e.Log)
}

// AppendLog appends a record to the entry's log in memory. The log is
// append-only; records are never rewritten or reordered.
func (e *AssessmentTrackerEntry) AppendLog(record LogRecord) error {
	log, err := e.DecodedLog()
	if err != nil {
		return err
	}

	encoded, err := append(log, record).Encode()
	if err != nil {
		return err
	}

	e.Log = encoded
	return nil
}

// LatestCheckPassed applies the verification rule against the entry's
// current latest commit.
func (e *AssessmentTrackerEntry) LatestCheckPassed() (bool, error) {
	if e.LatestCommit == nil {
		return false, ErrNoLogsForCommit
	}

	log, err := e.DecodedLog()
	if err != nil {
		return false, err
	}

	return log.LatestCheckResult(*e.LatestCommit)
}
