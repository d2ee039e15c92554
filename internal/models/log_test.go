package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestLatestCheckResultLastRecordWins(t *testing.T) {
	log := EntryLog{
		NewCommitRecord("c1", "initial work"),
		NewCheckRunRecord("c1", true),
		NewCheckRunRecord("c1", false),
		NewCheckRunRecord("c1", true),
	}

	passed, err := log.LatestCheckResult("c1")
	if err != nil {
		t.Fatalf("LatestCheckResult() error = %v", err)
	}
	if !passed {
		t.Fatalf("LatestCheckResult() = false, want last appended result (true)")
	}
}

func TestLatestCheckResultRerunOverridesEarlierPass(t *testing.T) {
	log := EntryLog{
		NewCheckRunRecord("c1", true),
		NewCheckRunRecord("c1", false),
	}

	passed, err := log.LatestCheckResult("c1")
	if err != nil {
		t.Fatalf("LatestCheckResult() error = %v", err)
	}
	if passed {
		t.Fatalf("LatestCheckResult() = true, want false after failing re-run")
	}
}

func TestLatestCheckResultIgnoresOtherCommits(t *testing.T) {
	log := EntryLog{
		NewCheckRunRecord("c1", false),
		NewCommitRecord("c2", "new revision"),
		NewCheckRunRecord("c2", true),
	}

	passed, err := log.LatestCheckResult("c2")
	if err != nil {
		t.Fatalf("LatestCheckResult() error = %v", err)
	}
	if !passed {
		t.Fatalf("LatestCheckResult() = false, old commit's result leaked in")
	}
}

func TestLatestCheckResultEmptyLog(t *testing.T) {
	log := EntryLog{}

	if _, err := log.LatestCheckResult("c1"); err != ErrNoLogs {
		t.Fatalf("LatestCheckResult() error = %v, want ErrNoLogs", err)
	}
}

func TestLatestCheckResultNoRecordsForCommit(t *testing.T) {
	log := EntryLog{
		NewCommitRecord("c1", "work"),
		NewCheckRunRecord("c1", true),
	}

	if _, err := log.LatestCheckResult("c2"); err != ErrNoLogsForCommit {
		t.Fatalf("LatestCheckResult() error = %v, want ErrNoLogsForCommit", err)
	}
}

func TestLatestCheckResultNoCheckRunForCommit(t *testing.T) {
	log := EntryLog{
		NewCommitRecord("c1", "work"),
	}

	if _, err := log.LatestCheckResult("c1"); err != ErrNoCheckResult {
		t.Fatalf("LatestCheckResult() error = %v, want ErrNoCheckResult", err)
	}
}

func TestAppendLogRoundTrip(t *testing.T) {
	entry := &AssessmentTrackerEntry{EntryID: uuid.New()}

	if err := entry.AppendLog(NewInitiatedRecord()); err != nil {
		t.Fatalf("AppendLog(initiated) error = %v", err)
	}
	if err := entry.AppendLog(NewCommitRecord("c1", "first push")); err != nil {
		t.Fatalf("AppendLog(commit) error = %v", err)
	}
	if err := entry.AppendLog(NewCheckRunRecord("c1", true)); err != nil {
		t.Fatalf("AppendLog(check) error = %v", err)
	}

	log, err := entry.DecodedLog()
	if err != nil {
		t.Fatalf("DecodedLog() error = %v", err)
	}
	if len(log) != 3 {
		t.Fatalf("DecodedLog() len = %d, want 3", len(log))
	}
	if log[0].Kind != LogInitiated || log[1].Kind != LogCommitRecorded || log[2].Kind != LogCheckRun {
		t.Fatalf("DecodedLog() kinds = %v %v %v, order not preserved", log[0].Kind, log[1].Kind, log[2].Kind)
	}
	if log[2].ChecksPassed == nil || !*log[2].ChecksPassed {
		t.Fatalf("DecodedLog() check record lost checks_passed")
	}
}

func TestLatestCheckPassedWithoutCommit(t *testing.T) {
	entry := &AssessmentTrackerEntry{EntryID: uuid.New()}
	if err := entry.AppendLog(NewInitiatedRecord()); err != nil {
		t.Fatalf("AppendLog() error = %v", err)
	}

	if _, err := entry.LatestCheckPassed(); err != ErrNoLogsForCommit {
		t.Fatalf("LatestCheckPassed() error = %v, want ErrNoLogsForCommit", err)
	}
}
