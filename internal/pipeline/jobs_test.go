package pipeline

import (
	"testing"
	"time"
)

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusExtracting, "extracting lines"},
		{StatusParsing, "parsing structure"},
		{StatusEnriching, "enriching nodes"},
		{StatusStoring, "storing results"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetStatusFailed(t *testing.T) {
	job := &Job{
		ID:        "test-fail",
		Status:    StatusParsing,
		UpdatedAt: time.Now(),
	}
	job.SetStatus(StatusFailed, "parse error")
	if job.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("enrich MAS Notice 758#1 failed")
	job.AddError("store MAS Notice 758#2 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "enrich MAS Notice 758#1 failed" {
		t.Errorf("unexpected first error %q", snap.Progress.Errors[0])
	}
}

func TestJob_AddWarning(t *testing.T) {
	job := &Job{ID: "warn-test", UpdatedAt: time.Now()}
	job.AddWarning(`line 12 page 2: sequence break: "(d)"`)

	snap := job.Snapshot()
	if len(snap.Progress.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(snap.Progress.Warnings))
	}
	if snap.Progress.Warnings[0] != `line 12 page 2: sequence break: "(d)"` {
		t.Errorf("unexpected warning %q", snap.Progress.Warnings[0])
	}
}

func TestJob_Counters(t *testing.T) {
	job := &Job{ID: "counter-test", UpdatedAt: time.Now()}
	job.SetTotalNodes(5)
	job.IncrNodesEnriched()
	job.IncrNodesEnriched()
	job.IncrNodesStored()

	snap := job.Snapshot()
	if snap.Progress.TotalNodes != 5 {
		t.Errorf("expected 5 total nodes, got %d", snap.Progress.TotalNodes)
	}
	if snap.Progress.NodesEnriched != 2 {
		t.Errorf("expected 2 enriched nodes, got %d", snap.Progress.NodesEnriched)
	}
	if snap.Progress.NodesStored != 1 {
		t.Errorf("expected 1 stored node, got %d", snap.Progress.NodesStored)
	}
}

func TestJob_SetNoticeID(t *testing.T) {
	job := &Job{ID: "notice-test", UpdatedAt: time.Now()}
	job.SetNoticeID("MAS Notice 626")

	snap := job.Snapshot()
	if snap.NoticeID != "MAS Notice 626" {
		t.Errorf("expected notice ID %q, got %q", "MAS Notice 626", snap.NoticeID)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotSlicesNotNil(t *testing.T) {
	// Snapshot should always return non-nil error and warning slices.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Progress.Warnings == nil {
		t.Error("expected non-nil warnings slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
