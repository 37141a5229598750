package domain

import "testing"

func TestSyncStats_Add(t *testing.T) {
	total := SyncStats{}
	total.Add(SyncStats{Fetched: 10, Created: 4, Updated: 3, Skipped: 2, Failed: 1})
	total.Add(SyncStats{Fetched: 5, Created: 1, Skipped: 4})

	if total.Fetched != 15 {
		t.Errorf("expected 15 fetched, got %d", total.Fetched)
	}
	if total.Created != 5 {
		t.Errorf("expected 5 created, got %d", total.Created)
	}
	if total.Updated != 3 {
		t.Errorf("expected 3 updated, got %d", total.Updated)
	}
	if total.Skipped != 6 {
		t.Errorf("expected 6 skipped, got %d", total.Skipped)
	}
	if total.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", total.Failed)
	}
}

func TestSyncRunSummary_RecordError(t *testing.T) {
	run := &SyncRunSummary{RunID: "run-1", StoreID: "store-1"}
	run.RecordError(ErrorRecord{Kind: ErrorKindNetwork, Message: "ECONNRESET", Attempt: 1, Retryable: true})
	run.RecordError(ErrorRecord{Kind: ErrorKindCaptcha, Message: "captcha detected", Attempt: 1})

	if len(run.Errors) != 2 {
		t.Fatalf("expected 2 error records, got %d", len(run.Errors))
	}
	if run.Errors[0].Kind != ErrorKindNetwork {
		t.Errorf("expected network_error first, got %s", run.Errors[0].Kind)
	}
	if run.Errors[1].Retryable {
		t.Error("captcha record should not be retryable")
	}
}
