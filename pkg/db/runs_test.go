package db

import (
	"errors"
	"strconv"
	"testing"
)

func TestCreateRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, runKey, err := db.CreateRun("2015070100", "2022100100", 42)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if runID == 0 {
		t.Error("CreateRun() returned 0 run ID")
	}
	if len(runKey) != 36 {
		t.Errorf("CreateRun() key = %q, want a uuid", runKey)
	}

	run, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Status != RunRunning {
		t.Errorf("run.Status = %q, want %q", run.Status, RunRunning)
	}
	if run.TitleCount != 42 {
		t.Errorf("run.TitleCount = %d, want 42", run.TitleCount)
	}
	if run.FinishedAt.Valid {
		t.Error("run.FinishedAt set before FinishRun")
	}
	if run.StartedAt.IsZero() {
		t.Error("run.StartedAt not populated")
	}
}

func TestFinishRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, _, err := db.CreateRun("2015070100", "2022100100", 2)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if err := db.FinishRun(runID, RunComplete, 8, 1); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	run, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Status != RunComplete || run.RequestCount != 8 || run.MissCount != 1 {
		t.Errorf("run = %+v, want complete with 8 requests and 1 miss", run)
	}
	if !run.FinishedAt.Valid {
		t.Error("run.FinishedAt not set")
	}

	if err := db.FinishRun(999, RunComplete, 0, 0); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FinishRun(999) error = %v, want ErrRunNotFound", err)
	}
}

func TestGetRunMisses(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, _, err := db.CreateRun("2015070100", "2022100100", 2)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	steg, _ := db.InsertArticle("Stegosaurus")
	nope, _ := db.InsertArticle("Nopesaurus")

	accesses := []struct {
		article int64
		variant string
		kind    string
	}{
		{steg, "mobile-web", ""},
		{steg, "mobile-app", ""},
		{nope, "mobile-web", "not_found"},
		{nope, "mobile-app", "not_found"},
	}
	for _, a := range accesses {
		if err := db.RecordAccess(runID, a.article, "mobile", a.variant, a.kind, "", 0); err != nil {
			t.Fatalf("RecordAccess() error = %v", err)
		}
	}

	misses, err := db.GetRunMisses(runID)
	if err != nil {
		t.Fatalf("GetRunMisses() error = %v", err)
	}
	if len(misses) != 2 {
		t.Fatalf("GetRunMisses() returned %d, want 2", len(misses))
	}
	if misses[0].Variant != "mobile-app" || misses[1].Variant != "mobile-web" {
		t.Errorf("misses not ordered by variant: %+v", misses)
	}
	for _, m := range misses {
		if m.Title != "Nopesaurus" || m.ErrorKind != "not_found" || m.Success {
			t.Errorf("unexpected miss %+v", m)
		}
	}
}

func TestRecordOutput_Upsert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, _, err := db.CreateRun("2015070100", "2022100100", 2)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	out := RunOutput{AccessType: "desktop", FilePath: "a.json", ContentHash: "h1", TitleCount: 2, EmptyCount: 1}
	if err := db.RecordOutput(runID, out); err != nil {
		t.Fatalf("RecordOutput() error = %v", err)
	}
	out.ContentHash = "h2"
	if err := db.RecordOutput(runID, out); err != nil {
		t.Fatalf("RecordOutput() second call error = %v", err)
	}
	if err := db.RecordOutput(runID, RunOutput{AccessType: "cumulative", FilePath: "c.json", ContentHash: "h3", TitleCount: 2}); err != nil {
		t.Fatalf("RecordOutput() error = %v", err)
	}

	outputs, err := db.GetRunOutputs(runID)
	if err != nil {
		t.Fatalf("GetRunOutputs() error = %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("GetRunOutputs() returned %d, want 2", len(outputs))
	}
	if outputs[0].AccessType != "cumulative" || outputs[1].ContentHash != "h2" {
		t.Errorf("GetRunOutputs() = %+v", outputs)
	}
}

func TestListRuns_And_FindRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var keys []string
	var ids []int64
	for i := 0; i < 3; i++ {
		id, key, err := db.CreateRun("2015070100", "2022100100", i+1)
		if err != nil {
			t.Fatalf("CreateRun() error = %v", err)
		}
		ids = append(ids, id)
		keys = append(keys, key)
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != ids[2] {
		t.Errorf("ListRuns(2) = %+v, want newest first", runs)
	}

	tests := []struct {
		name string
		ref  string
		want int64
	}{
		{name: "latest", ref: "latest", want: ids[2]},
		{name: "empty means latest", ref: "", want: ids[2]},
		{name: "numeric id", ref: strconv.FormatInt(ids[0], 10), want: ids[0]},
		{name: "full key", ref: keys[1], want: ids[1]},
		{name: "key prefix", ref: keys[1][:13], want: ids[1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := db.FindRun(tt.ref)
			if err != nil {
				t.Fatalf("FindRun(%q) error = %v", tt.ref, err)
			}
			if run.RunID != tt.want {
				t.Errorf("FindRun(%q) = %d, want %d", tt.ref, run.RunID, tt.want)
			}
		})
	}

	if _, err := db.FindRun("zzzz"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FindRun(zzzz) error = %v, want ErrRunNotFound", err)
	}
	if _, err := db.FindRun("999"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FindRun(999) error = %v, want ErrRunNotFound", err)
	}
}

func TestFindRun_EmptyLedger(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.FindRun("latest"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FindRun(latest) error = %v, want ErrRunNotFound", err)
	}
}
