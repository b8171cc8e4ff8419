package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunComplete  = "complete"
	RunFailed    = "failed"
	RunCancelled = "cancelled"
)

// Run represents one collect invocation.
type Run struct {
	RunID        int64
	RunKey       string
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	Status       string
	StartDate    string
	EndDate      string
	TitleCount   int
	RequestCount int
	MissCount    int
}

// RunOutput is a corpus file written by a run.
type RunOutput struct {
	AccessType  string
	FilePath    string
	ContentHash string
	TitleCount  int
	EmptyCount  int
}

// ErrRunNotFound is returned when a run id or key matches nothing.
var ErrRunNotFound = errors.New("run not found")

// CreateRun starts a new run and returns its id and generated key.
func (db *DB) CreateRun(startDate, endDate string, titleCount int) (int64, string, error) {
	runKey := uuid.NewString()

	result, err := db.Exec(`
		INSERT INTO runs (run_key, start_date, end_date, title_count)
		VALUES (?, ?, ?, ?)
	`, runKey, startDate, endDate, titleCount)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, "", fmt.Errorf("failed to get run ID: %w", err)
	}

	return runID, runKey, nil
}

// FinishRun stamps the run with its final status and counters.
func (db *DB) FinishRun(runID int64, status string, requestCount, missCount int) error {
	result, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP, status = ?, request_count = ?, miss_count = ?
		WHERE run_id = ?
	`, status, requestCount, missCount, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	return nil
}

// RecordOutput stores the file written for one access type. Re-recording the
// same access type replaces the earlier row.
func (db *DB) RecordOutput(runID int64, out RunOutput) error {
	_, err := db.Exec(`
		INSERT INTO run_outputs (run_id, access_type, file_path, content_hash, title_count, empty_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, access_type) DO UPDATE SET
			file_path = excluded.file_path,
			content_hash = excluded.content_hash,
			title_count = excluded.title_count,
			empty_count = excluded.empty_count
	`, runID, out.AccessType, out.FilePath, out.ContentHash, out.TitleCount, out.EmptyCount)
	if err != nil {
		return fmt.Errorf("failed to record output: %w", err)
	}
	return nil
}

const runColumns = `run_id, run_key, started_at, finished_at, status, start_date, end_date, title_count, request_count, miss_count`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	err := row.Scan(
		&r.RunID,
		&r.RunKey,
		&r.StartedAt,
		&r.FinishedAt,
		&r.Status,
		&r.StartDate,
		&r.EndDate,
		&r.TitleCount,
		&r.RequestCount,
		&r.MissCount,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRun retrieves a run by its ID
func (db *DB) GetRun(runID int64) (*Run, error) {
	run, err := scanRun(db.QueryRow("SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// FindRun resolves a run reference: a numeric id, "latest", or a prefix of
// the run key.
func (db *DB) FindRun(ref string) (*Run, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "latest" {
		run, err := scanRun(db.QueryRow("SELECT " + runColumns + " FROM runs ORDER BY run_id DESC LIMIT 1"))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get latest run: %w", err)
		}
		return run, nil
	}

	if runID, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return db.GetRun(runID)
	}

	rows, err := db.Query("SELECT "+runColumns+" FROM runs WHERE run_key LIKE ? ORDER BY run_id DESC LIMIT 2", ref+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("run %q: %w", ref, ErrRunNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run key prefix %q is ambiguous", ref)
	}
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query("SELECT "+runColumns+" FROM runs ORDER BY run_id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRunOutputs lists the files a run wrote, ordered by access type.
func (db *DB) GetRunOutputs(runID int64) ([]RunOutput, error) {
	rows, err := db.Query(`
		SELECT access_type, file_path, content_hash, title_count, empty_count
		FROM run_outputs
		WHERE run_id = ?
		ORDER BY access_type
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run outputs: %w", err)
	}
	defer rows.Close()

	var outputs []RunOutput
	for rows.Next() {
		var o RunOutput
		if err := rows.Scan(&o.AccessType, &o.FilePath, &o.ContentHash, &o.TitleCount, &o.EmptyCount); err != nil {
			return nil, fmt.Errorf("failed to scan run output: %w", err)
		}
		outputs = append(outputs, o)
	}
	return outputs, rows.Err()
}

// GetRunMisses returns every failed access in a run, ordered by title then
// variant.
func (db *DB) GetRunMisses(runID int64) ([]AccessRecord, error) {
	rows, err := db.Query(`
		SELECT aa.access_id, aa.run_id, a.title, aa.access_type, aa.variant, aa.success, aa.error_kind, aa.error_message, aa.month_count
		FROM article_accesses aa
		JOIN articles a ON a.article_id = aa.article_id
		WHERE aa.run_id = ? AND aa.success = 0
		ORDER BY a.title, aa.variant
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run misses: %w", err)
	}
	defer rows.Close()

	var misses []AccessRecord
	for rows.Next() {
		var rec AccessRecord
		var kind, msg sql.NullString
		if err := rows.Scan(
			&rec.AccessID,
			&rec.RunID,
			&rec.Title,
			&rec.AccessType,
			&rec.Variant,
			&rec.Success,
			&kind,
			&msg,
			&rec.MonthCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan access: %w", err)
		}
		rec.ErrorKind = kind.String
		rec.ErrorMessage = msg.String
		misses = append(misses, rec)
	}
	return misses, rows.Err()
}
