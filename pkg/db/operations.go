package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// AccessRecord is one API request recorded against a run.
type AccessRecord struct {
	AccessID     int64
	RunID        int64
	Title        string
	AccessType   string
	Variant      string
	Success      bool
	ErrorKind    string
	ErrorMessage string
	MonthCount   int
}

// InsertArticle inserts a title, returning the article_id.
// If the title already exists, returns the existing article_id.
func (db *DB) InsertArticle(title string) (int64, error) {
	var existingID int64
	err := db.QueryRow("SELECT article_id FROM articles WHERE title = ?", title).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check existing article: %w", err)
	}

	result, err := db.Exec("INSERT INTO articles (title) VALUES (?)", title)
	if err != nil {
		return 0, fmt.Errorf("failed to insert article: %w", err)
	}

	articleID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get article ID: %w", err)
	}

	return articleID, nil
}

// RecordAccess records one request for an article in a run. An empty
// errorKind marks the request as successful.
func (db *DB) RecordAccess(runID, articleID int64, accessType, variant, errorKind, errorMessage string, monthCount int) error {
	_, err := db.Exec(`
		INSERT INTO article_accesses (run_id, article_id, access_type, variant, success, error_kind, error_message, month_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, articleID, accessType, variant, errorKind == "", NewNullString(errorKind), NewNullString(errorMessage), monthCount)
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}

// NewNullString returns a NULL for the empty string.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
