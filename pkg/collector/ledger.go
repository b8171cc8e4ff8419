package collector

import (
	"fmt"
	"sync"

	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/db"
	"github.com/dtnitsch/pageview-charts/pkg/pageviews"
)

// DBLedger records accesses for one run in the SQLite ledger.
type DBLedger struct {
	db    *db.DB
	runID int64

	mu       sync.Mutex
	articles map[string]int64
}

func NewDBLedger(database *db.DB, runID int64) *DBLedger {
	return &DBLedger{db: database, runID: runID, articles: make(map[string]int64)}
}

func (l *DBLedger) RecordAccess(title string, access models.AccessType, variant string, kind pageviews.Kind, err error, months int) error {
	articleID, lookupErr := l.articleID(title)
	if lookupErr != nil {
		return lookupErr
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return l.db.RecordAccess(l.runID, articleID, string(access), variant, string(kind), msg, months)
}

func (l *DBLedger) articleID(title string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id, ok := l.articles[title]; ok {
		return id, nil
	}
	id, err := l.db.InsertArticle(title)
	if err != nil {
		return 0, fmt.Errorf("article %q: %w", title, err)
	}
	l.articles[title] = id
	return id, nil
}
