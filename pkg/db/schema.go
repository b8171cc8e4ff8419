package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per collect invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_key TEXT NOT NULL UNIQUE,          -- uuid, printed in logs
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    status TEXT NOT NULL DEFAULT 'running', -- running, complete, failed, cancelled
    start_date TEXT NOT NULL,               -- YYYYMMDDHH
    end_date TEXT NOT NULL,
    title_count INTEGER NOT NULL,
    request_count INTEGER DEFAULT 0,
    miss_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

-- Articles: every title ever requested
CREATE TABLE IF NOT EXISTS articles (
    article_id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Article accesses: one row per API request (or cache hit) within a run
CREATE TABLE IF NOT EXISTS article_accesses (
    access_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    article_id INTEGER NOT NULL,
    access_type TEXT NOT NULL,   -- desktop, mobile, cumulative
    variant TEXT NOT NULL,       -- desktop, mobile-web, mobile-app, all-access
    accessed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    success BOOLEAN NOT NULL,
    error_kind TEXT,             -- not_found, network_error, parse_error
    error_message TEXT,
    month_count INTEGER DEFAULT 0,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    FOREIGN KEY (article_id) REFERENCES articles(article_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_accesses_run ON article_accesses(run_id);
CREATE INDEX IF NOT EXISTS idx_accesses_article ON article_accesses(article_id);
CREATE INDEX IF NOT EXISTS idx_accesses_success ON article_accesses(success);

-- Run outputs: the corpus file written for each access type
CREATE TABLE IF NOT EXISTS run_outputs (
    output_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    access_type TEXT NOT NULL,
    file_path TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    title_count INTEGER NOT NULL,
    empty_count INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, access_type)
);

CREATE INDEX IF NOT EXISTS idx_outputs_run ON run_outputs(run_id);
`
