package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/caching"
	"github.com/dtnitsch/pageview-charts/pkg/collector"
	"github.com/dtnitsch/pageview-charts/pkg/db"
	"github.com/dtnitsch/pageview-charts/pkg/fetcher"
	"github.com/dtnitsch/pageview-charts/pkg/manifest"
	"github.com/dtnitsch/pageview-charts/pkg/pageviews"
	"github.com/dtnitsch/pageview-charts/pkg/ratelimit"
	"github.com/dtnitsch/pageview-charts/pkg/storage"
	"github.com/dtnitsch/pageview-charts/pkg/titles"
)

// ErrCancelled is returned when the run was interrupted before every access
// type finished. Nothing is written in that case.
var ErrCancelled = errors.New("collection cancelled before completion")

// Result describes a finished collect run.
type Result struct {
	RunID        int64
	RunKey       string
	Titles       int
	Requests     int
	Paths        map[models.AccessType]string
	Misses       []collector.Miss
	ManifestPath string
	Manifest     manifest.CollectManifest
}

// Deps lets tests swap the network and ledger.
type Deps struct {
	Getter pageviews.Getter
	Pacer  ratelimit.Pacer
	DB     *db.DB
}

// Run collects every requested access type, then writes the corpus files,
// the manifest and the ledger rows. Output is only written once every access
// type has been collected.
func Run(ctx context.Context, cfg *models.Config, accesses []models.AccessType, deps Deps, logger *slog.Logger) (*Result, error) {
	titleList, err := titles.Load(cfg.TitlesFile, cfg.TitleColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to load titles: %w", err)
	}
	logger.Info("Loaded titles", "count", len(titleList), "file", cfg.TitlesFile)

	getter := deps.Getter
	if getter == nil {
		getter = fetcher.NewFetcher(cfg.API.UserAgent, cfg.API.RequestTimeout)
	}
	pacer := deps.Pacer
	if pacer == nil {
		pacer = ratelimit.NewLimiter(cfg.API.ThrottleInterval())
	}

	client := pageviews.NewClient(getter, pacer, pageviews.OptionsFromConfig(cfg), logger)
	if cfg.Cache.TTL > 0 {
		cache, err := caching.NewCache(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		client.WithCache(cache)
		if removed, err := cache.Prune(); err != nil {
			logger.Warn("failed to prune cache", "error", err)
		} else if removed > 0 {
			logger.Info("Pruned expired cache entries", "removed", removed)
		}
	}

	database := deps.DB
	if database == nil {
		database, err = db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
	}
	logger.Debug("Using run ledger", "path", database.Path())

	runID, runKey, err := database.CreateRun(cfg.Start, cfg.End, len(titleList))
	if err != nil {
		return nil, err
	}
	logger.Info("Run started", "run_id", runID, "run_key", runKey)

	c := collector.New(client, collector.NewDBLedger(database, runID), logger, collector.Options{
		MobilePartial: cfg.MobilePartial,
	})

	result := &Result{
		RunID:  runID,
		RunKey: runKey,
		Titles: len(titleList),
		Paths:  storage.OutputPaths(cfg.OutputDir, cfg.FilePrefix, cfg.Start, cfg.End),
	}

	corpora := make(map[models.AccessType]models.Corpus, len(accesses))
	for _, access := range accesses {
		corpus, misses, err := c.Collect(ctx, titleList, access)
		if err != nil {
			status := db.RunFailed
			if ctx.Err() != nil {
				status = db.RunCancelled
				err = fmt.Errorf("%w: %w", ErrCancelled, err)
			}
			if ferr := database.FinishRun(runID, status, client.Requests(), len(result.Misses)); ferr != nil {
				logger.Warn("failed to finish run", "run_id", runID, "error", ferr)
			}
			return nil, err
		}
		corpora[access] = corpus
		result.Misses = append(result.Misses, misses...)
	}
	result.Requests = client.Requests()

	s := &storage.Storage{}
	var outputs []manifest.Output
	for _, access := range accesses {
		path := result.Paths[access]
		corpus := corpora[access]

		hash, err := s.SaveCorpus(path, corpus)
		if err != nil {
			_ = database.FinishRun(runID, db.RunFailed, result.Requests, len(result.Misses))
			return nil, err
		}
		logger.Info("Wrote corpus", "access", access, "path", path, "titles", len(corpus))

		err = database.RecordOutput(runID, db.RunOutput{
			AccessType:  string(access),
			FilePath:    path,
			ContentHash: hash,
			TitleCount:  len(corpus),
			EmptyCount:  len(corpus.EmptyTitles()),
		})
		if err != nil {
			logger.Warn("failed to record output", "access", access, "error", err)
		}
		outputs = append(outputs, manifest.Output{Access: access, FilePath: path, Corpus: corpus})
	}

	result.Manifest = manifest.Build(manifest.Run{
		Key:        runKey,
		StartDate:  cfg.Start,
		EndDate:    cfg.End,
		TitleCount: len(titleList),
		Requests:   result.Requests,
	}, outputs, result.Misses, s)

	result.ManifestPath, err = manifest.Write(cfg.OutputDir, result.Manifest, s)
	if err != nil {
		logger.Warn("failed to write manifest", "error", err)
	}

	if err := database.FinishRun(runID, db.RunComplete, result.Requests, len(result.Misses)); err != nil {
		logger.Warn("failed to finish run", "run_id", runID, "error", err)
	}
	return result, nil
}
