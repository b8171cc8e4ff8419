package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/collector"
	"github.com/dtnitsch/pageview-charts/pkg/storage"
)

const FileName = "collect-summary.json"

// Output is one corpus written by a collect run.
type Output struct {
	Access   models.AccessType
	FilePath string
	Corpus   models.Corpus
}

// Run carries the run-level facts that go into the manifest.
type Run struct {
	Key        string
	StartDate  string
	EndDate    string
	TitleCount int
	Requests   int
}

// Build assembles the manifest. File sizes are read through s when the
// output file exists.
func Build(run Run, outputs []Output, misses []collector.Miss, s *storage.Storage) CollectManifest {
	m := CollectManifest{
		GeneratedAt: time.Now().Format(time.RFC3339),
		RunKey:      run.Key,
		StartDate:   run.StartDate,
		EndDate:     run.EndDate,
		TitleCount:  run.TitleCount,
		Requests:    run.Requests,
		Accesses:    make([]AccessSummary, 0, len(outputs)),
		Misses:      make([]MissSummary, 0, len(misses)),
	}

	for _, out := range outputs {
		empty := out.Corpus.EmptyTitles()
		summary := AccessSummary{
			Access:      string(out.Access),
			FilePath:    out.FilePath,
			Titles:      len(out.Corpus),
			WithData:    len(out.Corpus) - len(empty),
			Empty:       len(empty),
			EmptyTitles: empty,
		}
		if s != nil && out.FilePath != "" {
			if stats, err := s.GetFileStats(out.FilePath); err == nil {
				summary.SizeBytes = stats.SizeBytes
			}
		}
		m.Accesses = append(m.Accesses, summary)
	}

	for _, miss := range misses {
		summary := MissSummary{
			Title:     miss.Title,
			Access:    string(miss.Access),
			Variant:   miss.Variant,
			ErrorType: string(miss.Kind),
		}
		if miss.Err != nil {
			summary.ErrorMessage = miss.Err.Error()
		}
		m.Misses = append(m.Misses, summary)
	}

	return m
}

// Write saves the manifest as dir/collect-summary.json and returns its path.
func Write(dir string, m CollectManifest, s *storage.Storage) (string, error) {
	manifestPath := filepath.Join(dir, FileName)
	manifestData, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}

	if err := s.SaveFile(manifestPath, manifestData); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}

	return manifestPath, nil
}
