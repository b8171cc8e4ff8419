package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/pageview-charts/internal/common"
	"github.com/dtnitsch/pageview-charts/models"
)

type Storage struct{}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

// SaveFile writes content atomically: a temp file in the same directory is
// renamed over filePath. Parent directories are created as needed.
func (s *Storage) SaveFile(filePath string, content []byte) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// SaveCorpus writes corpus as 4-space indented JSON with titles in sorted
// order and returns the content hash of what was written.
func (s *Storage) SaveCorpus(filePath string, corpus models.Corpus) (string, error) {
	if corpus == nil {
		corpus = models.Corpus{}
	}
	data, err := json.MarshalIndent(corpus, "", "    ")
	if err != nil {
		return "", fmt.Errorf("error encoding corpus: %w", err)
	}
	data = append(data, '\n')

	if err := s.SaveFile(filePath, data); err != nil {
		return "", err
	}
	return common.ContentHash(data), nil
}

// LoadCorpus reads a corpus file and validates every series.
func (s *Storage) LoadCorpus(filePath string) (models.Corpus, error) {
	data, err := s.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var corpus models.Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", filePath, err)
	}
	if corpus == nil {
		corpus = models.Corpus{}
	}
	if err := corpus.Validate(); err != nil {
		return nil, fmt.Errorf("invalid corpus %s: %w", filePath, err)
	}
	return corpus, nil
}

// OutputPaths returns the file each access type is written to, e.g.
// dir/dino_monthly_desktop_201507-202210.json for prefix "dino".
func OutputPaths(dir string, prefix string, start string, end string) map[models.AccessType]string {
	span := monthStamp(start) + "-" + monthStamp(end)
	paths := make(map[models.AccessType]string, 3)
	for _, access := range models.AllAccessTypes() {
		name := fmt.Sprintf("%s_monthly_%s_%s.json", prefix, access, span)
		paths[access] = filepath.Join(dir, name)
	}
	return paths
}

// monthStamp trims a YYYYMMDDHH timestamp to YYYYMM.
func monthStamp(ts string) string {
	if len(ts) >= 6 {
		return ts[:6]
	}
	return ts
}
