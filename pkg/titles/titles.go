// Package titles loads the list of article titles to collect.
package titles

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtnitsch/pageview-charts/internal/common"
)

var ErrNoTitles = errors.New("no titles found")

// Load reads titles from column of the CSV file at path.
func Load(path string, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open titles file: %w", err)
	}
	defer f.Close()

	titles, err := Read(f, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return titles, nil
}

// Read parses a CSV with a header row and returns the named column.
// Blank cells are skipped and only the first occurrence of a title is kept.
func Read(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoTitles
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), column) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not in header %v", column, header)
	}

	seen := make(map[string]bool)
	var titles []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if idx >= len(record) {
			continue
		}

		title := common.NormalizeTitle(record[idx])
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
	}

	if len(titles) == 0 {
		return nil, ErrNoTitles
	}
	return titles, nil
}
