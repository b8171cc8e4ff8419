package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Observation is one month of page views for an article.
type Observation struct {
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Views     int64  `json:"views" yaml:"views"`
}

// Series is the chronologically ordered list of monthly observations for one
// article under one access type. An empty series means the article was looked
// up but no data came back; it is kept, never dropped.
type Series []Observation

// Corpus maps article titles to their series for a single access type.
type Corpus map[string]Series

var (
	ErrMissingTimestamp = errors.New("observation missing timestamp")
	ErrNegativeViews    = errors.New("observation has negative views")
	ErrOutOfOrder       = errors.New("observations out of chronological order")
)

// MarshalJSON writes an empty series as {} to stay compatible with files
// produced by earlier collection runs.
func (s Series) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal([]Observation(s))
}

// UnmarshalJSON accepts an array of observations, or {} / [] / null for an
// empty series.
func (s *Series) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = Series{}
		return nil
	}
	if trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return fmt.Errorf("decode series object: %w", err)
		}
		if len(obj) != 0 {
			return fmt.Errorf("series must be an array or {}, got object with %d keys", len(obj))
		}
		*s = Series{}
		return nil
	}

	var raw []struct {
		Timestamp *string `json:"timestamp"`
		Views     *int64  `json:"views"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("decode series: %w", err)
	}

	out := make(Series, 0, len(raw))
	for i, r := range raw {
		if r.Timestamp == nil || *r.Timestamp == "" {
			return fmt.Errorf("month %d: %w", i, ErrMissingTimestamp)
		}
		if r.Views == nil {
			return fmt.Errorf("month %d (%s): missing views", i, *r.Timestamp)
		}
		out = append(out, Observation{Timestamp: *r.Timestamp, Views: *r.Views})
	}
	*s = out
	return nil
}

// Validate checks that every observation is well formed and that timestamps
// are strictly increasing.
func (s Series) Validate() error {
	for i, obs := range s {
		if obs.Timestamp == "" {
			return fmt.Errorf("month %d: %w", i, ErrMissingTimestamp)
		}
		if obs.Views < 0 {
			return fmt.Errorf("month %d (%s): %w", i, obs.Timestamp, ErrNegativeViews)
		}
		if i > 0 && s[i-1].Timestamp >= obs.Timestamp {
			return fmt.Errorf("month %d (%s after %s): %w", i, obs.Timestamp, s[i-1].Timestamp, ErrOutOfOrder)
		}
	}
	return nil
}

// Clone returns a copy that can be mutated without touching s.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Titles returns the corpus titles in lexicographic order.
func (c Corpus) Titles() []string {
	titles := make([]string, 0, len(c))
	for t := range c {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Validate runs Series.Validate for every title.
func (c Corpus) Validate() error {
	for _, title := range c.Titles() {
		if err := c[title].Validate(); err != nil {
			return fmt.Errorf("article %q: %w", title, err)
		}
	}
	return nil
}

// EmptyTitles returns the titles whose series has no data, sorted.
func (c Corpus) EmptyTitles() []string {
	var empty []string
	for _, t := range c.Titles() {
		if len(c[t]) == 0 {
			empty = append(empty, t)
		}
	}
	return empty
}
