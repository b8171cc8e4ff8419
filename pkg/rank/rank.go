// Package rank selects articles from a corpus by a per-series statistic.
package rank

import (
	"sort"

	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/stats"
)

// DefaultN is how many articles TopN and BottomN return unless told otherwise.
const DefaultN = 10

// Metric computes a statistic for a series. ok=false means the series has no
// value for this statistic.
type Metric func(models.Series) (float64, bool)

// Entry is one ranked article.
type Entry struct {
	Title string  `json:"title" yaml:"title"`
	Value float64 `json:"value" yaml:"value"`
}

// eligible returns one entry per title whose metric is present and positive,
// in title order. A zero value is excluded along with missing ones.
func eligible(corpus models.Corpus, metric Metric) []Entry {
	var entries []Entry
	for _, title := range corpus.Titles() {
		v, ok := metric(corpus[title])
		if !ok || v <= 0 {
			continue
		}
		entries = append(entries, Entry{Title: title, Value: v})
	}
	return entries
}

// Extremes returns the articles with the highest and lowest metric value among
// those with a positive value. Ties go to the lexicographically smallest
// title. ok is false when no article qualifies.
func Extremes(corpus models.Corpus, metric Metric) (highest, lowest Entry, ok bool) {
	entries := eligible(corpus, metric)
	if len(entries) == 0 {
		return Entry{}, Entry{}, false
	}

	highest, lowest = entries[0], entries[0]
	for _, e := range entries[1:] {
		// entries are in title order, so strict comparison keeps the first title on ties
		if e.Value > highest.Value {
			highest = e
		}
		if e.Value < lowest.Value {
			lowest = e
		}
	}
	return highest, lowest, true
}

// TopN returns up to n articles with the highest positive metric values,
// sorted descending, ties by title.
func TopN(corpus models.Corpus, metric Metric, n int) []Entry {
	entries := eligible(corpus, metric)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})

	return limit(entries, n)
}

// BottomN returns up to n articles with the fewest months of data, ascending,
// ties by title. Articles with no data at all are included; they sort first.
func BottomN(corpus models.Corpus, n int) []Entry {
	entries := make([]Entry, 0, len(corpus))
	for _, title := range corpus.Titles() {
		entries = append(entries, Entry{Title: title, Value: float64(stats.MonthCount(corpus[title]))})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value < entries[j].Value
	})

	return limit(entries, n)
}

func limit(entries []Entry, n int) []Entry {
	if n < 0 {
		n = 0
	}
	if len(entries) < n {
		n = len(entries)
	}
	return entries[:n]
}
