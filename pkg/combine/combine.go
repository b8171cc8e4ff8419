// Package combine merges and transforms monthly series.
package combine

import "github.com/dtnitsch/pageview-charts/models"

// SumAligned adds other's views into a copy of base, month by month by index.
// The result has base's length and timestamps; months of other beyond base's
// length are ignored. Alignment is positional, timestamps are not compared.
func SumAligned(base, other models.Series) models.Series {
	out := base.Clone()
	for i := range out {
		if i >= len(other) {
			break
		}
		out[i].Views += other[i].Views
	}
	return out
}

// Cumulative replaces each month's views with the running total of views up
// to and including that month. The input is left untouched.
func Cumulative(s models.Series) models.Series {
	out := s.Clone()
	var running int64
	for i := range out {
		running += out[i].Views
		out[i].Views = running
	}
	return out
}

// Misaligned reports whether a and b disagree on length or on any timestamp
// at the same index. SumAligned does not require alignment; this is for
// diagnostics.
func Misaligned(a, b models.Series) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i].Timestamp != b[i].Timestamp {
			return true
		}
	}
	return false
}
