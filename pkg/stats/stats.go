// Package stats computes per-series statistics. An empty series has no
// average and no peak; callers get ok=false rather than a magic number.
package stats

import "github.com/dtnitsch/pageview-charts/models"

// NoData is the numeric stand-in for a missing statistic in printed output.
const NoData = -1

// Average returns the arithmetic mean of the monthly views.
func Average(s models.Series) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	var total float64
	for _, month := range s {
		total += float64(month.Views)
	}
	return total / float64(len(s)), true
}

// Peak returns the highest single-month view count. The accumulator starts at
// zero, so a series of zero-view months peaks at 0.
func Peak(s models.Series) (int64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	var highest int64
	for _, month := range s {
		if month.Views > highest {
			highest = month.Views
		}
	}
	return highest, true
}

// MonthCount returns how many months of data the series holds.
func MonthCount(s models.Series) int {
	return len(s)
}

// AverageOrNoData is Average with NoData substituted for a missing value.
func AverageOrNoData(s models.Series) float64 {
	if v, ok := Average(s); ok {
		return v
	}
	return NoData
}

// PeakOrNoData is Peak with NoData substituted for a missing value.
func PeakOrNoData(s models.Series) int64 {
	if v, ok := Peak(s); ok {
		return v
	}
	return NoData
}

// Summary bundles the three statistics for one series.
type Summary struct {
	Average float64 `json:"average" yaml:"average"`
	Peak    int64   `json:"peak" yaml:"peak"`
	Months  int     `json:"months" yaml:"months"`
	HasData bool    `json:"has_data" yaml:"has_data"`
}

// Summarize computes a Summary. Average and Peak are NoData when the series is empty.
func Summarize(s models.Series) Summary {
	return Summary{
		Average: AverageOrNoData(s),
		Peak:    PeakOrNoData(s),
		Months:  MonthCount(s),
		HasData: len(s) > 0,
	}
}

// Metric adapters so rank can treat every statistic as a float.

// AverageMetric adapts Average for ranking.
func AverageMetric(s models.Series) (float64, bool) {
	return Average(s)
}

// PeakMetric adapts Peak for ranking.
func PeakMetric(s models.Series) (float64, bool) {
	v, ok := Peak(s)
	return float64(v), ok
}

// MonthCountMetric adapts MonthCount for ranking. It is always present.
func MonthCountMetric(s models.Series) (float64, bool) {
	return float64(MonthCount(s)), true
}
