package stats

import (
	"testing"

	"github.com/dtnitsch/pageview-charts/models"
	"github.com/stretchr/testify/assert"
)

func views(vs ...int64) models.Series {
	s := make(models.Series, len(vs))
	for i, v := range vs {
		s[i] = models.Observation{Timestamp: string(rune('a' + i)), Views: v}
	}
	return s
}

func TestAverage(t *testing.T) {
	tests := []struct {
		name   string
		series models.Series
		want   float64
		wantOK bool
	}{
		{name: "empty", series: views(), wantOK: false},
		{name: "two months", series: views(10, 20), want: 15.0, wantOK: true},
		{name: "all zero is a real average", series: views(0, 0, 0), want: 0, wantOK: true},
		{name: "fractional", series: views(1, 2), want: 1.5, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Average(tt.series)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPeak(t *testing.T) {
	tests := []struct {
		name   string
		series models.Series
		want   int64
		wantOK bool
	}{
		{name: "empty", series: views(), wantOK: false},
		{name: "max in middle", series: views(3, 9, 1), want: 9, wantOK: true},
		{name: "single zero month", series: views(0), want: 0, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Peak(tt.series)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthCount(t *testing.T) {
	assert.Equal(t, 0, MonthCount(views()))
	assert.Equal(t, 5, MonthCount(views(1, 2, 3, 4, 5)))
}

func TestNoDataHelpers(t *testing.T) {
	assert.Equal(t, float64(NoData), AverageOrNoData(views()))
	assert.Equal(t, int64(NoData), PeakOrNoData(views()))
	assert.Equal(t, int64(0), PeakOrNoData(views(0)))

	assert.Equal(t, Summary{Average: NoData, Peak: NoData, Months: 0, HasData: false}, Summarize(views()))
	assert.Equal(t, Summary{Average: 15, Peak: 20, Months: 2, HasData: true}, Summarize(views(10, 20)))
}

func TestMetricAdapters(t *testing.T) {
	v, ok := PeakMetric(views(3, 9))
	assert.True(t, ok)
	assert.Equal(t, 9.0, v)

	v, ok = MonthCountMetric(views())
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = AverageMetric(views())
	assert.False(t, ok)
}
