// Package report picks which articles appear on each comparison chart.
package report

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/chart"
	"github.com/dtnitsch/pageview-charts/pkg/rank"
	"github.com/dtnitsch/pageview-charts/pkg/stats"
	"github.com/dtnitsch/pageview-charts/pkg/storage"
)

// ErrNoEligibleSeries means no article in a corpus has a positive average.
var ErrNoEligibleSeries = errors.New("no article has a positive average")

// Chart names used in selection summaries.
const (
	ChartAverage = "average"
	ChartPeak    = "peak"
	ChartFewest  = "fewest_months"
)

// Pick is one article placed on a chart.
type Pick struct {
	Label  string            `yaml:"label"`
	Title  string            `yaml:"title"`
	Access models.AccessType `yaml:"access"`
	Role   string            `yaml:"role,omitempty"` // highest or lowest, average chart only
	Value  float64           `yaml:"value"`
}

// Selection records which articles a chart shows and why.
type Selection struct {
	Chart  string `yaml:"chart"`
	Metric string `yaml:"metric"`
	File   string `yaml:"file,omitempty"`
	Picks  []Pick `yaml:"picks"`
}

// Label tags a title with its access type, e.g. "Stegosaurus_Desktop".
func Label(title string, access models.AccessType) string {
	return title + "_" + access.Label()
}

// builder accumulates lines in insertion order. A label seen twice keeps its
// first position.
type builder struct {
	spec chart.Spec
	sel  Selection
	seen map[string]bool
}

func newBuilder(name, metric string) *builder {
	return &builder{
		spec: chart.Spec{XLabel: chart.DefaultXLabel},
		sel:  Selection{Chart: name, Metric: metric, Picks: []Pick{}},
		seen: make(map[string]bool),
	}
}

func (b *builder) add(corpus models.Corpus, access models.AccessType, e rank.Entry, role string) {
	label := Label(e.Title, access)
	if b.seen[label] {
		return
	}
	b.seen[label] = true
	b.spec.Lines = append(b.spec.Lines, chart.Line{Label: label, Series: corpus[e.Title]})
	b.sel.Picks = append(b.sel.Picks, Pick{Label: label, Title: e.Title, Access: access, Role: role, Value: e.Value})
}

// AverageChart selects the articles with the highest and lowest average views
// for desktop and mobile. Lines are ordered max desktop, max mobile, min
// desktop, min mobile. Articles whose average is not positive are ignored.
func AverageChart(desktop, mobile models.Corpus) (chart.Spec, Selection, error) {
	maxD, minD, ok := rank.Extremes(desktop, stats.AverageMetric)
	if !ok {
		return chart.Spec{}, Selection{}, fmt.Errorf("desktop: %w", ErrNoEligibleSeries)
	}
	maxM, minM, ok := rank.Extremes(mobile, stats.AverageMetric)
	if !ok {
		return chart.Spec{}, Selection{}, fmt.Errorf("mobile: %w", ErrNoEligibleSeries)
	}

	b := newBuilder(ChartAverage, "average_views")
	b.add(desktop, models.AccessDesktop, maxD, "highest")
	b.add(mobile, models.AccessMobile, maxM, "highest")
	b.add(desktop, models.AccessDesktop, minD, "lowest")
	b.add(mobile, models.AccessMobile, minM, "lowest")
	return b.spec, b.sel, nil
}

// PeakChart selects the n articles with the highest single-month views for
// each access type, desktop first.
func PeakChart(desktop, mobile models.Corpus, n int) (chart.Spec, Selection) {
	b := newBuilder(ChartPeak, "peak_views")
	for _, e := range rank.TopN(desktop, stats.PeakMetric, n) {
		b.add(desktop, models.AccessDesktop, e, "")
	}
	for _, e := range rank.TopN(mobile, stats.PeakMetric, n) {
		b.add(mobile, models.AccessMobile, e, "")
	}
	return b.spec, b.sel
}

// FewestMonthsChart selects the n articles with the fewest months of data for
// each access type, desktop first. Articles with no data qualify.
func FewestMonthsChart(desktop, mobile models.Corpus, n int) (chart.Spec, Selection) {
	b := newBuilder(ChartFewest, "month_count")
	for _, e := range rank.BottomN(desktop, n) {
		b.add(desktop, models.AccessDesktop, e, "")
	}
	for _, e := range rank.BottomN(mobile, n) {
		b.add(mobile, models.AccessMobile, e, "")
	}
	return b.spec, b.sel
}

// WriteSelections saves the selections as YAML.
func WriteSelections(path string, selections []Selection, s *storage.Storage) error {
	data, err := yaml.Marshal(map[string][]Selection{"selections": selections})
	if err != nil {
		return fmt.Errorf("error marshalling selections: %w", err)
	}
	if err := s.SaveFile(path, data); err != nil {
		return fmt.Errorf("error saving selections: %w", err)
	}
	return nil
}

// ReadSelections loads a file written by WriteSelections.
func ReadSelections(path string, s *storage.Storage) ([]Selection, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string][]Selection
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing selections: %w", err)
	}
	return doc["selections"], nil
}
