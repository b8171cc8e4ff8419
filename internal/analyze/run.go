package analyze

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/chart"
	"github.com/dtnitsch/pageview-charts/pkg/report"
	"github.com/dtnitsch/pageview-charts/pkg/storage"
)

// SelectionsFile is written next to the charts.
const SelectionsFile = "selections.yaml"

// ErrChartSkipped is returned alongside a partial result when a chart could
// not be built.
var ErrChartSkipped = errors.New("one or more charts were skipped")

// Result lists what an analyze run produced.
type Result struct {
	DesktopPath    string
	MobilePath     string
	Charts         []string
	Selections     []report.Selection
	SelectionsPath string
}

// DataPaths resolves the desktop and mobile corpus files: explicit chart
// inputs win, otherwise the collector's naming scheme is used.
func DataPaths(cfg *models.Config) (desktop, mobile string) {
	paths := storage.OutputPaths(cfg.OutputDir, cfg.FilePrefix, cfg.Start, cfg.End)
	desktop, mobile = cfg.Charts.DesktopData, cfg.Charts.MobileData
	if desktop == "" {
		desktop = paths[models.AccessDesktop]
	}
	if mobile == "" {
		mobile = paths[models.AccessMobile]
	}
	return desktop, mobile
}

// Run loads the desktop and mobile corpora, selects the articles for each
// chart and renders them. A chart that cannot be built is logged and
// skipped; the others are still drawn and ErrChartSkipped is returned with
// the result.
func Run(cfg *models.Config, renderer chart.Renderer, logger *slog.Logger) (*Result, error) {
	s := &storage.Storage{}
	result := &Result{}
	result.DesktopPath, result.MobilePath = DataPaths(cfg)

	desktop, err := s.LoadCorpus(result.DesktopPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load desktop data: %w", err)
	}
	mobile, err := s.LoadCorpus(result.MobilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load mobile data: %w", err)
	}
	logger.Info("Loaded corpora", "desktop_titles", len(desktop), "mobile_titles", len(mobile))

	type job struct {
		spec  chart.Spec
		sel   report.Selection
		file  string
		title string
	}
	var jobs []job
	skipped := false

	spec, sel, err := report.AverageChart(desktop, mobile)
	if err != nil {
		logger.Error("skipping average chart", "error", err)
		skipped = true
	} else {
		jobs = append(jobs, job{spec, sel, cfg.Charts.AverageFile, cfg.Charts.AverageTitle})
	}

	spec, sel = report.PeakChart(desktop, mobile, cfg.Charts.TopN)
	jobs = append(jobs, job{spec, sel, cfg.Charts.PeakFile, cfg.Charts.PeakTitle})

	spec, sel = report.FewestMonthsChart(desktop, mobile, cfg.Charts.TopN)
	jobs = append(jobs, job{spec, sel, cfg.Charts.FewestFile, cfg.Charts.FewestTitle})

	for _, j := range jobs {
		j.spec.Title = j.title
		j.spec.YLabel = cfg.Charts.YLabel
		path := filepath.Join(cfg.Charts.OutputDir, j.file)

		if err := renderer.Render(j.spec, path); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", j.sel.Chart, err)
		}
		logger.Info("Rendered chart", "chart", j.sel.Chart, "path", path, "spec", chart.Describe(j.spec))

		j.sel.File = path
		result.Charts = append(result.Charts, path)
		result.Selections = append(result.Selections, j.sel)
	}

	result.SelectionsPath = filepath.Join(cfg.Charts.OutputDir, SelectionsFile)
	if err := report.WriteSelections(result.SelectionsPath, result.Selections, s); err != nil {
		return nil, err
	}

	if skipped {
		return result, ErrChartSkipped
	}
	return result, nil
}
