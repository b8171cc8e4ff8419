package analyze

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pageview-charts/internal/common"
	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/chart"
	"github.com/dtnitsch/pageview-charts/pkg/report"
)

// Flags are the analyze command's flags.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "desktop", Usage: "desktop corpus JSON (default: derived from output-dir, prefix and dates)"},
		&cli.StringFlag{Name: "mobile", Usage: "mobile corpus JSON (default: derived from output-dir, prefix and dates)"},
		&cli.StringFlag{Name: "output-dir", Usage: "directory the collector wrote to"},
		&cli.StringFlag{Name: "prefix", Usage: "corpus file name prefix"},
		&cli.StringFlag{Name: "start", Usage: "first month, YYYYMMDDHH"},
		&cli.StringFlag{Name: "end", Usage: "last month, YYYYMMDDHH"},
		&cli.StringFlag{Name: "charts-dir", Usage: "directory for chart images and selections.yaml"},
		&cli.IntFlag{Name: "top-n", Usage: "articles per access type on the peak and fewest-months charts"},
		&cli.StringFlag{Name: "format", Usage: "image format: png, svg or pdf"},
	}
}

// ApplyFlags copies explicitly set flags over the loaded config.
func ApplyFlags(c *cli.Context, cfg *models.Config) {
	common.SetString(c, "desktop", &cfg.Charts.DesktopData)
	common.SetString(c, "mobile", &cfg.Charts.MobileData)
	common.SetString(c, "output-dir", &cfg.OutputDir)
	common.SetString(c, "prefix", &cfg.FilePrefix)
	common.SetString(c, "start", &cfg.Start)
	common.SetString(c, "end", &cfg.End)
	common.SetString(c, "charts-dir", &cfg.Charts.OutputDir)
	if c.IsSet("top-n") {
		cfg.Charts.TopN = c.Int("top-n")
	}
	if c.IsSet("format") {
		ext := "." + strings.TrimPrefix(c.String("format"), ".")
		for _, f := range []*string{&cfg.Charts.AverageFile, &cfg.Charts.PeakFile, &cfg.Charts.FewestFile} {
			*f = strings.TrimSuffix(*f, filepath.Ext(*f)) + ext
		}
	}
}

func AnalyzeAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit(err.Error(), 2)
	}
	ApplyFlags(c, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	result, err := Run(cfg, chart.NewPlotRenderer(), logger)
	if err != nil && !errors.Is(err, ErrChartSkipped) {
		logger.Error("analysis failed", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	printSelections(c.App.Writer, result.Selections)
	fmt.Fprintf(c.App.Writer, "\nSelections saved to: %s\n", result.SelectionsPath)

	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// printSelections renders one table per chart.
func printSelections(w io.Writer, selections []report.Selection) {
	for _, sel := range selections {
		fmt.Fprintf(w, "\n%s (%s) -> %s\n", sel.Chart, sel.Metric, sel.File)

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Label", "Access", "Role", "Value"})
		for i, p := range sel.Picks {
			t.AppendRow(table.Row{i + 1, p.Label, p.Access, p.Role, formatValue(p.Value)})
		}
		if len(sel.Picks) == 0 {
			t.AppendRow(table.Row{"", "(no eligible articles)", "", "", ""})
		}
		t.Render()
	}
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
