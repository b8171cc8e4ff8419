package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pageview-charts/internal/analyze"
	"github.com/dtnitsch/pageview-charts/internal/collect"
	"github.com/dtnitsch/pageview-charts/internal/db"
	"github.com/dtnitsch/pageview-charts/pkg/help"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pageview-charts",
		Usage: "Collect monthly Wikipedia page views per article and chart them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"PAGEVIEWS_CONFIG"}},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
			&cli.StringFlag{Name: "db", Usage: "run ledger SQLite file (default from config)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "collect",
				Usage:  "Fetch desktop, mobile and cumulative monthly series for every title",
				Flags:  collect.Flags(),
				Action: collect.CollectAction,
			},
			{
				Name:   "analyze",
				Usage:  "Rank collected articles and draw the comparison charts",
				Flags:  analyze.Flags(),
				Action: analyze.AnalyzeAction,
			},
			{
				Name:  "runs",
				Usage: "List recent collect runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum runs to show"},
				},
				Action: db.RunsAction,
			},
			{
				Name:      "run",
				Usage:     "Show outputs and failed requests for a run",
				ArgsUsage: "[id|key-prefix|latest]",
				Action:    db.RunAction,
			},
			{
				Name:  "quickstart",
				Usage: "Print a YAML quick reference",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprint(c.App.Writer, help.ColdstartYAML)
					return err
				},
			},
		},
	}
}
