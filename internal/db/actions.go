package db

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/pageview-charts/pkg/db"
)

const timeLayout = "2006-01-02 15:04:05"

func RunsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	printRuns(c.App.Writer, runs)
	return nil
}

// RunAction shows details for one run
func RunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer database.Close()

	run, err := GetRunOrLatest(c, database)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	outputs, err := database.GetRunOutputs(run.RunID)
	if err != nil {
		return err
	}
	misses, err := database.GetRunMisses(run.RunID)
	if err != nil {
		return err
	}

	printRun(c.App.Writer, run, outputs, misses)
	return nil
}

func printRuns(w io.Writer, runs []dbpkg.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Key", "Started", "Status", "Range", "Titles", "Requests", "Misses"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.RunID,
			shortKey(r.RunKey),
			r.StartedAt.Format(timeLayout),
			r.Status,
			r.StartDate + "-" + r.EndDate,
			r.TitleCount,
			r.RequestCount,
			r.MissCount,
		})
	}
	t.Render()

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "Tip: Use 'pageview-charts run <id>' to see details\n")
}

func printRun(w io.Writer, run *dbpkg.Run, outputs []dbpkg.RunOutput, misses []dbpkg.AccessRecord) {
	finished := "(not finished)"
	if run.FinishedAt.Valid {
		finished = run.FinishedAt.Time.Format(timeLayout)
	}

	fmt.Fprintf(w, "Run %d (%s)\n", run.RunID, run.RunKey)
	fmt.Fprintf(w, "Status:    %s\n", run.Status)
	fmt.Fprintf(w, "Started:   %s\n", run.StartedAt.Format(timeLayout))
	fmt.Fprintf(w, "Finished:  %s\n", finished)
	fmt.Fprintf(w, "Range:     %s - %s\n", run.StartDate, run.EndDate)
	fmt.Fprintf(w, "Titles:    %d (%d requests, %d misses)\n", run.TitleCount, run.RequestCount, run.MissCount)

	if len(outputs) > 0 {
		fmt.Fprintf(w, "\nOutputs (%d):\n", len(outputs))
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Access", "Titles", "Empty", "Hash", "File"})
		for _, o := range outputs {
			t.AppendRow(table.Row{o.AccessType, o.TitleCount, o.EmptyCount, shortKey(o.ContentHash), o.FilePath})
		}
		t.Render()
	}

	if len(misses) > 0 {
		fmt.Fprintf(w, "\nMisses (%d):\n", len(misses))
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Title", "Access", "Variant", "Kind", "Error"})
		for _, m := range misses {
			t.AppendRow(table.Row{m.Title, m.AccessType, m.Variant, m.ErrorKind, m.ErrorMessage})
		}
		t.Render()
	}
}

func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}
