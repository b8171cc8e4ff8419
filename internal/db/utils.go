package db

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/pageview-charts/models"
	dbpkg "github.com/dtnitsch/pageview-charts/pkg/db"
)

// openDatabase opens the ledger named by --db, the config file or the
// environment, in that order.
func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	path := c.String("db")
	if path == "" {
		cfg, err := models.LoadConfig(c.String("config"))
		if err != nil {
			return nil, err
		}
		path = cfg.DBPath
	}
	database, err := dbpkg.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// GetRunOrLatest resolves the run named by the first argument, or the most
// recent run when none is given.
func GetRunOrLatest(c *cli.Context, database *dbpkg.DB) (*dbpkg.Run, error) {
	run, err := database.FindRun(c.Args().First())
	if errors.Is(err, dbpkg.ErrRunNotFound) && c.NArg() == 0 {
		return nil, fmt.Errorf("no runs found. Run 'pageview-charts collect' first")
	}
	return run, err
}
