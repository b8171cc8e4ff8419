package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/pageview-charts/internal/common"
	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/manifest"
)

// Flags are the collect command's flags.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "titles", Usage: "CSV file with article titles"},
		&cli.StringFlag{Name: "column", Usage: "CSV column holding the titles"},
		&cli.StringFlag{Name: "start", Usage: "first month, YYYYMMDDHH"},
		&cli.StringFlag{Name: "end", Usage: "last month, YYYYMMDDHH"},
		&cli.StringFlag{Name: "output-dir", Usage: "directory for corpus files and collect-summary.json"},
		&cli.StringFlag{Name: "prefix", Usage: "corpus file name prefix"},
		&cli.StringFlag{Name: "user-agent", Usage: "contact identity sent with every request", EnvVars: []string{"PAGEVIEWS_USER_AGENT"}},
		&cli.Float64Flag{Name: "rps", Usage: "maximum requests per second"},
		&cli.DurationFlag{Name: "cache-ttl", Usage: "reuse API responses younger than this (0 disables the cache)"},
		&cli.StringSliceFlag{Name: "access", Usage: "access types to collect: mobile, desktop, cumulative (default all)"},
		&cli.BoolFlag{Name: "mobile-partial", Usage: "keep a mobile series when only one of mobile-web/mobile-app was found"},
		&cli.BoolFlag{Name: "strict", Usage: "exit 1 when any title came back empty"},
	}
}

// ApplyFlags copies explicitly set flags over the loaded config.
func ApplyFlags(c *cli.Context, cfg *models.Config) {
	common.SetString(c, "titles", &cfg.TitlesFile)
	common.SetString(c, "column", &cfg.TitleColumn)
	common.SetString(c, "start", &cfg.Start)
	common.SetString(c, "end", &cfg.End)
	common.SetString(c, "output-dir", &cfg.OutputDir)
	common.SetString(c, "prefix", &cfg.FilePrefix)
	common.SetString(c, "user-agent", &cfg.API.UserAgent)
	common.SetString(c, "db", &cfg.DBPath)
	if c.IsSet("rps") {
		cfg.API.RequestsPerSecond = c.Float64("rps")
	}
	if c.IsSet("cache-ttl") {
		cfg.Cache.TTL = c.Duration("cache-ttl")
	}
	if c.IsSet("mobile-partial") {
		cfg.MobilePartial = c.Bool("mobile-partial")
	}
}

func parseAccesses(values []string) ([]models.AccessType, error) {
	if len(values) == 0 {
		return models.AllAccessTypes(), nil
	}
	seen := make(map[models.AccessType]bool)
	var out []models.AccessType
	for _, v := range values {
		a, err := models.ParseAccessType(v)
		if err != nil {
			return nil, err
		}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out, nil
}

func CollectAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit(err.Error(), 2)
	}
	ApplyFlags(c, cfg)

	if err := cfg.ValidateForCollect(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	accesses, err := parseAccesses(c.StringSlice("access"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := Run(ctx, cfg, accesses, Deps{}, logger)
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			logger.Error("collection cancelled, nothing written", "error", err)
			return cli.Exit("collection cancelled, nothing written", 1)
		}
		logger.Error("collection failed", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	if err := printSummary(c.App.Writer, result); err != nil {
		return err
	}

	if c.Bool("strict") && len(result.Misses) > 0 {
		return cli.Exit(fmt.Sprintf("%d request(s) failed; see %s", len(result.Misses), result.ManifestPath), 1)
	}
	return nil
}

// runSummary is what collect prints to stdout.
type runSummary struct {
	Run      int64                    `yaml:"run"`
	RunKey   string                   `yaml:"run_key"`
	Titles   int                      `yaml:"titles"`
	Requests int                      `yaml:"requests"`
	Misses   int                      `yaml:"misses"`
	Files    []manifest.AccessSummary `yaml:"files"`
	Manifest string                   `yaml:"manifest,omitempty"`
}

func printSummary(w io.Writer, result *Result) error {
	files := append([]manifest.AccessSummary(nil), result.Manifest.Accesses...)
	sort.SliceStable(files, func(i, j int) bool { return files[i].Access < files[j].Access })
	for i := range files {
		files[i].EmptyTitles = nil
	}

	out, err := yaml.Marshal(runSummary{
		Run:      result.RunID,
		RunKey:   result.RunKey,
		Titles:   result.Titles,
		Requests: result.Requests,
		Misses:   len(result.Misses),
		Files:    files,
		Manifest: result.ManifestPath,
	})
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	_, err = w.Write(out)
	return err
}
