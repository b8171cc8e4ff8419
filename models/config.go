// Package models defines data structures for configuration and page-view series.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything a collect or analyze run needs. Values come from
// DefaultConfig, then the YAML file, then the environment, then CLI flags.
type Config struct {
	TitlesFile    string `yaml:"titles_file"`
	TitleColumn   string `yaml:"title_column"`
	Start         string `yaml:"start"` // YYYYMMDDHH
	End           string `yaml:"end"`   // YYYYMMDDHH
	OutputDir     string `yaml:"output_dir"`
	FilePrefix    string `yaml:"file_prefix"`
	MobilePartial bool   `yaml:"mobile_partial"`
	DBPath        string `yaml:"db_path"`

	API    APIConfig    `yaml:"api"`
	Cache  CacheConfig  `yaml:"cache"`
	Charts ChartsConfig `yaml:"charts"`
}

// APIConfig describes the per-article pageviews endpoint and how hard we may
// hit it.
type APIConfig struct {
	Endpoint          string        `yaml:"endpoint"`
	Project           string        `yaml:"project"`
	Agent             string        `yaml:"agent"`
	Granularity       string        `yaml:"granularity"`
	UserAgent         string        `yaml:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	AssumedLatency    time.Duration `yaml:"assumed_latency"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

// CacheConfig controls the on-disk API response cache. A zero TTL disables it.
type CacheConfig struct {
	Dir string        `yaml:"dir"`
	TTL time.Duration `yaml:"ttl"`
}

// ChartsConfig names the analyzer inputs and outputs.
type ChartsConfig struct {
	DesktopData string `yaml:"desktop_data"` // defaults to the collector's desktop output
	MobileData  string `yaml:"mobile_data"`  // defaults to the collector's mobile output
	OutputDir   string `yaml:"output_dir"`
	TopN        int    `yaml:"top_n"`
	YLabel      string `yaml:"y_label"`

	AverageFile  string `yaml:"average_file"`
	AverageTitle string `yaml:"average_title"`
	PeakFile     string `yaml:"peak_file"`
	PeakTitle    string `yaml:"peak_title"`
	FewestFile   string `yaml:"fewest_file"`
	FewestTitle  string `yaml:"fewest_title"`
}

const (
	DefaultEndpoint = "https://wikimedia.org/api/rest_v1/metrics/pageviews/"
	DateLayout      = "2006010215"
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		TitlesFile:  "articles.csv",
		TitleColumn: "name",
		Start:       "2015070100",
		End:         "2022100100",
		OutputDir:   ".",
		FilePrefix:  "articles",
		DBPath:      "pageview-charts.db",
		API: APIConfig{
			Endpoint:          DefaultEndpoint,
			Project:           "en.wikipedia.org",
			Agent:             "user",
			Granularity:       "monthly",
			RequestsPerSecond: 100,
			AssumedLatency:    2 * time.Millisecond,
			RequestTimeout:    30 * time.Second,
		},
		Cache: CacheConfig{
			Dir: ".pageview-cache",
			TTL: 0,
		},
		Charts: ChartsConfig{
			OutputDir:    ".",
			TopN:         10,
			YLabel:       "Webpage Views",
			AverageFile:  "highest_lowest_average_views_by_access_type.png",
			AverageTitle: "Highest and lowest average views for mobile and desktop",
			PeakFile:     "peak_viewership_pages_by_access_type.png",
			PeakTitle:    "Webpages with highest PEAK viewership across timespan",
			FewestFile:   "lowest_availability_pages_by_access_type.png",
			FewestTitle:  "Webpages with lowest data availability",
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults and applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv loads .env if present and overrides fields from PAGEVIEWS_* variables.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	c.API.UserAgent = getEnv("PAGEVIEWS_USER_AGENT", c.API.UserAgent)
	c.Start = getEnv("PAGEVIEWS_START", c.Start)
	c.End = getEnv("PAGEVIEWS_END", c.End)
	c.DBPath = getEnv("PAGEVIEWS_DB", c.DBPath)
	c.TitlesFile = getEnv("PAGEVIEWS_TITLES", c.TitlesFile)
	c.OutputDir = getEnv("PAGEVIEWS_OUTPUT_DIR", c.OutputDir)

	if rps := os.Getenv("PAGEVIEWS_RPS"); rps != "" {
		v, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return fmt.Errorf("parse PAGEVIEWS_RPS: %w", err)
		}
		c.API.RequestsPerSecond = v
	}
	return nil
}

// Validate checks the fields both commands depend on.
func (c *Config) Validate() error {
	start, err := time.Parse(DateLayout, c.Start)
	if err != nil {
		return fmt.Errorf("start %q is not YYYYMMDDHH: %w", c.Start, err)
	}
	end, err := time.Parse(DateLayout, c.End)
	if err != nil {
		return fmt.Errorf("end %q is not YYYYMMDDHH: %w", c.End, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end %s is before start %s", c.End, c.Start)
	}
	if c.Charts.TopN <= 0 {
		return fmt.Errorf("charts.top_n must be positive, got %d", c.Charts.TopN)
	}
	return nil
}

// ValidateForCollect adds the checks only the collector needs.
func (c *Config) ValidateForCollect() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.API.UserAgent == "" {
		return errors.New("api.user_agent is required: the pageviews API asks every client to identify itself (set PAGEVIEWS_USER_AGENT)")
	}
	if c.API.RequestsPerSecond <= 0 {
		return fmt.Errorf("api.requests_per_second must be positive, got %v", c.API.RequestsPerSecond)
	}
	if c.TitlesFile == "" {
		return errors.New("titles_file is required")
	}
	return nil
}

// ThrottleInterval is the minimum gap between two requests: one request slot
// at the configured rate minus the latency we assume the request itself costs.
func (a APIConfig) ThrottleInterval() time.Duration {
	if a.RequestsPerSecond <= 0 {
		return 0
	}
	interval := time.Duration(float64(time.Second)/a.RequestsPerSecond) - a.AssumedLatency
	if interval < 0 {
		return 0
	}
	return interval
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
