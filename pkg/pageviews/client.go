// Package pageviews talks to the Wikimedia per-article pageviews REST API.
package pageviews

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/dtnitsch/pageview-charts/internal/common"
	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/fetcher"
	"github.com/dtnitsch/pageview-charts/pkg/ratelimit"
)

// Getter performs a GET and returns the 2xx body.
type Getter interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// Cache stores raw response bodies by URL.
type Cache interface {
	Get(url string) ([]byte, bool)
	Set(url string, data []byte) error
}

// Options fixes the parts of the request URL shared by every article.
type Options struct {
	Endpoint    string
	Project     string
	Agent       string
	Granularity string
	Start       string
	End         string
}

// OptionsFromConfig copies the request settings out of a loaded config.
func OptionsFromConfig(cfg *models.Config) Options {
	return Options{
		Endpoint:    cfg.API.Endpoint,
		Project:     cfg.API.Project,
		Agent:       cfg.API.Agent,
		Granularity: cfg.API.Granularity,
		Start:       cfg.Start,
		End:         cfg.End,
	}
}

var itemsPath = jp.MustParseString("$.items")

type Client struct {
	getter Getter
	cache  Cache
	pacer  ratelimit.Pacer
	opts   Options
	logger *slog.Logger

	requests int
}

// NewClient builds a client. A nil pacer never blocks, a nil cache disables
// caching and a nil logger discards.
func NewClient(getter Getter, pacer ratelimit.Pacer, opts Options, logger *slog.Logger) *Client {
	if pacer == nil {
		pacer = ratelimit.Unlimited{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !strings.HasSuffix(opts.Endpoint, "/") {
		opts.Endpoint += "/"
	}
	return &Client{getter: getter, pacer: pacer, opts: opts, logger: logger}
}

// WithCache enables the response cache.
func (c *Client) WithCache(cache Cache) *Client {
	c.cache = cache
	return c
}

// Requests reports how many network requests were sent.
func (c *Client) Requests() int {
	return c.requests
}

// ArticleURL builds the per-article request URL for one access variant.
func (c *Client) ArticleURL(title string, access string) string {
	return fmt.Sprintf("%sper-article/%s/%s/%s/%s/%s/%s/%s",
		c.opts.Endpoint,
		c.opts.Project,
		access,
		c.opts.Agent,
		common.ArticleSlug(title),
		c.opts.Granularity,
		c.opts.Start,
		c.opts.End,
	)
}

// Monthly fetches the series for one title and access variant. Failures are
// returned as *FetchError; a cancelled context is returned unwrapped.
func (c *Client) Monthly(ctx context.Context, title string, access string) (models.Series, error) {
	url := c.ArticleURL(title, access)

	if c.cache != nil {
		if body, ok := c.cache.Get(url); ok {
			series, err := parseItems(body)
			if err == nil {
				c.logger.Debug("cache hit", "title", title, "access", access)
				return series, nil
			}
			c.logger.Warn("discarding unreadable cache entry", "title", title, "access", access, "error", err)
		}
	}

	if err := c.pacer.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("pacer: %w", err)
	}

	c.requests++
	body, err := c.getter.GetBytes(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var statusErr *fetcher.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, newFetchError(KindNotFound, title, access, err)
		}
		return nil, newFetchError(KindNetworkError, title, access, err)
	}

	series, err := parseItems(body)
	if err != nil {
		if errors.Is(err, ErrNoItems) {
			return nil, newFetchError(KindNotFound, title, access, err)
		}
		return nil, newFetchError(KindParseError, title, access, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(url, body); err != nil {
			c.logger.Warn("failed to cache response", "title", title, "access", access, "error", err)
		}
	}
	return series, nil
}

// parseItems extracts the items array from a response body.
func parseItems(body []byte) (models.Series, error) {
	data, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	found := itemsPath.Get(data)
	if len(found) == 0 {
		return nil, ErrNoItems
	}
	items, ok := found[0].([]any)
	if !ok {
		return nil, fmt.Errorf("items is %T, not an array", found[0])
	}

	series := make(models.Series, 0, len(items))
	for i, item := range items {
		obs, err := asObservation(i, item)
		if err != nil {
			return nil, err
		}
		series = append(series, obs)
	}
	return series, nil
}
