// Package collector builds per-article corpora for each access type.
package collector

import (
	"context"
	"io"
	"log/slog"

	"github.com/dtnitsch/pageview-charts/models"
	"github.com/dtnitsch/pageview-charts/pkg/combine"
	"github.com/dtnitsch/pageview-charts/pkg/pageviews"
	"github.com/dtnitsch/pageview-charts/pkg/stats"
)

// Source returns the monthly series for one title and API access variant.
type Source interface {
	Monthly(ctx context.Context, title string, variant string) (models.Series, error)
}

// Ledger records each request outcome. Implementations must tolerate being
// called once per variant request.
type Ledger interface {
	RecordAccess(title string, access models.AccessType, variant string, kind pageviews.Kind, err error, months int) error
}

// Miss is a title that ended up with an empty series because a request failed.
type Miss struct {
	Title   string
	Access  models.AccessType
	Variant string
	Kind    pageviews.Kind
	Err     error
}

type Options struct {
	// MobilePartial keeps whichever mobile variant succeeded when the other
	// fails. By default a title with any failed mobile variant gets an empty
	// series.
	MobilePartial bool
}

type Collector struct {
	source Source
	ledger Ledger
	logger *slog.Logger
	opts   Options
}

// New returns a Collector. ledger may be nil.
func New(source Source, ledger Ledger, logger *slog.Logger, opts Options) *Collector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collector{source: source, ledger: ledger, logger: logger, opts: opts}
}

// Collect fetches every title for one access type. Every title appears in the
// returned corpus; titles whose requests failed have an empty series and a
// matching Miss. A cancelled context aborts the pass and returns ctx.Err().
func (c *Collector) Collect(ctx context.Context, titles []string, access models.AccessType) (models.Corpus, []Miss, error) {
	corpus := make(models.Corpus, len(titles))
	var misses []Miss

	c.logger.Info("Starting collection", "access", access, "titles", len(titles))
	for i, title := range titles {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		var (
			series     models.Series
			titleMiss  []Miss
			fetchError error
		)
		switch access {
		case models.AccessDesktop:
			series, titleMiss, fetchError = c.single(ctx, title, access, models.VariantDesktop, nil)
		case models.AccessCumulative:
			series, titleMiss, fetchError = c.single(ctx, title, access, models.VariantAllAccess, combine.Cumulative)
		case models.AccessMobile:
			series, titleMiss, fetchError = c.mobile(ctx, title)
		default:
			return nil, nil, &UnknownAccessError{Access: access}
		}
		if fetchError != nil {
			return nil, nil, fetchError
		}

		if series == nil {
			series = models.Series{}
		}
		corpus[title] = series
		misses = append(misses, titleMiss...)
		c.logger.Debug("Collected title", "access", access, "title", title, "summary", stats.Summarize(series))

		if (i+1)%100 == 0 {
			c.logger.Info("Collection progress", "access", access, "done", i+1, "total", len(titles))
		}
	}

	c.logger.Info("Finished collection", "access", access, "titles", len(corpus), "misses", len(misses))
	return corpus, misses, nil
}

// single handles the access types backed by one request per title.
func (c *Collector) single(ctx context.Context, title string, access models.AccessType, variant string, transform func(models.Series) models.Series) (models.Series, []Miss, error) {
	series, miss, err := c.fetch(ctx, title, access, variant)
	if err != nil {
		return nil, nil, err
	}
	if miss != nil {
		return nil, []Miss{*miss}, nil
	}
	if transform != nil {
		series = transform(series)
	}
	return series, nil, nil
}

// mobile sums mobile-web into mobile-app, month by month.
func (c *Collector) mobile(ctx context.Context, title string) (models.Series, []Miss, error) {
	web, webMiss, err := c.fetch(ctx, title, models.AccessMobile, models.VariantMobileWeb)
	if err != nil {
		return nil, nil, err
	}
	app, appMiss, err := c.fetch(ctx, title, models.AccessMobile, models.VariantMobileApp)
	if err != nil {
		return nil, nil, err
	}

	var misses []Miss
	for _, m := range []*Miss{webMiss, appMiss} {
		if m != nil {
			misses = append(misses, *m)
		}
	}

	switch {
	case len(misses) == 0:
		if combine.Misaligned(app, web) {
			c.logger.Debug("mobile variants differ in months", "title", title, "app_months", len(app), "web_months", len(web))
		}
		return combine.SumAligned(app, web), nil, nil
	case !c.opts.MobilePartial || len(misses) == 2:
		return nil, misses, nil
	case webMiss != nil:
		return app, misses, nil
	default:
		return web, misses, nil
	}
}

// fetch performs one request. A failed request is reported as a Miss; only
// context cancellation is returned as an error.
func (c *Collector) fetch(ctx context.Context, title string, access models.AccessType, variant string) (models.Series, *Miss, error) {
	series, err := c.source.Monthly(ctx, title, variant)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}

		kind := pageviews.KindOf(err)
		if kind == "" {
			kind = pageviews.KindNetworkError
		}
		c.logger.Warn("article not found by the API", "title", title, "access", access, "variant", variant, "kind", kind, "error", err)
		c.record(title, access, variant, kind, err, 0)
		return nil, &Miss{Title: title, Access: access, Variant: variant, Kind: kind, Err: err}, nil
	}

	c.record(title, access, variant, "", nil, len(series))
	return series, nil, nil
}

func (c *Collector) record(title string, access models.AccessType, variant string, kind pageviews.Kind, err error, months int) {
	if c.ledger == nil {
		return
	}
	if lerr := c.ledger.RecordAccess(title, access, variant, kind, err, months); lerr != nil {
		c.logger.Warn("failed to record access", "title", title, "variant", variant, "error", lerr)
	}
}

// UnknownAccessError is returned for an access type the collector cannot build.
type UnknownAccessError struct {
	Access models.AccessType
}

func (e *UnknownAccessError) Error() string {
	return "unknown access type " + string(e.Access)
}
