package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/pagedigest/webpage-digest/internal/config"
	"github.com/pagedigest/webpage-digest/internal/extract"
	"github.com/pagedigest/webpage-digest/pkg/models"
)

// timeFormat is the wall-clock granularity recorded on each record.
const timeFormat = "2006-01-02 15:04:05"

// Renderer consumes the full record set once, after every URL has been
// processed.
type Renderer interface {
	Save(ctx context.Context, records []models.PageRecord) error
}

// Pipeline walks the URL list strictly in order: each URL is fully
// fetched and extracted before the next one starts, and records keep the
// relative order of their source URLs. A URL whose extraction fails is
// logged and permanently dropped from this run; it leaves no gap or
// placeholder.
type Pipeline struct {
	Config   *config.AppConfig
	Page     extract.Page
	Renderer Renderer
	Log      *slog.Logger

	// now is a seam for tests; nil means time.Now.
	now func() time.Time
}

// New creates a new pipeline driver
func New(cfg *config.AppConfig, page extract.Page, renderer Renderer, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Config:   cfg,
		Page:     page,
		Renderer: renderer,
		Log:      log,
	}
}

// Run processes every URL and renders the report once at the end. The
// returned count is the number of records that made it into the report;
// zero records skip rendering entirely and are not an error.
func (p *Pipeline) Run(ctx context.Context, urls []string) (int, error) {
	records := p.Collect(urls)

	if len(records) == 0 {
		p.Log.Info("no valid data extracted, skipping report",
			"urls", len(urls),
		)
		return 0, nil
	}

	if err := p.Renderer.Save(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Collect extracts a record per URL, dropping failures
func (p *Pipeline) Collect(urls []string) []models.PageRecord {
	var records []models.PageRecord
	for _, url := range urls {
		start := time.Now()

		strategy := extract.For(url, p.Page, &p.Config.Extract)
		result, err := strategy.Extract(url)
		if err != nil {
			p.Log.Warn("dropping url", "url", url, "error", err)
			continue
		}
		if result.Title == "" {
			p.Log.Warn("dropping url", "url", url, "error", extract.ErrTitleNotFound)
			continue
		}

		records = append(records, models.PageRecord{
			URL:          url,
			Title:        result.Title,
			ThumbnailURL: result.ThumbnailURL,
			Price:        result.Price,
			AccessedAt:   p.clock().Format(timeFormat),
		})
		p.Log.Info("extracted page",
			"url", url,
			"title", result.Title,
			"duration", time.Since(start),
		)
	}
	return records
}

func (p *Pipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}
