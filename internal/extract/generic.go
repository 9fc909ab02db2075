package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pagedigest/webpage-digest/internal/config"
)

// metaImageTags is the thumbnail lookup order: the common open-graph
// convention first, then the platform-specific one, then the generic
// image metadata tag.
var metaImageTags = []string{"og:image", "twitter:image", "image"}

// noTitlePlaceholder stands in when a page carries no <title> tag.
const noTitlePlaceholder = "No Title"

// Generic extracts metadata from arbitrary pages by scanning the static
// page source for preview metadata and falling back to the largest
// inline image of the rendered DOM. Client-rendered pages load
// non-deterministically, so each retry settles a second longer than the
// last before reading anything.
type Generic struct {
	Page   Page
	Config *config.ExtractConfig
	Retry  RetryPolicy
}

// NewGeneric creates the generic extraction strategy
func NewGeneric(page Page, cfg *config.ExtractConfig) *Generic {
	return &Generic{
		Page:   page,
		Config: cfg,
		Retry: RetryPolicy{
			MaxAttempts: cfg.MaxRetries,
			Backoff:     FixedBackoff(time.Duration(cfg.RetryDelay)),
		},
	}
}

// Extract runs up to MaxAttempts extraction attempts against the page
func (g *Generic) Extract(url string) (Result, error) {
	var lastErr error
	for attempt := 0; attempt < g.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			g.Retry.wait(attempt)
		}

		settle := time.Duration(g.Config.SettleDelay) + time.Duration(attempt)*time.Second
		result, err := g.attempt(url, settle)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return Result{}, fmt.Errorf("extraction failed after %d attempts: %w", g.Retry.MaxAttempts, lastErr)
}

func (g *Generic) attempt(url string, settle time.Duration) (Result, error) {
	if err := g.Page.Navigate(url, settle); err != nil {
		return Result{}, fmt.Errorf("loading %s: %w", url, err)
	}

	source, err := g.Page.Source()
	if err != nil {
		return Result{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return Result{}, fmt.Errorf("parsing page source: %w", err)
	}

	thumbnail := metaImage(doc)
	if thumbnail == "" {
		thumbnail = g.largestImage()
	}

	return Result{
		Title:        pageTitle(doc),
		ThumbnailURL: thumbnail,
	}, nil
}

func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return noTitlePlaceholder
	}
	return title
}

// metaImage scans the preview metadata tags in priority order. Sites set
// these via either the property or the name attribute, so both are
// matched.
func metaImage(doc *goquery.Document) string {
	for _, tag := range metaImageTags {
		sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, tag, tag)
		content, ok := doc.Find(sel).First().Attr("content")
		if ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
	}
	return ""
}

// largestImage picks the rendered <img> with the largest declared
// width*height product. Images without numeric dimensions count as area
// zero and are never chosen; when nothing reports a positive area the
// thumbnail stays absent.
func (g *Generic) largestImage() string {
	images, err := g.Page.Images()
	if err != nil {
		return ""
	}

	var best string
	maxArea := 0
	for _, img := range images {
		if img.Src == "" {
			continue
		}
		width, _ := strconv.Atoi(strings.TrimSpace(img.Width))
		height, _ := strconv.Atoi(strings.TrimSpace(img.Height))
		if area := width * height; area > maxArea {
			maxArea = area
			best = img.Src
		}
	}
	return best
}
