package extract

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/pagedigest/webpage-digest/internal/config"
	"github.com/pagedigest/webpage-digest/pkg/models"
)

// ErrTitleNotFound is returned when a page yields no usable title. It is
// the only condition that drops a URL outright; everything else degrades
// to an absent field.
var ErrTitleNotFound = errors.New("page title not found")

// Page is the browser capability surface the extractors depend on. The
// live implementation is browser.Session; tests substitute fakes.
type Page interface {
	Navigate(url string, settle time.Duration) error
	WaitText(sel string, timeout time.Duration) (string, error)
	Text(sel string) (string, error)
	Attr(sel, name string) (string, bool, error)
	Source() (string, error)
	Images() ([]models.ImageRef, error)
}

// Result is what a strategy recovers from a loaded page. Title is always
// non-empty on success; ThumbnailURL and Price may be empty.
type Result struct {
	Title        string
	ThumbnailURL string
	Price        string
}

// Strategy extracts metadata from one page
type Strategy interface {
	Extract(url string) (Result, error)
}

// IsMarketplace reports whether the URL's host belongs to one of the
// recognized e-commerce domains.
func IsMarketplace(rawURL string, domains []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// For returns the strategy matching the URL's classification
func For(rawURL string, page Page, cfg *config.ExtractConfig) Strategy {
	if IsMarketplace(rawURL, cfg.MarketplaceDomains) {
		return NewMarketplace(page, cfg)
	}
	return NewGeneric(page, cfg)
}
