package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/pagedigest/webpage-digest/internal/config"
)

// Selectors for the structured product layout marketplace pages share.
const (
	productTitleSel  = "#productTitle"
	primaryImageSel  = "#landingImage"
	fallbackImageSel = "#main-image-container img"
	priceSymbolSel   = ".a-price-symbol"
	priceWholeSel    = ".a-price-whole"
)

// Marketplace extracts product metadata from a recognized e-commerce
// page. The product title is the only required element; image and price
// are read on a best-effort basis.
type Marketplace struct {
	Page   Page
	Config *config.ExtractConfig
}

// NewMarketplace creates the marketplace extraction strategy
func NewMarketplace(page Page, cfg *config.ExtractConfig) *Marketplace {
	return &Marketplace{
		Page:   page,
		Config: cfg,
	}
}

// Extract loads the page and reads title, image URL, and price. A page
// that never shows a product title fails the whole URL.
func (m *Marketplace) Extract(url string) (Result, error) {
	if err := m.Page.Navigate(url, time.Duration(m.Config.SettleDelay)); err != nil {
		return Result{}, fmt.Errorf("loading %s: %w", url, err)
	}

	title, err := m.Page.WaitText(productTitleSel, time.Duration(m.Config.ElementTimeout))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTitleNotFound, err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, ErrTitleNotFound
	}

	return Result{
		Title:        title,
		ThumbnailURL: m.productImage(),
		Price:        m.price(),
	}, nil
}

// productImage tries the primary landing image first and falls back to
// the first image inside the main image container.
func (m *Marketplace) productImage() string {
	for _, sel := range []string{primaryImageSel, fallbackImageSel} {
		src, ok, err := m.Page.Attr(sel, "src")
		if err == nil && ok && src != "" {
			return src
		}
	}
	return ""
}

// price joins the currency-symbol fragment with the whole-number fragment.
// The two live in separate DOM regions on product pages. A missing
// fragment leaves the price absent, never fails the record.
func (m *Marketplace) price() string {
	symbol, err := m.Page.Text(priceSymbolSel)
	if err != nil {
		return ""
	}
	whole, err := m.Page.Text(priceWholeSel)
	if err != nil {
		return ""
	}

	symbol = strings.TrimSpace(symbol)
	whole = strings.TrimSpace(whole)
	if symbol == "" || whole == "" {
		return ""
	}
	if symbol == "₹" {
		symbol = "INR "
	}
	return symbol + whole
}
