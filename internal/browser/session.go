package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/pagedigest/webpage-digest/internal/config"
	"github.com/pagedigest/webpage-digest/pkg/models"
)

// Session owns one headless browser instance for the lifetime of a run.
// Opening a browser is the expensive part of every visit, so the session
// is created once before the pipeline starts and every URL is navigated
// inside the same browser context. Close must be called on every exit
// path; the exec allocator kills the browser process when its context is
// cancelled.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewSession starts the headless browser. A browser that cannot start is
// the only error that aborts a whole run, so the start happens eagerly
// here instead of on first navigation.
func NewSession(cfg *config.BrowserConfig) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.UserAgent(cfg.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}, nil
}

// Close shuts down the browser and its allocator.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// Navigate loads a URL and then sleeps for the settle delay so that
// client-side rendering and lazy content can populate before anything is
// read from the DOM.
func (s *Session) Navigate(url string, settle time.Duration) error {
	if err := chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.Sleep(settle),
	); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// WaitText waits up to timeout for the selected element to be present in
// the DOM and returns its text. The bounded wait only abandons this one
// element; the session stays usable afterwards.
func (s *Session) WaitText(sel string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var text string
	if err := chromedp.Run(ctx,
		chromedp.WaitReady(sel, chromedp.ByQuery),
		chromedp.Text(sel, &text, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("waiting for %q: %w", sel, err)
	}
	return text, nil
}

// Text returns the text content of the first element matching sel, or an
// error when no such element exists.
func (s *Session) Text(sel string) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	var text string
	if err := chromedp.Run(ctx, chromedp.Text(sel, &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading text of %q: %w", sel, err)
	}
	return text, nil
}

// Attr returns the named attribute of the first element matching sel.
// The boolean reports whether the attribute exists on the element.
func (s *Session) Attr(sel, name string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	var value string
	var ok bool
	if err := chromedp.Run(ctx, chromedp.AttributeValue(sel, name, &value, &ok, chromedp.ByQuery)); err != nil {
		return "", false, fmt.Errorf("reading %s of %q: %w", name, sel, err)
	}
	return value, ok, nil
}

// Source returns the rendered HTML of the current page.
func (s *Session) Source() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("reading page source: %w", err)
	}
	return html, nil
}

// Images enumerates every <img> element of the current page with its
// declared src, width, and height attributes.
func (s *Session) Images() ([]models.ImageRef, error) {
	var nodes []*cdp.Node
	if err := chromedp.Run(s.ctx,
		chromedp.Nodes("img", &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return nil, fmt.Errorf("enumerating images: %w", err)
	}

	refs := make([]models.ImageRef, 0, len(nodes))
	for _, node := range nodes {
		refs = append(refs, models.ImageRef{
			Src:    node.AttributeValue("src"),
			Width:  node.AttributeValue("width"),
			Height: node.AttributeValue("height"),
		})
	}
	return refs, nil
}
