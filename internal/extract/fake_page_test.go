package extract

import (
	"errors"
	"time"

	"github.com/pagedigest/webpage-digest/pkg/models"
)

// fakePage is a scripted Page implementation. Selector lookups hit the
// texts/attrs maps; missing entries behave like absent elements.
type fakePage struct {
	source      string
	texts       map[string]string
	attrs       map[string]string
	images      []models.ImageRef
	navigateErr error
	sourceErr   error

	navigations int
	settles     []time.Duration
}

var errElementNotFound = errors.New("element not found")

func (p *fakePage) Navigate(url string, settle time.Duration) error {
	p.navigations++
	p.settles = append(p.settles, settle)
	return p.navigateErr
}

func (p *fakePage) WaitText(sel string, timeout time.Duration) (string, error) {
	return p.Text(sel)
}

func (p *fakePage) Text(sel string) (string, error) {
	if text, ok := p.texts[sel]; ok {
		return text, nil
	}
	return "", errElementNotFound
}

func (p *fakePage) Attr(sel, name string) (string, bool, error) {
	if value, ok := p.attrs[sel+"/"+name]; ok {
		return value, true, nil
	}
	return "", false, errElementNotFound
}

func (p *fakePage) Source() (string, error) {
	if p.sourceErr != nil {
		return "", p.sourceErr
	}
	return p.source, nil
}

func (p *fakePage) Images() ([]models.ImageRef, error) {
	return p.images, nil
}
