package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/pagedigest/webpage-digest/internal/config"
	"github.com/pagedigest/webpage-digest/internal/proxy"
)

// Normalizer downloads a thumbnail URL and re-encodes it as a
// fixed-width JPEG. Every failure is returned to the caller; none of
// them is fatal to the record the thumbnail belongs to.
type Normalizer struct {
	Client *http.Client
	Config *config.ThumbnailConfig
}

// New creates a normalizer. Downloads honor the proxy configuration when
// one is enabled.
func New(cfg *config.ThumbnailConfig, proxies *config.ProxyConfig) *Normalizer {
	transport := &http.Transport{}
	if proxies != nil {
		if _, err := proxy.NewManager(proxies).ApplyToTransport(transport); err != nil {
			slog.Warn("ignoring broken proxy configuration, downloading thumbnails directly", "error", err)
			transport.Proxy = nil
		}
	}

	return &Normalizer{
		Client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Timeout),
		},
		Config: cfg,
	}
}

// Normalize downloads the image at url, verifies it decodes, resizes it
// to the target width with proportional height, and writes it as a JPEG
// to dest.
func (n *Normalizer) Normalize(ctx context.Context, url, dest string) error {
	data, err := n.download(ctx, url)
	if err != nil {
		return err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		// One repair pass: some CDNs prepend tracking bytes or an HTML
		// fragment before the actual image payload.
		img, err = repair(data)
		if err != nil {
			return fmt.Errorf("decoding thumbnail from %s: %w", url, err)
		}
	}

	img = imaging.Resize(img, n.Config.TargetWidth, 0, imaging.Lanczos)
	if err := imaging.Save(img, dest, imaging.JPEGQuality(n.Config.JPEGQuality)); err != nil {
		return fmt.Errorf("saving thumbnail to %s: %w", dest, err)
	}
	return nil
}

// download fetches the raw image bytes with a browser-like User-Agent.
// Image CDNs routinely reject requests that look like bots.
func (n *Normalizer) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", n.Config.UserAgent)

	resp, err := n.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("downloading %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}
	return data, nil
}

var errNoImagePayload = errors.New("no image payload found")

// rasterSignatures are the magic bytes of the formats the normalizer
// can re-encode.
var rasterSignatures = [][]byte{
	{0xFF, 0xD8, 0xFF},                             // JPEG
	{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, // PNG
	[]byte("GIF8"),                                 // GIF87a / GIF89a
}

// repair retries a failed decode after stripping garbage bytes that
// precede a recognizable image signature. It only acts when the
// signature sits past the start of the payload, so it never repeats the
// decode that already failed. The decoded image is cloned into NRGBA so
// the JPEG encoder gets a plain RGB layout.
func repair(data []byte) (image.Image, error) {
	trimmed, ok := trimToSignature(data)
	if !ok {
		return nil, errNoImagePayload
	}
	src, _, err := image.Decode(bytes.NewReader(trimmed))
	if err != nil {
		return nil, err
	}
	return imaging.Clone(src), nil
}

// trimToSignature returns data from the earliest embedded image
// signature onward. A signature at offset zero is rejected: the payload
// already starts with it and decoding has already been tried.
func trimToSignature(data []byte) ([]byte, bool) {
	best := -1
	for _, sig := range rasterSignatures {
		if idx := bytes.Index(data, sig); idx > 0 && (best == -1 || idx < best) {
			best = idx
		}
	}
	if best == -1 {
		return nil, false
	}
	return data[best:], true
}
