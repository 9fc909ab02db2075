package report

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/pagedigest/webpage-digest/internal/config"
	"github.com/pagedigest/webpage-digest/pkg/models"
)

// fakeThumbs writes a small solid JPEG for every URL, or fails every
// normalization when broken is set.
type fakeThumbs struct {
	broken bool
	calls  int
}

func (f *fakeThumbs) Normalize(_ context.Context, url, dest string) error {
	f.calls++
	if f.broken {
		return errors.New("payload is not an image")
	}
	img := image.NewRGBA(image.Rect(0, 0, 80, 40))
	for x := 0; x < 80; x++ {
		for y := 0; y < 40; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	return jpeg.Encode(file, img, nil)
}

func newTestWriter(t *testing.T, thumbs ThumbnailFetcher) (*Writer, string) {
	t.Helper()
	output := filepath.Join(t.TempDir(), "webpage_details.pdf")
	writer := NewWriter(
		&config.IOConfig{OutputFile: output},
		&config.ReportConfig{FooterText: config.DefaultFooterText},
		thumbs,
	)
	return writer, output
}

func readReport(t *testing.T, path string) (int, string) {
	t.Helper()
	file, reader, err := pdf.Open(path)
	if err != nil {
		t.Fatalf("opening rendered report: %v", err)
	}
	defer file.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		t.Fatalf("extracting report text: %v", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		t.Fatalf("reading report text: %v", err)
	}
	return reader.NumPage(), buf.String()
}

func TestSave_OnePagePerRecordInOrder(t *testing.T) {
	writer, output := newTestWriter(t, &fakeThumbs{})
	records := []models.PageRecord{
		{
			URL:          "https://www.amazon.com/dp/B0TEST",
			Title:        "Example Product",
			ThumbnailURL: "https://images.example.com/product.jpg",
			Price:        "$1,299",
			AccessedAt:   "2026-08-31 10:15:00",
		},
		{
			URL:        "https://example.com/article",
			Title:      "An Article",
			AccessedAt: "2026-08-31 10:15:05",
		},
	}

	if err := writer.Save(context.Background(), records); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	pages, text := readReport(t, output)
	if pages != 2 {
		t.Fatalf("expected 2 pages, got %d", pages)
	}
	if !strings.Contains(text, "1. Example Product") {
		t.Error("first page is missing its numbered heading")
	}
	if !strings.Contains(text, "2. An Article") {
		t.Error("second page is missing its numbered heading")
	}
	if !strings.Contains(text, "Price: $1,299") {
		t.Error("price line missing for the record that has one")
	}
	if !strings.Contains(text, "Accessed Time: 2026-08-31 10:15:00") {
		t.Error("accessed-time line missing")
	}
	if idx := strings.Index(text, "1. Example Product"); idx > strings.Index(text, "2. An Article") {
		t.Error("records rendered out of input order")
	}
}

func TestSave_NoPriceLineWithoutPrice(t *testing.T) {
	writer, output := newTestWriter(t, &fakeThumbs{})
	records := []models.PageRecord{
		{URL: "https://example.com", Title: "No Price Here", AccessedAt: "2026-08-31 10:00:00"},
	}

	if err := writer.Save(context.Background(), records); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	_, text := readReport(t, output)
	if strings.Contains(text, "Price:") {
		t.Error("a record without a price must not render a price line")
	}
}

func TestSave_FallbackNoticeWhenThumbnailFails(t *testing.T) {
	thumbs := &fakeThumbs{broken: true}
	writer, output := newTestWriter(t, thumbs)
	records := []models.PageRecord{
		{
			URL:          "https://example.com",
			Title:        "Broken Thumbnail",
			ThumbnailURL: "https://example.com/not-an-image",
			AccessedAt:   "2026-08-31 10:00:00",
		},
	}

	if err := writer.Save(context.Background(), records); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if thumbs.calls != 1 {
		t.Fatalf("expected exactly one normalization attempt, got %d", thumbs.calls)
	}

	pages, text := readReport(t, output)
	if pages != 1 {
		t.Fatalf("record must survive a failed thumbnail, got %d pages", pages)
	}
	if !strings.Contains(text, noticeDownloadFailed) {
		t.Errorf("expected fallback notice %q in report", noticeDownloadFailed)
	}
}

func TestSave_NoThumbnailURLSkipsNormalization(t *testing.T) {
	thumbs := &fakeThumbs{}
	writer, output := newTestWriter(t, thumbs)
	records := []models.PageRecord{
		{URL: "https://example.com", Title: "Text Only", AccessedAt: "2026-08-31 10:00:00"},
	}

	if err := writer.Save(context.Background(), records); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if thumbs.calls != 0 {
		t.Errorf("no thumbnail URL means no normalization, got %d calls", thumbs.calls)
	}

	_, text := readReport(t, output)
	if strings.Contains(text, "Thumbnail could not be") {
		t.Error("a record without a thumbnail URL must not render a fallback notice")
	}
}

func TestSave_EmptyRecordSet(t *testing.T) {
	writer, output := newTestWriter(t, &fakeThumbs{})

	if err := writer.Save(context.Background(), nil); !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output document may exist for an empty record set")
	}
}
