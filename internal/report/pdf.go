package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/pagedigest/webpage-digest/internal/config"
	"github.com/pagedigest/webpage-digest/pkg/models"
)

// Layout constants, in points on an A4 page. Each element reserves a
// fixed block height; long titles or URLs may overrun their block, which
// is accepted rather than reflowed.
const (
	pageMargin   = 72.0
	headingSize  = 12.0
	bodySize     = 10.0
	lineHeight   = 14.0
	blockStep    = 95.0
	imageStep    = 310.0
	footerOffset = 50.0
)

// Fallback notices when a thumbnail cannot be embedded.
const (
	noticeDownloadFailed = "Thumbnail could not be downloaded."
	noticeEmbedFailed    = "Thumbnail could not be loaded."
)

// ErrNoRecords is returned when Save is called with nothing to render.
var ErrNoRecords = errors.New("no records to render")

// ThumbnailFetcher normalizes a thumbnail URL into a JPEG file at dest.
type ThumbnailFetcher interface {
	Normalize(ctx context.Context, url, dest string) error
}

// Writer renders the collected records into one paginated PDF document,
// one page per record, in record order.
type Writer struct {
	IO     *config.IOConfig
	Report *config.ReportConfig
	Thumbs ThumbnailFetcher
}

// NewWriter creates a new report writer
func NewWriter(ioCfg *config.IOConfig, reportCfg *config.ReportConfig, thumbs ThumbnailFetcher) *Writer {
	return &Writer{
		IO:     ioCfg,
		Report: reportCfg,
		Thumbs: thumbs,
	}
}

// Save writes the report to the configured output file. Thumbnails are
// downloaded and normalized here, one record at a time, so that a
// record's temporary image file never outlives its page.
func (w *Writer) Save(ctx context.Context, records []models.PageRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, pageHeight := pdf.GetPageSize()
	textWidth := pageWidth - 2*pageMargin

	for i, record := range records {
		ordinal := i + 1
		pdf.AddPage()
		y := pageMargin

		// Numbered heading
		pdf.SetFont("Helvetica", "", headingSize)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(pageMargin, y)
		pdf.MultiCell(textWidth, lineHeight, tr(fmt.Sprintf("%d. %s", ordinal, record.Title)), "", "L", false)
		y += blockStep

		// URL as a hyperlink
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetTextColor(0, 0, 255)
		pdf.SetXY(pageMargin, y)
		pdf.CellFormat(textWidth, lineHeight, tr("URL: "+record.URL), "", 0, "L", false, 0, record.URL)
		y += blockStep

		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(pageMargin, y)
		pdf.CellFormat(textWidth, lineHeight, tr("Accessed Time: "+record.AccessedAt), "", 0, "L", false, 0, "")
		y += blockStep

		if record.Price != "" {
			pdf.SetXY(pageMargin, y)
			pdf.CellFormat(textWidth, lineHeight, tr("Price: "+record.Price), "", 0, "L", false, 0, "")
			y += blockStep
		}

		if record.ThumbnailURL != "" {
			y = w.placeThumbnail(ctx, pdf, tr, record.ThumbnailURL, y, textWidth)
		}

		pdf.SetFont("Helvetica", "", bodySize)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(pageMargin, pageHeight-footerOffset)
		pdf.CellFormat(textWidth, lineHeight, tr(fmt.Sprintf("Page %d - %s", ordinal, w.Report.FooterText)), "", 0, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(w.IO.OutputFile); err != nil {
		return fmt.Errorf("writing report to %s: %w", w.IO.OutputFile, err)
	}
	return nil
}

// placeThumbnail normalizes the thumbnail into a uniquely named temp
// file, embeds it, and removes the file again. Both failure modes fall
// back to an inline notice instead of failing the record.
func (w *Writer) placeThumbnail(ctx context.Context, pdf *fpdf.Fpdf, tr func(string) string, url string, y, width float64) float64 {
	dest := filepath.Join(os.TempDir(), "thumb-"+uuid.NewString()+".jpg")
	if err := w.Thumbs.Normalize(ctx, url, dest); err != nil {
		slog.Warn("thumbnail unavailable", "url", url, "error", err)
		return notice(pdf, tr, noticeDownloadFailed, y, width)
	}
	defer os.Remove(dest)

	pdf.ImageOptions(dest, pageMargin, y, width, 0, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	if pdf.Err() {
		slog.Warn("thumbnail embed failed", "url", url, "error", pdf.Error())
		pdf.ClearError()
		return notice(pdf, tr, noticeEmbedFailed, y, width)
	}
	return y + imageStep
}

func notice(pdf *fpdf.Fpdf, tr func(string) string, text string, y, width float64) float64 {
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.SetTextColor(255, 0, 0)
	pdf.SetXY(pageMargin, y)
	pdf.CellFormat(width, lineHeight, tr(text), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return y + blockStep
}
