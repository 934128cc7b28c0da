// Package pdf renders quotes as printable PDF documents.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/offermaster-service/internal/domain"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

// Layout, in points on an A4 portrait page.
const (
	margin       = 36.0
	logoMaxW     = 120.0
	logoMaxH     = 60.0
	rowHeight    = 18.0
	summaryLineH = 16.0

	coreFont     = "Helvetica"
	embeddedFont = "QuoteFont"
	logoName     = "logo"
)

var (
	columnWeights = []float64{3, 2, 1, 2, 2}
	columnHeaders = []string{"Naziv", "Količina", "Mjerna jedinica", "Jedinična cijena", "Ukupno"}
	columnAlign   = []string{"L", "C", "C", "R", "R"}

	// The core fonts only carry cp1252 glyphs; these letters have none.
	asciiFold = strings.NewReplacer("č", "c", "ć", "c", "đ", "d", "Č", "C", "Ć", "C", "Đ", "D")
)

// Config configures the renderer.
type Config struct {
	// FontPath is a TTF file embedded as a UTF-8 font. Empty uses core Helvetica.
	FontPath string

	// Location is the time zone creation dates are printed in. Defaults to UTC.
	Location *time.Location

	Logger *slog.Logger
}

// Renderer implements ports.DocumentRenderer with gofpdf.
type Renderer struct {
	fontPath string
	location *time.Location
	compress bool
	logger   *slog.Logger
}

var _ ports.DocumentRenderer = (*Renderer)(nil)

// New creates a renderer. Returns an error if the configured font file is missing.
func New(cfg Config) (*Renderer, error) {
	if cfg.FontPath != "" {
		if _, err := os.Stat(cfg.FontPath); err != nil {
			return nil, fmt.Errorf("pdf font: %w", err)
		}
	}

	location := cfg.Location
	if location == nil {
		location = time.UTC
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Renderer{
		fontPath: cfg.FontPath,
		location: location,
		compress: true,
		logger:   logger.With(slog.String("component", "pdf.Renderer")),
	}, nil
}

// RenderQuote lays out the quote: logo, title, date, item table and totals.
// Items are printed in the order they appear on the quote.
func (r *Renderer) RenderQuote(ctx context.Context, quote *domain.Quote, logo *ports.Image) ([]byte, error) {
	if quote == nil {
		return nil, errors.New("render quote: quote is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render quote %d: %w", quote.ID, err)
	}

	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetCompression(r.compress)
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetTitle(fmt.Sprintf("Ponuda %d", quote.ID), true)

	w := &writer{doc: doc, family: coreFont}
	if r.fontPath != "" {
		doc.AddUTF8Font(embeddedFont, "", r.fontPath)
		doc.AddUTF8Font(embeddedFont, "B", r.fontPath)
		w.family = embeddedFont
		w.tr = func(s string) string { return s }
	} else {
		cp1252 := doc.UnicodeTranslatorFromDescriptor("cp1252")
		w.tr = func(s string) string { return cp1252(asciiFold.Replace(s)) }
	}

	doc.AddPage()

	if logo != nil && len(logo.Data) > 0 {
		if err := w.logo(logo); err != nil {
			return nil, fmt.Errorf("render quote %d: %w", quote.ID, err)
		}
	}

	w.header(quote, r.location)
	w.table(quote.Items)
	w.summary(quote)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render quote %d: %w", quote.ID, err)
	}

	r.logger.DebugContext(ctx, "quote rendered",
		slog.Uint64("quote_id", uint64(quote.ID)),
		slog.Int("items", len(quote.Items)),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

// writer carries the document and the active font through one render.
type writer struct {
	doc    *gofpdf.Fpdf
	family string
	tr     func(string) string
}

func (w *writer) logo(img *ports.Image) error {
	imageType, err := imageTypeFor(img.ContentType)
	if err != nil {
		return err
	}

	info := w.doc.RegisterImageOptionsReader(logoName, gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(img.Data))
	if err := w.doc.Error(); err != nil {
		return fmt.Errorf("logo: %w", err)
	}

	width, height := fit(info.Width(), info.Height(), logoMaxW, logoMaxH)
	top := w.doc.GetY()
	w.doc.ImageOptions(logoName, margin, top, width, height, false, gofpdf.ImageOptions{ImageType: imageType}, 0, "")
	w.doc.SetY(top + height + 10)

	return nil
}

func (w *writer) header(quote *domain.Quote, loc *time.Location) {
	w.doc.SetFont(w.family, "B", 16)
	w.doc.CellFormat(0, 22, w.tr("PONUDA ID: "+strconv.FormatUint(uint64(quote.ID), 10)), "", 1, "C", false, 0, "")

	w.doc.SetFont(w.family, "", 10)
	w.doc.CellFormat(0, 14, w.tr("Datum: "+quote.CreatedAt.In(loc).Format("02/01/2006, 15:04:05")), "", 1, "C", false, 0, "")
	w.doc.Ln(12)
}

func (w *writer) table(items []domain.QuoteItem) {
	widths := w.columnWidths()

	w.doc.SetFont(w.family, "B", 10)
	w.doc.SetFillColor(230, 230, 230)
	for i, title := range columnHeaders {
		w.doc.CellFormat(widths[i], rowHeight, w.tr(title), "1", 0, "C", true, 0, "")
	}
	w.doc.Ln(-1)

	w.doc.SetFont(w.family, "", 10)
	for i := range items {
		item := &items[i]
		cells := []string{
			articleName(item),
			strconv.Itoa(item.Quantity),
			unitLabel(item),
			money(unitPrice(item)),
			money(item.LineTotal()),
		}
		for c, text := range cells {
			w.doc.CellFormat(widths[c], rowHeight, w.clip(text, widths[c]-4), "1", 0, columnAlign[c], false, 0, "")
		}
		w.doc.Ln(-1)
	}
}

func (w *writer) summary(quote *domain.Quote) {
	w.doc.Ln(8)
	w.doc.SetFont(w.family, "", 10)

	if quote.HasDiscount() {
		w.doc.CellFormat(0, summaryLineH, w.tr("Bez rabata: "+money(quote.Subtotal())), "", 1, "R", false, 0, "")
		w.doc.CellFormat(0, summaryLineH, w.tr("Rabat: "+strconv.Itoa(quote.Discount)+"%"), "", 1, "R", false, 0, "")
	}

	w.doc.SetFont(w.family, "B", 12)
	w.doc.CellFormat(0, summaryLineH+2, w.tr("Ukupno: "+money(quote.Total())), "", 1, "R", false, 0, "")
}

func (w *writer) columnWidths() []float64 {
	pageW, _ := w.doc.GetPageSize()
	left, _, right, _ := w.doc.GetMargins()
	usable := pageW - left - right

	total := 0.0
	for _, weight := range columnWeights {
		total += weight
	}

	widths := make([]float64, len(columnWeights))
	for i, weight := range columnWeights {
		widths[i] = usable * weight / total
	}
	return widths
}

// clip translates text and shortens it with an ellipsis to fit maxW.
func (w *writer) clip(text string, maxW float64) string {
	out := w.tr(text)
	if w.doc.GetStringWidth(out) <= maxW {
		return out
	}

	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		out = w.tr(string(runes) + "...")
		if w.doc.GetStringWidth(out) <= maxW {
			return out
		}
	}
	return ""
}

func articleName(item *domain.QuoteItem) string {
	if item.Article == nil {
		return "Artikl #" + strconv.FormatUint(uint64(item.ArticleID), 10)
	}
	return item.Article.Name
}

func unitLabel(item *domain.QuoteItem) string {
	if item.Article == nil {
		return ""
	}
	return item.Article.MeasureUnit.Label()
}

func unitPrice(item *domain.QuoteItem) decimal.Decimal {
	if item.Article == nil {
		return decimal.Zero
	}
	return item.Article.Price
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}

// fit scales w x h down to fit inside maxW x maxH, keeping the aspect ratio.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}

	scale := maxW / w
	if hs := maxH / h; hs < scale {
		scale = hs
	}
	return w * scale, h * scale
}

func imageTypeFor(contentType string) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))

	switch mediaType {
	case "image/png":
		return "PNG", nil
	case "image/jpeg", "image/jpg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("unsupported logo type %q", contentType)
	}
}
