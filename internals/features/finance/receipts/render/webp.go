package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	webpWidth   = 420
	webpLineGap = 18
	webpMargin  = 16
)

// WebPRenderer prints the receipt as a lossless image, handy for chat apps.
type WebPRenderer struct {
	Scale int // integer upscaling; 0 or 1 keeps the native 7x13 glyphs
}

func (r *WebPRenderer) lines(doc Document) []string {
	out := []string{
		"FEE PAYMENT RECEIPT",
		"",
		"Receipt : " + doc.ReceiptNumber,
		"Date    : " + doc.GeneratedAt.Format("02 Jan 2006 15:04"),
		"Student : " + doc.StudentName + " (" + doc.USN + ")",
		"Invoice : " + doc.InvoiceNumber + " " + doc.AcademicYear,
		"Ref     : " + doc.PaymentReference + " / " + doc.Mode,
		"",
	}
	for _, l := range doc.Lines {
		out = append(out, fmt.Sprintf("%-32s %12s", truncate(l.Name, 32), l.Amount.StringFixed(2)))
	}
	out = append(out,
		"",
		fmt.Sprintf("%-32s %12s", "TOTAL PAID ("+doc.Currency+")", doc.Amount.StringFixed(2)),
		fmt.Sprintf("%-32s %12s", "Invoice balance", doc.InvoiceBalance.StringFixed(2)),
	)
	return out
}

func (r *WebPRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	text := r.lines(doc)
	h := webpMargin*2 + len(text)*webpLineGap
	canvas := imaging.New(webpWidth, h, color.White)

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	for i, line := range text {
		d.Dot = fixed.P(webpMargin, webpMargin+(i+1)*webpLineGap-4)
		d.DrawString(line)
	}

	var img image.Image = canvas
	if r.Scale > 1 {
		img = imaging.Resize(canvas, webpWidth*r.Scale, 0, imaging.NearestNeighbor)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, fmt.Errorf("encode receipt %s: %w", doc.ReceiptNumber, err)
	}
	return buf.Bytes(), nil
}

func (r *WebPRenderer) ContentType() string { return "image/webp" }
func (r *WebPRenderer) Ext() string         { return ".webp" }

// truncate keeps the first n characters.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// New picks a renderer by name; unknown names fall back to HTML.
func New(format string) (Renderer, error) {
	if format == "webp" {
		return &WebPRenderer{Scale: 2}, nil
	}
	return NewHTMLRenderer()
}
