package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templatesFS embed.FS

// HTMLRenderer fills templates/receipt.html.
type HTMLRenderer struct {
	engine *html.Engine
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("money", func(d decimal.Decimal) string { return d.StringFixed(2) })
	engine.AddFunc("date", func(t time.Time) string { return t.Format("02 Jan 2006 15:04") })
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load receipt template: %w", err)
	}
	return &HTMLRenderer{engine: engine}, nil
}

func (r *HTMLRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, "receipt", doc); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", doc.ReceiptNumber, err)
	}
	return buf.Bytes(), nil
}

func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }
func (r *HTMLRenderer) Ext() string         { return ".html" }
