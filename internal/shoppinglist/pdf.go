// Package shoppinglist renders the aggregated shopping list as a PDF.
//
// The layout mirrors a fixed A4 page: the title centered at the top, one
// left-aligned line per aggregated ingredient below it at a fixed step.
package shoppinglist

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/recipegram/apiserver/config"
	"github.com/recipegram/apiserver/types"
)

const (
	pageIndent    = 72.0
	titleFontSize = 15.0
	textFontSize  = 12.0
	lineGap       = 3.0

	title = "Список покупок:"
)

// Filename is the fixed attachment name of the export.
const Filename = "shopping_cart.pdf"

// Renderer draws shopping-list documents with a bundled TTF font.
type Renderer struct {
	fontFile string
	fontName string
}

func NewRenderer(cfg config.PDFConfig) *Renderer {
	return &Renderer{fontFile: cfg.FontFile, fontName: cfg.FontName}
}

// Render produces the PDF bytes. A missing font file is a fatal,
// non-user-recoverable error.
func (r *Renderer) Render(items []types.ShoppingListItem) ([]byte, error) {
	if _, err := os.Stat(r.fontFile); err != nil {
		return nil, fmt.Errorf("shopping list font %q: %w", r.fontFile, err)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddUTF8Font(r.fontName, "", r.fontFile)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	pdf.SetFont(r.fontName, "", titleFontSize)
	pdf.Text((pageWidth-pdf.GetStringWidth(title))/2, pageIndent, title)

	pdf.SetFont(r.fontName, "", textFontSize)
	for i, item := range items {
		y := pageIndent + (textFontSize+lineGap)*float64(i+1)
		pdf.Text(pageIndent, y, FormatLine(item))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render shopping list: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatLine renders one aggregated ingredient as "<name> <amount> <unit>".
func FormatLine(item types.ShoppingListItem) string {
	return fmt.Sprintf("%s %d %s", item.Name, item.Amount, item.Unit)
}
