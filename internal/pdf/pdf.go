// Package pdf renders ordered text lines into a paginated PDF document.
package pdf

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

// Letter page in points, with a fixed vertical step per line. A new page
// starts when the offset is exhausted.
const (
	marginLeft = 30.0
	titleY     = 50.0
	firstLineY = 80.0
	lineStep   = 16.0
	bottomY    = 760.0
)

// Renderer produces PDF documents from line sequences.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render writes a title, a separator rule, and one line of text per entry,
// breaking to a fresh page whenever the vertical offset runs out. The
// returned bytes are a complete document, valid from the first byte.
func (r *Renderer) Render(title string, lines []string) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetLineWidth(0.3)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 14)
	doc.Text(marginLeft, titleY, title)
	pageWidth, _ := doc.GetPageSize()
	doc.Line(marginLeft, titleY+8, pageWidth-marginLeft, titleY+8)

	doc.SetFont("Helvetica", "", 12)
	y := firstLineY
	for _, line := range lines {
		if y > bottomY {
			doc.AddPage()
			doc.SetFont("Helvetica", "", 12)
			y = firstLineY
		}
		doc.Text(marginLeft, y, line)
		y += lineStep
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
