package render

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 50.0
	htmlWrapCols = 90

	titleSize = 14.0
	titleStep = 22.0
	rowSize   = 11.0
	rowStep   = 14.0
	textSize  = 12.0
	textStep  = 16.0
)

type pdfDoc struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	y      float64
	bottom float64
	width  float64
}

// Creation and modification dates are pinned so the same input gives the same bytes.
func newPDFDoc(createdAt time.Time) *pdfDoc {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetCreationDate(createdAt.UTC())
	pdf.SetModificationDate(createdAt.UTC())
	pdf.SetCatalogSort(true)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	return &pdfDoc{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		y:      pdfMargin,
		bottom: pageH - pdfMargin,
		width:  pageW - 2*pdfMargin,
	}
}

func (d *pdfDoc) line(text string, style string, size, step float64) {
	if d.y+step > d.bottom {
		d.pdf.AddPage()
		d.y = pdfMargin
	}
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.SetXY(pdfMargin, d.y)
	d.pdf.CellFormat(d.width, step, d.tr(text), "", 0, "L", false, 0, "")
	d.y += step
}

// wrapped splits text to the printable width at the given font size.
func (d *pdfDoc) wrapped(text string, style string, size, step float64) {
	d.pdf.SetFont("Helvetica", style, size)
	for _, part := range d.pdf.SplitText(d.tr(text), d.width) {
		if d.y+step > d.bottom {
			d.pdf.AddPage()
			d.y = pdfMargin
		}
		d.pdf.SetFont("Helvetica", style, size)
		d.pdf.SetXY(pdfMargin, d.y)
		d.pdf.CellFormat(d.width, step, part, "", 0, "L", false, 0, "")
		d.y += step
	}
}

func (d *pdfDoc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPDFFromRows renders the title once, then one numbered line per row.
func BuildPDFFromRows(title string, rows []Row, createdAt time.Time) ([]byte, error) {
	d := newPDFDoc(createdAt)
	d.pdf.SetTitle(title, true)
	d.line(title, "B", titleSize, titleStep)

	if len(rows) == 0 {
		d.line(EmptyNotice, "", rowSize, rowStep)
	}
	for i, row := range rows {
		d.wrapped(RowLine(i+1, row), "", rowSize, rowStep)
	}
	return d.bytes()
}

// BuildPDFFromHTML lays out the visible text of html, wrapped to a fixed column width.
func BuildPDFFromHTML(title, html string, createdAt time.Time) ([]byte, error) {
	text, err := StripHTML(html)
	if err != nil {
		return nil, err
	}

	d := newPDFDoc(createdAt)
	d.pdf.SetTitle(title, true)
	d.line(title, "B", titleSize, titleStep)
	for _, l := range WrapText(text, htmlWrapCols) {
		d.line(l, "", textSize, textStep)
	}
	return d.bytes()
}
