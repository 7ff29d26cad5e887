package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// RenderPDF converts the report Markdown into an A4 PDF.
func RenderPDF(markdown string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
	)
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	r := &pdfRenderer{
		pdf:    pdf,
		source: source,
		font:   "Arial",
		size:   9,
	}
	if err := ast.Walk(doc, r.walk); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF output: %w", err)
	}
	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	font      string
	size      float64
	bold      bool
	italic    bool
	inList    bool
	listLevel int
	inQuote   bool
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic || r.inQuote {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return r.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering {
			r.pdf.Ln(7)
		}
	case ast.KindText:
		if entering {
			r.pdf.Write(5, string(n.Text(r.source)))
		}
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case ast.KindBlockquote:
		r.inQuote = entering
		if entering {
			r.pdf.SetLeftMargin(18)
		} else {
			r.pdf.SetLeftMargin(10)
			r.pdf.Ln(2)
		}
		r.updateFont()
	case ast.KindList:
		if entering {
			r.inList = true
			r.listLevel++
		} else {
			r.listLevel--
			if r.listLevel == 0 {
				r.inList = false
				r.pdf.Ln(2)
			}
		}
	case ast.KindListItem:
		if entering {
			r.pdf.Ln(5)
			indent := float64(r.listLevel) * 5.0
			r.pdf.SetX(15 + indent)
			r.pdf.Write(5, "- ")
		}
	case ast.KindThematicBreak:
		if entering {
			r.pdf.Ln(2)
			r.pdf.Line(15, r.pdf.GetY(), 195, r.pdf.GetY())
			r.pdf.Ln(4)
		}
	case extast.KindTable:
		return r.handleTable(n.(*extast.Table), entering)
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleHeading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		r.pdf.Ln(6)
		size := 10.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		case 3:
			size = 11
		}
		r.pdf.SetFont(r.font, "B", size)
	} else {
		r.pdf.Ln(6)
		r.updateFont()
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleTable(n *extast.Table, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var rows [][]string
	var findRows func(node ast.Node)
	findRows = func(node ast.Node) {
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			if tr, ok := child.(*extast.TableRow); ok {
				rows = append(rows, r.extractRow(tr))
			} else if _, ok := child.(*extast.TableHeader); ok {
				findRows(child)
			}
		}
	}
	findRows(n)

	r.renderTable(rows)
	return ast.WalkSkipChildren, nil
}

func (r *pdfRenderer) extractRow(n *extast.TableRow) []string {
	var row []string
	for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			row = append(row, string(cell.Text(r.source)))
		}
	}
	return row
}

func (r *pdfRenderer) renderTable(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	r.pdf.Ln(2)

	const (
		pageWidth  = 180.0
		fontSize   = 8.0
		lineHeight = 5.0
	)
	numCols := len(rows[0])
	colWidths := r.columnWidths(rows, numCols, pageWidth, fontSize)

	for i, row := range rows {
		if i == 0 {
			r.pdf.SetFont(r.font, "B", fontSize)
			r.pdf.SetFillColor(230, 230, 230)
		} else {
			r.pdf.SetFont(r.font, "", fontSize)
			r.pdf.SetFillColor(255, 255, 255)
		}

		rowHeight := lineHeight + 2
		startY := r.pdf.GetY()
		startX := r.pdf.GetX()

		if startY+rowHeight > 282 {
			r.pdf.AddPage()
			startY = r.pdf.GetY()
		}

		x := startX
		for j, cell := range row {
			if j >= numCols {
				break
			}
			if i == 0 {
				r.pdf.Rect(x, startY, colWidths[j], rowHeight, "FD")
			} else {
				r.pdf.Rect(x, startY, colWidths[j], rowHeight, "D")
			}
			r.pdf.SetXY(x+1, startY+1)
			r.pdf.CellFormat(colWidths[j]-2, lineHeight, r.fitCell(cell, colWidths[j]-2), "", 0, "L", false, 0, "")
			x += colWidths[j]
		}

		r.pdf.SetXY(startX, startY+rowHeight)
	}

	r.pdf.Ln(3)
	r.updateFont()
}

// columnWidths measures every cell and scales the columns onto the page.
func (r *pdfRenderer) columnWidths(rows [][]string, numCols int, pageWidth, fontSize float64) []float64 {
	widths := make([]float64, numCols)

	r.pdf.SetFont(r.font, "B", fontSize)
	for i, row := range rows {
		if i == 1 {
			r.pdf.SetFont(r.font, "", fontSize)
		}
		for j, cell := range row {
			if j >= numCols {
				break
			}
			if w := r.pdf.GetStringWidth(cell) + 4; w > widths[j] {
				widths[j] = w
			}
		}
	}

	const minWidth = 12.0
	total := 0.0
	for i := range widths {
		if widths[i] < minWidth {
			widths[i] = minWidth
		}
		total += widths[i]
	}
	if total > pageWidth {
		scale := pageWidth / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}

// fitCell truncates cell text that cannot fit its column.
func (r *pdfRenderer) fitCell(cell string, width float64) string {
	if r.pdf.GetStringWidth(cell) <= width {
		return cell
	}
	for len(cell) > 3 && r.pdf.GetStringWidth(cell+"...") > width {
		cell = strings.TrimSpace(cell[:len(cell)-1])
	}
	return cell + "..."
}
