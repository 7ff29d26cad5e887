package extract

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"equity_research/pkg/models"
)

// Filing identifies one source document being parsed.
type Filing struct {
	Year   int    // fiscal year of the filing
	Period string // "FY" for a 10-K, "Q1".."Q4" for a 10-Q
	Source string // file name, kept for provenance
}

var yearPattern = regexp.MustCompile(`(20\d{2})`)

// Table headings that mark note exhibits rather than primary statements.
var skipTitleKeywords = []string{
	"exhibit", "note", "accounting pronouncements",
	"fair value measurement", "stock pu", "compensation",
}

type valueColumn struct {
	index  int
	year   int
	period string
}

// ParseFilingHTML walks every table in a statement exhibit, classifies each
// by its row labels, and flattens the recognized ones into long-form rows.
// Tables that stay unclassified are skipped rather than guessed at.
func ParseFilingHTML(r io.Reader, filing Filing) ([]models.StatementRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse filing html: %w", err)
	}

	var out []models.StatementRow
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		grid := tableGrid(table)
		if len(grid) < 3 {
			return
		}

		title := findTableTitle(table)
		if titleIsSkippable(title) {
			return
		}
		if title == "" {
			title = fmt.Sprintf("table_%d", i)
		}

		var labels []string
		for _, row := range grid {
			if len(row) > 0 {
				labels = append(labels, row[0])
			}
		}
		stmt := DetectStatementType(labels)
		if stmt == models.StatementUnknown {
			return
		}

		headerIdx, cols := detectValueColumns(grid, filing)
		for _, row := range grid[headerIdx+1:] {
			if len(row) == 0 {
				continue
			}
			label := strings.TrimSpace(row[0])
			if !isUsableLabel(label) || isSubtotalLabel(label) {
				continue
			}
			item := NormalizeLineItem(label)
			for _, col := range cols {
				if col.index >= len(row) {
					continue
				}
				v := CleanNumericValue(row[col.index])
				if models.IsMissing(v) {
					continue
				}
				out = append(out, models.StatementRow{
					Statement:  stmt,
					FiscalYear: col.year,
					Period:     col.period,
					SheetName:  title,
					LineItem:   item,
					Value:      v,
				})
			}
		}
	})

	return out, nil
}

// tableGrid flattens a table selection into trimmed cell text.
func tableGrid(table *goquery.Selection) [][]string {
	var grid [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(cell.Text()))
		})
		if len(row) > 0 {
			grid = append(grid, row)
		}
	})
	return grid
}

// findTableTitle looks for a heading in the element preceding the table, or
// a single-cell first row inside it.
func findTableTitle(table *goquery.Selection) string {
	if prev := table.Prev(); prev.Length() > 0 {
		text := strings.TrimSpace(prev.Text())
		lower := strings.ToLower(text)
		if strings.Contains(lower, "balance") ||
			strings.Contains(lower, "statement") ||
			strings.Contains(lower, "income") ||
			strings.Contains(lower, "cash flow") {
			return text
		}
	}

	firstRow := table.Find("tr").First()
	if cells := firstRow.Find("td, th"); cells.Length() == 1 {
		return strings.TrimSpace(cells.Text())
	}
	return ""
}

func titleIsSkippable(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range skipTitleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// detectValueColumns finds the header row (fiscal-year context or at least
// two year mentions) and maps each value column to its fiscal year. When no
// header can be found the first value column is attributed to the filing's
// own year so single-period exhibits still contribute.
func detectValueColumns(grid [][]string, filing Filing) (headerIdx int, cols []valueColumn) {
	for i, row := range grid {
		joined := strings.ToLower(strings.Join(row, " "))
		hasContext := strings.Contains(joined, "year ended") ||
			strings.Contains(joined, "fiscal") ||
			strings.Contains(joined, "march")
		if !hasContext && len(yearPattern.FindAllString(joined, -1)) < 2 {
			continue
		}

		for j := 1; j < len(row); j++ {
			m := yearPattern.FindString(row[j])
			if m == "" {
				continue
			}
			year, _ := strconv.Atoi(m)
			cols = append(cols, valueColumn{
				index:  j,
				year:   year,
				period: columnPeriod(row[j], filing),
			})
		}
		if len(cols) > 0 {
			return i, cols
		}
	}

	return 0, []valueColumn{{index: 1, year: filing.Year, period: filing.Period}}
}

// columnPeriod resolves a header cell to a fiscal quarter for 10-Q tables.
// The fiscal year ends in March, so June closes Q1 and December closes Q3.
func columnPeriod(header string, filing Filing) string {
	if filing.Period == "FY" || filing.Period == "" {
		return "FY"
	}
	lower := strings.ToLower(header)
	switch {
	case strings.Contains(lower, "june"):
		return "Q1"
	case strings.Contains(lower, "september"):
		return "Q2"
	case strings.Contains(lower, "december"):
		return "Q3"
	case strings.Contains(lower, "march"):
		return "Q4"
	}
	return filing.Period
}
