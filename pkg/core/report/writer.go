package report

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	markdownFileName = "equity_research_report.md"
	pdfFileName      = "equity_research_report.pdf"
)

// Write renders the Markdown report and its PDF into outputDir and returns
// the two file paths.
func Write(outputDir, markdown string) (mdPath, pdfPath string, err error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output dir: %w", err)
	}

	mdPath = filepath.Join(outputDir, markdownFileName)
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write markdown report: %w", err)
	}

	pdfBytes, err := RenderPDF(markdown)
	if err != nil {
		return "", "", err
	}
	pdfPath = filepath.Join(outputDir, pdfFileName)
	if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write PDF report: %w", err)
	}

	return mdPath, pdfPath, nil
}
