// Package builder constructs PDF and DOCX artifacts from raw text entirely
// in memory.
package builder

import (
	"bytes"
	"strings"

	"github.com/go-pdf/fpdf"

	"docmorph/internal/domain"
)

// Page geometry: A4 in points with a fixed margin and font size. Same input
// text always yields the same page/line breakdown.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	margin     = 50.0
	fontSize   = 12.0
	lineHeight = fontSize * 1.2
	// Paragraphs get extra trailing vertical space.
	paragraphGap = lineHeight * 0.5
)

// TextToPDF lays text out onto fixed-size pages with greedy word-wrap.
// Words are appended to the current line while the measured width stays under
// the usable width; overflow starts a new line, and a line past the bottom
// margin starts a new page.
func TextToPDF(text string) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", fontSize)

	maxWidth := pageWidth - 2*margin
	// Baseline of the first line sits one line height below the top margin.
	y := margin + lineHeight

	for _, paragraph := range strings.Split(text, "\n") {
		lines := wrapLine(pdf.GetStringWidth, paragraph, maxWidth)
		for _, line := range lines {
			if y > pageHeight-margin {
				pdf.AddPage()
				y = margin + lineHeight
			}
			pdf.Text(margin, y, line)
			y += lineHeight
		}
		y += paragraphGap
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &domain.DocumentBuildError{Format: "pdf", Cause: err}
	}
	return buf.Bytes(), nil
}

// wrapLine splits a single paragraph into lines whose measured width stays
// under maxWidth. A word longer than maxWidth occupies a line by itself.
// An empty paragraph yields one empty line so blank lines keep their height.
func wrapLine(measure func(string) float64, paragraph string, maxWidth float64) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(candidate) > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
