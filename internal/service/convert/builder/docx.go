package builder

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"

	"docmorph/internal/domain"
)

// TextToDOCX builds a minimal word-processor document: one paragraph per
// input line. An empty line is preserved as a paragraph containing a single
// space so consecutive blank lines never collapse.
func TextToDOCX(text string) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()

	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			line = " "
		}
		doc.AddParagraph().AddText(line)
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, &domain.DocumentBuildError{Format: "docx", Cause: err}
	}
	return buf.Bytes(), nil
}
