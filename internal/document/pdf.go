// Package document turns uploaded health reports into plain text.
package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"thrive-chatbot/pkg"
)

// Extractor pulls the text out of a document.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// PDFExtractor reads every page of a PDF in order and concatenates the
// text.  Pages without a content stream are skipped.
type PDFExtractor struct{}

// Extract returns the text of data.  Malformed input, including input that
// makes the parser panic, is reported as pkg.ErrIngestion.
func (PDFExtractor) Extract(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: malformed pdf: %v", pkg.ErrIngestion, r)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", pkg.ErrIngestion)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", pkg.ErrIngestion, err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", pkg.ErrIngestion, i, err)
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}
