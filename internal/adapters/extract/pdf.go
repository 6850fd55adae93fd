package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dslipak/pdf"
)

// pdfText extracts the plain text of a PDF document. The pdf package
// panics on some malformed inputs, so the parse runs behind a recover.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: malformed pdf: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a valid pdf: %v", ErrExtraction, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", ErrExtraction, err)
	}

	var sb bytes.Buffer
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("%w: read pdf text: %v", ErrExtraction, err)
	}
	return sb.String(), nil
}
