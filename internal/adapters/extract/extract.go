// Package extract turns uploaded documents into normalized plain text.
//
// Supported formats are plain text (.txt, .md), Word documents (.docx),
// and PDF (.pdf). Extracted text is normalized and must pass a minimum
// length and letter/digit density check before it is accepted.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/keunyop/rubricheck/internal/domain/textnorm"
	"github.com/keunyop/rubricheck/pkg/metrics"
)

// Sanity check thresholds for extracted text.
const (
	minTextLength   = 40
	minAlnumDensity = 0.25
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Text extracts normalized plain text from data, dispatching on the
// extension of filename.
func Text(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		raw string
		err error
	)
	switch ext {
	case ".txt", ".md":
		raw, err = plainText(data)
	case ".docx":
		raw, err = docxText(data)
	case ".pdf":
		raw, err = pdfText(data)
	default:
		metrics.RecordExtractionFailure("unsupported")
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	format := strings.TrimPrefix(ext, ".")
	if err != nil {
		metrics.RecordExtractionFailure(format)
		return "", err
	}

	text := textnorm.Normalize(raw)
	if err := checkUsable(text); err != nil {
		metrics.RecordExtractionFailure(format)
		return "", err
	}

	metrics.RecordExtraction(format)
	return text, nil
}

// plainText decodes a UTF-8 text file, tolerating a leading BOM.
func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: file is not valid UTF-8", ErrExtraction)
	}
	return string(data), nil
}

// checkUsable rejects text too short or too symbol-heavy to be a real
// document, which catches scanned PDFs and binary garbage early.
func checkUsable(text string) error {
	runes := utf8.RuneCountInString(text)
	if runes < minTextLength {
		return fmt.Errorf("%w: extracted text is too short (%d characters)", ErrExtraction, runes)
	}

	alnum := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if float64(alnum)/float64(runes) < minAlnumDensity {
		return fmt.Errorf("%w: extracted text has too few letters or digits", ErrExtraction)
	}
	return nil
}
