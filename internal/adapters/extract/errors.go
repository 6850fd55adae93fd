package extract

import "errors"

// Sentinel errors for document extraction.
var (
	// ErrUnsupportedType indicates the file extension is not in the
	// allowed set.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrExtraction indicates the document could not be turned into
	// usable text.
	ErrExtraction = errors.New("text extraction failed")
)
