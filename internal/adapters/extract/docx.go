package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// docxText pulls the visible text out of a Word document. A .docx file
// is a zip archive; the document body lives in word/document.xml with
// text runs in <w:t> elements.
func docxText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a valid docx archive: %v", ErrExtraction, err)
	}

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: archive has no word/document.xml", ErrExtraction)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open document body: %v", ErrExtraction, err)
	}
	defer rc.Close()

	text, err := documentText(rc)
	if err != nil {
		return "", fmt.Errorf("%w: decode document body: %v", ErrExtraction, err)
	}
	return text, nil
}

// documentText walks the document XML collecting run text. Paragraph
// ends and explicit breaks become newlines, tabs become spaces.
func documentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var sb bytes.Buffer
	inRun := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inRun = true
			case "tab":
				sb.WriteByte(' ')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inRun = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inRun {
				sb.Write(el)
			}
		}
	}
	return sb.String(), nil
}
