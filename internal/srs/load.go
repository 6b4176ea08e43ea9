package srs

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// wordNS is the WordprocessingML main namespace.
const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

var (
	// ErrEmptyDocument is returned when a document contains no text.
	ErrEmptyDocument = errors.New("empty SRS content")

	// ErrInvalidDocx is returned when a .docx file cannot be read.
	ErrInvalidDocx = errors.New("invalid docx document")
)

// IsDocx reports whether name has a .docx extension.
func IsDocx(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".docx")
}

// Load reads the document at path. A .docx file yields its paragraph text
// joined by newlines; any other file is returned as is.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read SRS document: %w", err)
	}
	return Extract(filepath.Base(path), data)
}

// Extract returns the text of a document named name with contents data.
func Extract(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	if IsDocx(name) {
		text, err = docxText(data)
		if err != nil {
			return "", err
		}
	} else {
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocx, err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDocx, err)
		}
		defer func() { _ = rc.Close() }()
		return paragraphs(rc)
	}
	return "", fmt.Errorf("%w: word/document.xml not found", ErrInvalidDocx)
}

// paragraphs collects the text of every w:p element, one line per
// paragraph. w:tab becomes a tab and w:br a newline.
func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		lines  []string
		cur    strings.Builder
		inPara int
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidDocx, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				if inPara == 0 {
					cur.Reset()
				}
				inPara++
			case "t":
				inText = true
			case "tab":
				if inPara > 0 {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if inPara > 0 {
					cur.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				inPara--
				if inPara == 0 {
					lines = append(lines, cur.String())
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && inPara > 0 {
				cur.Write(t)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
