package pdfdoc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	pdf "github.com/ledongthuc/pdf"

	"github.com/artem13815/brandreview/pkg/nlp"
)

const (
	MimeType       = "application/pdf"
	MaxExcerptRune = 12000
)

var ErrNotPDF = errors.New("file is not a PDF document")

// Page is the whole document packaged for the model, which reads PDFs directly.
type Page struct {
	Filename   string `json:"filename"`
	Base64     string `json:"base64"`
	MimeType   string `json:"mimeType"`
	PageNumber int    `json:"pageNumber"`
	IsFullPDF  bool   `json:"isFullPDF"`
}

type Document struct {
	PageCount   int    `json:"pageCount"`
	TextExcerpt string `json:"textExcerpt"`
	Images      []Page `json:"images"`
}

// Inspect validates data as a PDF, counts pages and extracts a text excerpt.
// Text extraction failures are tolerated: scanned PDFs have no text layer.
func Inspect(filename string, data []byte) (Document, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return Document{}, ErrNotPDF
	}
	r, err := open(data)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		PageCount: r.NumPage(),
		Images: []Page{{
			Filename:   filename,
			Base64:     base64.StdEncoding.EncodeToString(data),
			MimeType:   MimeType,
			PageNumber: 1,
			IsFullPDF:  true,
		}},
	}
	if text, err := plainText(r); err == nil {
		doc.TextExcerpt = nlp.Truncate(text, MaxExcerptRune)
	}
	return doc, nil
}

func open(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("open pdf: %v", p)
		}
	}()
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return r, nil
}

func plainText(r *pdf.Reader) (text string, err error) {
	// ledongthuc/pdf panics on some malformed content streams
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("extract pdf text: %v", p)
		}
	}()
	rs, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err = io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return nlp.NormalizeWhitespace(buf.String()), nil
}
