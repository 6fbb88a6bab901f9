// Package extractor turns uploaded pdf, docx, pptx and txt files into plain text.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/Chanu-03/Study-Mate/internal/domain"
)

// DefaultMaxBytes bounds the size of a single uploaded file.
const DefaultMaxBytes = 50 << 20

var supported = []string{"pdf", "docx", "pptx", "txt"}

// SupportedTypes lists the accepted file extensions without the dot.
func SupportedTypes() []string {
	return append([]string(nil), supported...)
}

// Extractor implements domain.Extractor for the supported file types.
type Extractor struct {
	maxBytes int64
}

// New creates an extractor rejecting files larger than maxBytes.
func New(maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{maxBytes: maxBytes}
}

// TypeOf returns the lower-case extension of name without the dot.
func TypeOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

func (e *Extractor) Extract(ctx context.Context, file domain.File) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	kind := TypeOf(file.Name)
	if int64(len(file.Data)) > e.maxBytes {
		return "", kind, fmt.Errorf("%w: %d bytes, limit %d", domain.ErrFileTooLarge, len(file.Data), e.maxBytes)
	}
	var (
		text string
		err  error
	)
	switch kind {
	case "txt":
		text = plainText(file.Data)
	case "pdf":
		text, err = pdfText(file.Data)
	case "docx":
		text, err = docxText(file.Data)
	case "pptx":
		text, err = pptxText(file.Data)
	default:
		return "", kind, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, kind)
	}
	if err != nil {
		return "", kind, fmt.Errorf("reading %s: %w", kind, err)
	}
	return strings.TrimSpace(text), kind, nil
}

func plainText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

func pdfText(data []byte) (text string, err error) {
	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
