// Package extract turns uploaded resume files into plain text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/spigell/careermate/internal/ai"
)

var ErrUnsupported = errors.New("unsupported file type")

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

var (
	reTags   = regexp.MustCompile(`<[^>]+>`)
	reBlanks = regexp.MustCompile(`[ \t\r\f\v]+`)
	reLines  = regexp.MustCompile(`\n+`)
)

// Extractor dispatches on file extension. Images need a vision-capable
// reader; without one they are unsupported.
type Extractor struct {
	images   ai.ImageReader
	maxPages int
}

type Option func(*Extractor)

// WithMaxPages limits PDF extraction to the first n pages. Zero reads all.
func WithMaxPages(n int) Option {
	return func(e *Extractor) {
		e.maxPages = n
	}
}

func New(images ai.ImageReader, opts ...Option) *Extractor {
	e := &Extractor{images: images}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Supported reports whether filename has an extension the extractor knows.
func Supported(filename string) bool {
	switch ext(filename) {
	case ".txt", ".pdf", ".docx":
		return true
	}
	_, ok := imageTypes[ext(filename)]
	return ok
}

// IsImage reports whether filename is one of the image formats.
func IsImage(filename string) bool {
	_, ok := imageTypes[ext(filename)]
	return ok
}

// File reads path and extracts its text.
func (e *Extractor) File(ctx context.Context, path string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return e.Text(ctx, path, data)
}

// Text extracts text from data, using filename to pick the format.
func (e *Extractor) Text(ctx context.Context, filename string, data []byte) (string, error) {
	switch x := ext(filename); x {
	case ".txt":
		return Normalize(string(bytes.ToValidUTF8(data, nil))), nil
	case ".pdf":
		return PDFText(data, e.maxPages)
	case ".docx":
		return DocxText(data)
	default:
		mimeType, ok := imageTypes[x]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnsupported, x)
		}
		if e.images == nil {
			return "", fmt.Errorf("%w: %s (no vision model configured)", ErrUnsupported, x)
		}
		text, err := e.images.ReadImage(ctx, data, mimeType)
		if err != nil {
			return "", fmt.Errorf("read image: %w", err)
		}
		return Normalize(text), nil
	}
}

// PDFText returns the text of the first maxPages pages (all when maxPages <= 0).
func PDFText(data []byte, maxPages int) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	pages := reader.NumPage()
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	var builder strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return Normalize(builder.String()), nil
}

// DocxText returns the document body with markup removed.
func DocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	xml := doc.Editable().GetContent()
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	return Normalize(reTags.ReplaceAllString(xml, "")), nil
}

// Normalize collapses runs of blanks and blank lines and trims the result.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reBlanks.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " \n", "\n")
	s = strings.ReplaceAll(s, "\n ", "\n")
	s = reLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

func ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
