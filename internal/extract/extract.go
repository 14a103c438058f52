package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docqa/internal/domain"
)

// ErrInvalidPDF is returned for files that fail PDF validation.
var ErrInvalidPDF = errors.New("invalid pdf")

func init() {
	// pdfcpu would otherwise create a config directory under the user's home.
	api.DisableConfigDir()
}

// Supported reports whether files with extension ext can be extracted.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// FromFile returns the text of the document at path. PDF page text is
// joined with line breaks flattened to spaces; plain text is returned as is.
func FromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = fromPDF(path)
	case ".txt", ".md":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrNoExtractableText
	}
	return text, nil
}

func fromPDF(path string) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	pages, err := api.PageCountFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if pages == 0 {
		return "", domain.ErrNoExtractableText
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	defer f.Close()

	return joinPages(readerPages{r}), nil
}

// pageSource yields the plain text of numbered pages, starting at 1.
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type readerPages struct {
	r *pdf.Reader
}

func (p readerPages) NumPage() int { return p.r.NumPage() }

// PageText recovers from panics the pdf reader raises on malformed content streams.
func (p readerPages) PageText(i int) (text string, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("page %d: %v", i, v)
		}
	}()
	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// joinPages concatenates flattened page text. Unreadable pages are skipped,
// so a document with no readable page yields an empty string.
func joinPages(src pageSource) string {
	var sb strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		content, err := src.PageText(i)
		if err != nil {
			continue
		}
		content = flatten(content)
		if content == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(content)
	}
	return sb.String()
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
