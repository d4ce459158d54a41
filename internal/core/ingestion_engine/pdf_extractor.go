package ingestion_engine

import (
	"bytes"
	"fmt"

	"github.com/dslipak/pdf"
	"go.uber.org/zap"

	"github.com/danielokoye-py/Notestack/internal/core"
)

// PdfExtractor implements core.PageExtractor on top of dslipak/pdf.
type PdfExtractor struct {
	log *zap.Logger
}

var _ core.PageExtractor = (*PdfExtractor)(nil)

func NewPdfExtractor(log *zap.Logger) *PdfExtractor {
	return &PdfExtractor{log: log}
}

// ExtractPages returns one string per page in source order. A page whose body
// is null or fails to parse keeps its slot as an empty string so page numbers
// downstream stay 1-based and aligned. An unparseable byte stream returns an
// ExtractionError.
func (e *PdfExtractor) ExtractPages(data []byte) (pages []string, err error) {
	// The pdf package panics on some malformed files; turn that into an
	// ExtractionError for this document instead of taking the process down.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &core.ExtractionError{Err: fmt.Errorf("pdf parse panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &core.ExtractionError{Err: err}
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		content, perr := page.GetPlainText(nil)
		if perr != nil {
			e.log.Warn("page text extraction failed",
				zap.Int("page", i),
				zap.Error(perr))
			pages = append(pages, "")
			continue
		}
		pages = append(pages, content)
	}
	return pages, nil
}
