// Package pdf converts PDF slide decks into page images using go-fitz.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"

	"github.com/lecturalab/slide-worker/internal/domain"
)

// renderDPI is the effective rasterization resolution for slide pages.
const renderDPI = 300

// Extractor implements PDF to image conversion.
type Extractor struct{}

// NewExtractor creates a new PDF extractor instance.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract renders every page of the PDF at 300 DPI as PNG bytes, in
// page order with 1-based ordinals. An unparseable PDF or a deck with
// zero pages is a hard extraction failure.
func (e *Extractor) Extract(ctx context.Context, pdfBytes []byte) ([]domain.SlideImage, error) {
	if len(pdfBytes) == 0 {
		return nil, domain.ExtractionError("empty PDF input", nil)
	}

	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, domain.ExtractionError("failed to open PDF", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.ExtractionError("PDF has no pages", nil)
	}

	slides := make([]domain.SlideImage, 0, pageCount)

	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.ImageDPI(pageNum, renderDPI)
		if err != nil {
			return nil, domain.ExtractionError(fmt.Sprintf("failed to render page %d", pageNum+1), err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, domain.ExtractionError(fmt.Sprintf("failed to encode page %d as PNG", pageNum+1), err)
		}

		slides = append(slides, domain.SlideImage{
			SlideNumber: pageNum + 1,
			PNG:         buf.Bytes(),
		})
	}

	return slides, nil
}
