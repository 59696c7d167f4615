package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturalab/slide-worker/internal/domain"
)

// minimalPDF builds a valid PDF with the given number of blank pages,
// tracking byte offsets so the xref table is correct.
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := ""
	for i := 0; i < pages; i++ {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", 3+i)
	}

	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, pages))
	for i := 0; i < pages; i++ {
		writeObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] >>\nendobj\n", 3+i))
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefStart)

	return buf.Bytes()
}

func TestExtract_TwoPages(t *testing.T) {
	e := NewExtractor()

	slides, err := e.Extract(context.Background(), minimalPDF(2))
	require.NoError(t, err)
	require.Len(t, slides, 2)

	for i, slide := range slides {
		assert.Equal(t, i+1, slide.SlideNumber)
		require.NotEmpty(t, slide.PNG)

		img, err := png.Decode(bytes.NewReader(slide.PNG))
		require.NoError(t, err)
		assert.Greater(t, img.Bounds().Dx(), 0)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	e := NewExtractor()

	_, err := e.Extract(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsErrorType(err, domain.ErrorTypeExtraction))
}

func TestExtract_InvalidPDF(t *testing.T) {
	e := NewExtractor()

	_, err := e.Extract(context.Background(), []byte("this is not a pdf"))
	require.Error(t, err)
	assert.True(t, domain.IsErrorType(err, domain.ErrorTypeExtraction))
}

func TestExtract_CancelledContext(t *testing.T) {
	e := NewExtractor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, minimalPDF(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
