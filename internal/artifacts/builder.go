// Package artifacts renders the three job outputs: the summary JSON,
// the annotated Word document and the Anki flashcard package.
package artifacts

import (
	"github.com/lecturalab/slide-worker/internal/domain"
	"github.com/lecturalab/slide-worker/internal/observability"
)

// Artifacts holds the rendered output files for one job.
type Artifacts struct {
	Summary    []byte // summary.json
	Document   []byte // lecture.docx
	Flashcards []byte // lecture.apkg
}

// Builder renders job artifacts from slide explanations.
type Builder struct {
	logger *observability.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(logger *observability.Logger) *Builder {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Builder{logger: logger}
}

// Build renders all three artifacts. Explanations and slides are
// aligned by position; both are expected in slide order.
func (b *Builder) Build(explanations []domain.SlideExplanation, slides []domain.SlideImage) (*Artifacts, error) {
	summary, err := buildSummary(explanations)
	if err != nil {
		return nil, domain.IOError("failed to build summary JSON", err)
	}

	document, err := buildDocument(explanations, slides)
	if err != nil {
		return nil, domain.IOError("failed to build DOCX", err)
	}

	flashcards, err := buildAnkiPackage(explanations)
	if err != nil {
		return nil, domain.IOError("failed to build Anki package", err)
	}

	b.logger.Info().
		Int("summary_bytes", len(summary)).
		Int("docx_bytes", len(document)).
		Int("apkg_bytes", len(flashcards)).
		Msg("Artifacts rendered")

	return &Artifacts{
		Summary:    summary,
		Document:   document,
		Flashcards: flashcards,
	}, nil
}
