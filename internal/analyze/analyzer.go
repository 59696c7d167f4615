// Package analyze turns slide images into structured explanations by
// invoking the vision model once per slide.
package analyze

import (
	"context"
	"fmt"

	"github.com/lecturalab/slide-worker/internal/domain"
	"github.com/lecturalab/slide-worker/internal/normalize"
	"github.com/lecturalab/slide-worker/internal/observability"
)

// Analyzer invokes the vision client per slide and normalizes the raw
// response into the canonical record.
type Analyzer struct {
	client domain.VisionClient
	logger *observability.Logger
}

// NewAnalyzer creates an Analyzer using the given vision client.
func NewAnalyzer(client domain.VisionClient, logger *observability.Logger) *Analyzer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Analyzer{
		client: client,
		logger: logger,
	}
}

// Analyze explains a single slide. Any failure (network, timeout,
// unrecoverable response) is captured in the returned record; it never
// propagates, so one slide's failure never aborts the batch.
func (a *Analyzer) Analyze(ctx context.Context, image domain.SlideImage, language string) domain.SlideExplanation {
	raw, err := a.client.Complete(ctx, BuildPrompt(language), image.PNG)
	if err != nil {
		a.logger.Error().
			Int("slide", image.SlideNumber).
			Err(err).
			Msg("Slide analysis failed")
		return domain.SlideExplanation{
			SlideNumber: image.SlideNumber,
			Success:     false,
			Error:       fmt.Sprintf("Error analyzing slide %d: %v", image.SlideNumber, err),
		}
	}

	record := normalize.Normalize(raw, image.SlideNumber)
	return domain.SlideExplanation{
		SlideNumber: image.SlideNumber,
		Success:     true,
		Explanation: &record,
	}
}

// AnalyzeAll processes slides in increasing order. Each slide's outcome
// is independent; the result always has one entry per input slide.
func (a *Analyzer) AnalyzeAll(ctx context.Context, slides []domain.SlideImage, language string) []domain.SlideExplanation {
	explanations := make([]domain.SlideExplanation, 0, len(slides))
	for _, slide := range slides {
		a.logger.Info().
			Int("slide", slide.SlideNumber).
			Int("total", len(slides)).
			Msg("Processing slide")
		explanations = append(explanations, a.Analyze(ctx, slide, language))
	}
	return explanations
}
