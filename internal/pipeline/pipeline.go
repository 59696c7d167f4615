// Package pipeline orchestrates the full lecture processing flow:
// download, rasterize, analyze, render artifacts, upload, notify.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/lecturalab/slide-worker/internal/analyze"
	"github.com/lecturalab/slide-worker/internal/artifacts"
	"github.com/lecturalab/slide-worker/internal/domain"
	"github.com/lecturalab/slide-worker/internal/observability"
)

// presignTTL is how long artifact download links stay valid.
const presignTTL = 24 * time.Hour

// Content types for the uploaded artifacts.
const (
	contentTypeJSON = "application/json"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeAPKG = "application/octet-stream"
)

// Runner wires the processing stages together. All collaborators are
// injected so tests can substitute fakes.
type Runner struct {
	logger    *observability.Logger
	store     domain.ObjectStore
	extractor domain.SlideExtractor
	analyzer  *analyze.Analyzer
	builder   *artifacts.Builder
	notifier  domain.Notifier
}

// NewRunner creates a Runner.
func NewRunner(
	logger *observability.Logger,
	store domain.ObjectStore,
	extractor domain.SlideExtractor,
	analyzer *analyze.Analyzer,
	builder *artifacts.Builder,
	notifier domain.Notifier,
) *Runner {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Runner{
		logger:    logger,
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		builder:   builder,
		notifier:  notifier,
	}
}

// Process runs the job in the calling goroutine and reports the outcome
// through the notifier. It is the background entry point behind the 202
// response: any failure, including a panic in a stage, becomes a failed
// callback rather than a crash.
func (r *Runner) Process(ctx context.Context, req domain.JobRequest) {
	log := r.logger.With().Str("job_id", req.JobID).Logger()
	log.Info().Msg("Starting background processing")

	outputs, err := func() (outputs *domain.JobOutputs, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("panic during processing: %v", rec)
			}
		}()
		return r.Run(ctx, req)
	}()

	if err != nil {
		log.Error().Err(err).Msg("Processing failed")
		errInfo := &domain.ErrorInfo{
			Message: err.Error(),
			Code:    "PROCESSING_ERROR",
		}
		if cbErr := r.notifier.Notify(ctx, req.JobID, domain.JobStatusFailed, nil, errInfo); cbErr != nil {
			log.Error().Err(cbErr).Msg("Failure callback could not be delivered")
		}
		return
	}

	log.Info().Msg("Processing completed successfully")
	if cbErr := r.notifier.Notify(ctx, req.JobID, domain.JobStatusCompleted, outputs, nil); cbErr != nil {
		log.Error().Err(cbErr).Msg("Completion callback could not be delivered")
	}
}

// Run executes the pipeline stages and returns the presigned artifact
// URLs. Per-slide analysis failures are tolerated; everything else
// aborts the job.
func (r *Runner) Run(ctx context.Context, req domain.JobRequest) (*domain.JobOutputs, error) {
	log := r.logger.With().Str("job_id", req.JobID).Logger()

	language := req.Language
	if language == "" {
		language = domain.DefaultLanguage
	}

	log.Info().Str("s3_key", req.S3Key).Msg("Downloading PDF")
	pdfBytes, err := r.store.Download(ctx, req.S3Key)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Extracting slides")
	slides, err := r.extractor.Extract(ctx, pdfBytes)
	if err != nil {
		return nil, err
	}

	log.Info().Int("slides", len(slides)).Msg("Analyzing slides")
	explanations := r.analyzer.AnalyzeAll(ctx, slides, language)

	log.Info().Msg("Rendering artifacts")
	arts, err := r.builder.Build(explanations, slides)
	if err != nil {
		return nil, err
	}

	summaryKey := fmt.Sprintf("outputs/%s/summary.json", req.JobID)
	docxKey := fmt.Sprintf("outputs/%s/lecture.docx", req.JobID)
	ankiKey := fmt.Sprintf("outputs/%s/lecture.apkg", req.JobID)

	log.Info().Msg("Uploading artifacts")
	if _, err := r.store.Upload(ctx, arts.Summary, summaryKey, contentTypeJSON); err != nil {
		return nil, err
	}
	if _, err := r.store.Upload(ctx, arts.Document, docxKey, contentTypeDOCX); err != nil {
		return nil, err
	}
	if _, err := r.store.Upload(ctx, arts.Flashcards, ankiKey, contentTypeAPKG); err != nil {
		return nil, err
	}

	log.Info().Msg("Generating presigned URLs")
	summaryURL, err := r.store.Presign(ctx, summaryKey, presignTTL)
	if err != nil {
		return nil, err
	}
	docxURL, err := r.store.Presign(ctx, docxKey, presignTTL)
	if err != nil {
		return nil, err
	}
	ankiURL, err := r.store.Presign(ctx, ankiKey, presignTTL)
	if err != nil {
		return nil, err
	}

	return &domain.JobOutputs{
		SummaryURL:   summaryURL,
		DocumentURL:  docxURL,
		FlashcardURL: ankiURL,
		TotalSlides:  len(slides),
	}, nil
}
