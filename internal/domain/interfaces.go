package domain

import (
	"context"
	"time"
)

// VisionClient sends one multimodal prompt+image request to the model
// provider and returns the raw text of the response.
type VisionClient interface {
	Complete(ctx context.Context, prompt string, imagePNG []byte) (string, error)
}

// SlideExtractor rasterizes a PDF into ordered page images.
type SlideExtractor interface {
	Extract(ctx context.Context, pdfBytes []byte) ([]SlideImage, error)
}

// ObjectStore abstracts the object storage provider. All three
// operations are thin and non-retried; retry policy belongs to callers.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Notifier delivers the signed job outcome to the orchestrating service.
type Notifier interface {
	Notify(ctx context.Context, jobID string, status JobStatus, outputs *JobOutputs, errInfo *ErrorInfo) error
}
