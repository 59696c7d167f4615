package domain

import (
	"encoding/json"
	"strings"
)

// JobRequest describes one lecture-processing job as accepted over HTTP.
// It is caller-assigned, immutable, and lives only for the duration of
// processing.
type JobRequest struct {
	JobID    string
	S3Key    string
	Email    string
	Language string
}

// DefaultLanguage is used when the request omits the language field.
const DefaultLanguage = "Spanish"

// SlideImage is a single rasterized PDF page.
type SlideImage struct {
	SlideNumber int // 1-based position within the deck
	PNG         []byte
}

// Flashcard is one question/answer pair extracted from a slide.
type Flashcard struct {
	Question string
	Answer   string
}

// TextOrList holds a value the model may return either as a single
// string or as an ordered list of strings. It marshals back to
// whichever shape it was built from.
type TextOrList struct {
	Text  string
	Items []string
}

// TextValue builds a TextOrList from a plain string.
func TextValue(s string) TextOrList { return TextOrList{Text: s} }

// ListValue builds a TextOrList from a list of strings.
func ListValue(items []string) TextOrList {
	if items == nil {
		items = []string{}
	}
	return TextOrList{Items: items}
}

// IsList reports whether the value was built from a list.
func (t TextOrList) IsList() bool { return t.Items != nil }

// IsEmpty reports whether the value carries no content at all.
func (t TextOrList) IsEmpty() bool {
	if t.Items != nil {
		return len(t.Items) == 0
	}
	return strings.TrimSpace(t.Text) == ""
}

// Flatten joins list items into a single string, or returns the text.
func (t TextOrList) Flatten() string {
	if t.Items != nil {
		return strings.Join(t.Items, " ")
	}
	return t.Text
}

// MarshalJSON emits a JSON array for list values and a JSON string
// otherwise, preserving the shape the model produced.
func (t TextOrList) MarshalJSON() ([]byte, error) {
	if t.Items != nil {
		return json.Marshal(t.Items)
	}
	return json.Marshal(t.Text)
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (t *TextOrList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TextOrList{Text: s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*t = TextOrList{Items: items}
	return nil
}

// ExplanationRecord is the canonical structured result of analyzing one
// slide. After normalization every field is populated with at least a
// safe default, never nil.
type ExplanationRecord struct {
	Title        string
	Didactic     TextOrList
	KeyPoints    []string
	Connections  string
	ShortSummary string
	Flashcards   []Flashcard
}

// SlideExplanation is the tagged per-slide outcome. Exactly one of
// Explanation and Error is populated, determined by Success.
type SlideExplanation struct {
	SlideNumber int
	Success     bool
	Explanation *ExplanationRecord
	Error       string
}

// JobStatus is the terminal state reported in the completion callback.
type JobStatus string

const (
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobOutputs carries the presigned artifact URLs for a completed job.
type JobOutputs struct {
	SummaryURL   string `json:"summary_json_url"`
	DocumentURL  string `json:"docx_url"`
	FlashcardURL string `json:"anki_url"`
	TotalSlides  int    `json:"total_slides"`
}

// ErrorInfo carries failure details for a failed job.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
