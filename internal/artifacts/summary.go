package artifacts

import (
	"encoding/json"

	"github.com/lecturalab/slide-worker/internal/domain"
)

type summarySlide struct {
	SlideNumber  int               `json:"slide_number"`
	Title        string            `json:"titulo"`
	Didactic     domain.TextOrList `json:"explicacion_didactica"`
	KeyPoints    []string          `json:"puntos_clave"`
	Connections  string            `json:"conexiones"`
	ShortSummary string            `json:"resumen_corto"`
}

type summaryCard struct {
	SlideNumber int    `json:"slide_number"`
	Front       string `json:"front"`
	Back        string `json:"back"`
}

type summaryDocument struct {
	Slides      []summarySlide `json:"slides"`
	TotalSlides int            `json:"total_slides"`
	AnkiCards   []summaryCard  `json:"anki_cards"`
}

// buildSummary renders the summary JSON. Failed slides are excluded
// from the slides array but still count toward total_slides.
func buildSummary(explanations []domain.SlideExplanation) ([]byte, error) {
	doc := summaryDocument{
		Slides:      []summarySlide{},
		TotalSlides: len(explanations),
		AnkiCards:   []summaryCard{},
	}

	for _, exp := range explanations {
		if !exp.Success || exp.Explanation == nil {
			continue
		}
		rec := exp.Explanation

		keyPoints := rec.KeyPoints
		if keyPoints == nil {
			keyPoints = []string{}
		}

		doc.Slides = append(doc.Slides, summarySlide{
			SlideNumber:  exp.SlideNumber,
			Title:        rec.Title,
			Didactic:     rec.Didactic,
			KeyPoints:    keyPoints,
			Connections:  rec.Connections,
			ShortSummary: rec.ShortSummary,
		})

		for _, card := range rec.Flashcards {
			doc.AnkiCards = append(doc.AnkiCards, summaryCard{
				SlideNumber: exp.SlideNumber,
				Front:       card.Question,
				Back:        card.Answer,
			})
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}
