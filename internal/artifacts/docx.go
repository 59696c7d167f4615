package artifacts

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fumiama/go-docx"

	"github.com/lecturalab/slide-worker/internal/domain"
)

// Font sizes in half-points.
const (
	slideTitleSize = "36" // 18pt
	headingSize    = "28" // 14pt
	bodySize       = "22" // 11pt
)

// buildDocument renders the Word document: for each slide its image
// followed by the structured explanation, or an error section when the
// analysis failed. Slide images go through temp files because the
// drawing API reads from a path.
func buildDocument(explanations []domain.SlideExplanation, slides []domain.SlideImage) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	var tempImages []string
	defer func() {
		for _, path := range tempImages {
			os.Remove(path)
		}
	}()

	for i, exp := range explanations {
		titlePara := w.AddParagraph().Justification("center")
		titlePara.AddText(fmt.Sprintf("Slide %d", exp.SlideNumber)).Size(slideTitleSize).Bold()

		if i < len(slides) {
			path, err := writeTempImage(slides[i].PNG)
			if err != nil {
				addBody(w, fmt.Sprintf("Error loading slide image: %v", err))
			} else {
				tempImages = append(tempImages, path)
				if _, err := w.AddParagraph().AddInlineDrawingFrom(path); err != nil {
					addBody(w, fmt.Sprintf("Error loading slide image: %v", err))
				}
			}
		}

		if exp.Success && exp.Explanation != nil {
			addExplanation(w, exp.Explanation)
		} else {
			addHeading(w, "❌ Error en el análisis")
			errText := exp.Error
			if errText == "" {
				errText = "Error desconocido"
			}
			addBody(w, errText)
		}

		// Spacing between slides.
		w.AddParagraph()
		w.AddParagraph()
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addExplanation(w *docx.Docx, rec *domain.ExplanationRecord) {
	if rec.Title != "" {
		para := w.AddParagraph()
		para.AddText("📌 Título: ").Size(headingSize).Bold()
		para.AddText(rec.Title).Size(headingSize).Bold()
	}

	if !rec.Didactic.IsEmpty() {
		addHeading(w, "🧠 Explicación didáctica")
		if rec.Didactic.IsList() {
			for _, item := range rec.Didactic.Items {
				addBody(w, item)
				w.AddParagraph()
			}
		} else {
			addBody(w, rec.Didactic.Text)
		}
	}

	if len(rec.KeyPoints) > 0 {
		addHeading(w, "🎯 Puntos clave")
		for _, item := range rec.KeyPoints {
			addBody(w, "• "+item)
		}
	}

	if rec.Connections != "" {
		addHeading(w, "🔗 Conexiones")
		addBody(w, rec.Connections)
	}

	if rec.ShortSummary != "" {
		addHeading(w, "📝 Resumen corto")
		addBody(w, rec.ShortSummary)
	}
}

func addHeading(w *docx.Docx, text string) {
	w.AddParagraph().AddText(text).Size(headingSize).Bold()
}

func addBody(w *docx.Docx, text string) {
	w.AddParagraph().AddText(text).Size(bodySize)
}

func writeTempImage(png []byte) (string, error) {
	f, err := os.CreateTemp("", "slide-*.png")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(png); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
