// Package normalize repairs and canonicalizes vision-model output.
//
// Model responses are adversarial: pure JSON, JSON fenced in a code
// block, JSON wrapped in prose, or malformed/truncated JSON. Normalize
// runs an ordered list of recovery strategies and maps whatever object
// survives onto the canonical explanation record. It never fails; the
// worst input degrades to placeholder content.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lecturalab/slide-worker/internal/domain"
)

// placeholderExplanation fills the didactic field when the legacy
// schema carries no usable content at all.
const placeholderExplanation = "Explicación generada automáticamente."

var (
	fencedJSONRe   = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	fencedAnyRe    = regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```")
	templateEchoRe = regexp.MustCompile(`(?s)\{\{.*?\}\}`)
)

// strategy attempts one recovery of a JSON object from raw text.
type strategy func(s string) (map[string]any, bool)

// strategies are evaluated in order; the first success wins.
var strategies = []strategy{
	parseWhole,
	parseBraceRepair,
	parseFencedJSON,
	parseFencedAny,
	parseBraceSpan,
}

// Normalize parses rawText into a fully-populated ExplanationRecord.
// Every field of the result is defined; missing content degrades to
// empty strings/lists, and an absent title falls back to "Slide N".
func Normalize(rawText string, slideNumber int) domain.ExplanationRecord {
	s := strings.TrimSpace(rawText)

	for _, try := range strategies {
		if obj, ok := try(s); ok {
			return mapRecord(obj, slideNumber)
		}
	}

	// Last resort: strip template echoes from the prompt example and
	// package the remaining text as the explanation body.
	cleaned := strings.TrimSpace(templateEchoRe.ReplaceAllString(s, ""))
	return domain.ExplanationRecord{
		Title:        fmt.Sprintf("Slide %d", slideNumber),
		Didactic:     domain.TextValue(cleaned),
		KeyPoints:    []string{},
		Connections:  "",
		ShortSummary: "",
		Flashcards:   []domain.Flashcard{},
	}
}

// parseWhole parses the whole trimmed text as a JSON object.
func parseWhole(s string) (map[string]any, bool) {
	return parseObject(s)
}

// parseBraceRepair recovers truncated-object responses that begin with
// a quote character instead of an opening brace.
func parseBraceRepair(s string) (map[string]any, bool) {
	if !strings.HasPrefix(s, `"`) || strings.HasPrefix(s, `{"`) {
		return nil, false
	}
	if obj, ok := parseObject("{" + s); ok {
		return obj, true
	}
	cleaned := strings.TrimLeft(s, "\n \"")
	if strings.Contains(cleaned, ":") {
		return parseObject(`{"` + cleaned)
	}
	return nil, false
}

// parseFencedJSON parses the contents of a ```json fenced block.
func parseFencedJSON(s string) (map[string]any, bool) {
	if m := fencedJSONRe.FindStringSubmatch(s); m != nil {
		return parseObject(m[1])
	}
	return nil, false
}

// parseFencedAny parses the contents of any fenced block.
func parseFencedAny(s string) (map[string]any, bool) {
	if m := fencedAnyRe.FindStringSubmatch(s); m != nil {
		return parseObject(m[1])
	}
	return nil, false
}

// parseBraceSpan parses the greedy span from the first "{" to the
// last "}".
func parseBraceSpan(s string) (map[string]any, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}
	return parseObject(s[start : end+1])
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

// canonicalKeys are the five text fields of the current model schema.
var canonicalKeys = []string{
	"titulo",
	"explicacion_didactica",
	"puntos_clave",
	"conexiones",
	"resumen_corto",
}

// mapRecord maps a recovered object onto the canonical schema. Objects
// carrying all five canonical keys are used verbatim; everything else
// is treated as the legacy schema and synthesized.
func mapRecord(obj map[string]any, slideNumber int) domain.ExplanationRecord {
	if hasAll(obj, canonicalKeys) {
		return mapCanonical(obj)
	}
	return mapLegacy(obj, slideNumber)
}

func hasAll(obj map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}

func mapCanonical(obj map[string]any) domain.ExplanationRecord {
	// Canonical fields are reproduced verbatim, an empty title included.
	return domain.ExplanationRecord{
		Title:        asString(obj["titulo"]),
		Didactic:     asTextOrList(obj["explicacion_didactica"]),
		KeyPoints:    asStringList(obj["puntos_clave"]),
		Connections:  asString(obj["conexiones"]),
		ShortSummary: asString(obj["resumen_corto"]),
		Flashcards:   asFlashcards(obj["anki_cards"]),
	}
}

// mapLegacy synthesizes the canonical fields from the legacy schema
// (titulo / contenido_clave / contexto / insights / resumen).
func mapLegacy(obj map[string]any, slideNumber int) domain.ExplanationRecord {
	// The title defaults only when the key is absent; a present empty
	// string stays empty.
	title := fmt.Sprintf("Slide %d", slideNumber)
	if v, ok := obj["titulo"]; ok {
		title = asString(v)
	}

	keyContent := asStringList(obj["contenido_clave"])
	context := asString(obj["contexto"])
	insights := asStringList(obj["insights"])
	summary := asString(obj["resumen"])

	// The didactic explanation prefers the legacy summary; otherwise
	// it concatenates whatever legacy content exists.
	didactic := strings.TrimSpace(summary)
	if didactic == "" {
		var parts []string
		if len(keyContent) > 0 {
			parts = append(parts, strings.Join(keyContent, " "))
		}
		if strings.TrimSpace(context) != "" {
			parts = append(parts, strings.TrimSpace(context))
		}
		if len(insights) > 0 {
			parts = append(parts, strings.Join(insights, " "))
		}
		didactic = strings.TrimSpace(strings.Join(parts, " "))
	}
	if didactic == "" {
		didactic = placeholderExplanation
	}

	return domain.ExplanationRecord{
		Title:        title,
		Didactic:     domain.TextValue(didactic),
		KeyPoints:    keyContent,
		Connections:  context,
		ShortSummary: summary,
		Flashcards:   asFlashcards(obj["anki_cards"]),
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch t := item.(type) {
		case string:
			out = append(out, t)
		default:
			out = append(out, fmt.Sprintf("%v", t))
		}
	}
	return out
}

func asTextOrList(v any) domain.TextOrList {
	switch t := v.(type) {
	case string:
		return domain.TextValue(t)
	case []any:
		return domain.ListValue(asStringList(t))
	default:
		return domain.TextValue("")
	}
}

// asFlashcards extracts question/answer pairs. Pairs missing either
// field are dropped rather than guessed at.
func asFlashcards(v any) []domain.Flashcard {
	items, ok := v.([]any)
	if !ok {
		return []domain.Flashcard{}
	}
	cards := make([]domain.Flashcard, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		q := strings.TrimSpace(asString(entry["pregunta"]))
		a := strings.TrimSpace(asString(entry["respuesta"]))
		if q == "" || a == "" {
			continue
		}
		cards = append(cards, domain.Flashcard{Question: q, Answer: a})
	}
	return cards
}
