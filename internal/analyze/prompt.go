package analyze

import "fmt"

// BuildPrompt returns the slide-explanation prompt, parameterized by
// the target language. The model is instructed to answer with a single
// strict JSON object in the canonical schema.
func BuildPrompt(language string) string {
	languageInstruction := fmt.Sprintf("\n- Esta explicación debe ser escrita en %s.\n", language)

	return fmt.Sprintf(`Hazme una explicación **completa, clara y dinámica** sobre este texto.%s
Debe permitir al lector **entender todo el contenido técnico de manera fácil y ordenada**,
sin extenderse demasiado ni omitir ningún detalle importante.
Incluye ejemplos o analogías cuando ayuden a comprender mejor.
Al final, agrega un **resumen corto** con lo más importante de toda la explicación.

OBJETIVO GENERAL
- Que sea **profunda pero comprensible**, con rigor técnico y tono didáctico.
- Que ayude a **aprender de forma rápida**.
- Que combine explicación fluida con **puntos clave**.
- **IMPORTANTE:** Siempre genera texto explicativo completo, incluso si la diapositiva es un gráfico, diagrama o imagen sin texto. Analiza visualmente y describe lo que ves, explicando su significado y relevancia.
- **IDIOMA:** Todas las explicaciones deben estar en **%s**, pero mantén las **palabras técnicas más importantes** (términos clave, conceptos específicos) en su **idioma original** (inglés, alemán, etc.) para facilitar el aprendizaje de vocabulario técnico.

INSTRUCCIONES
1) Explica el tema principal y por qué es relevante.
2) **EXPLICACIÓN DIDÁCTICA:** Divide la explicación completa en **puntos clave detallados y profundos** (no un párrafo largo). Cada punto debe ser **súper completo, técnico y profesional**, cubriendo TODOS los detalles visibles en la diapositiva sin omitir absolutamente nada. Explica conceptos complejos de manera que un principiante pueda entenderlos desde cero, pero con rigor técnico suficiente para convertir al lector en un experto absoluto que domine los conceptos y pueda usar términos técnicos correctamente. Incluye definiciones, ejemplos prácticos, analogías cuando ayuden, y conexiones lógicas. Mantén términos técnicos importantes en inglés o alemán si aplica, explicándolos en %s cuando sea necesario. Usa más términos en inglés para conceptos clave y nombres específicos del PowerPoint, explicándolos en %s cuando sea necesario. Proporciona el contenido directo sin prefijos como "Punto 1:", "Punto 2:", etc.
3) Resume conceptos principales adicionales en puntos clave (usando términos originales donde sea clave).
4) Conecta con temas relacionados, pero haciéndolo específico y en relación con las demás diapositivas, no tan general. Aporta información realmente útil y que ayude a comprender mejor el tema, no datos innecesarios.
5) Cierra con un **resumen corto** (2–3 frases con el takeaway).
6) **SIEMPRE** proporciona contenido completo, no dejes campos vacíos o con "N/A".
7) Genera 3 ankis de conceptos importantes de aprender e interiorizar en esta diapositiva.

FORMATO DE SALIDA
Devuelve **únicamente** un **objeto JSON válido** (sin texto adicional, sin comentarios).
NO copies literalmente el ejemplo; rellénalo con el contenido del slide.

{
  "titulo": "Tema o concepto central de la diapositiva",
  "explicacion_didactica": ["Punto 1: Detalle completo...", "Punto 2: Detalle completo...", "Punto 3: ..."],
  "puntos_clave": ["Idea 1", "Idea 2", "Idea 3"],
  "conexiones": "Relaciones con otros temas importantes",
  "resumen_corto": "Síntesis breve (2–3 frases)",
  "anki_cards": [
    {"pregunta": "...", "respuesta": "..."},
    {"pregunta": "...", "respuesta": "..."},
    {"pregunta": "...", "respuesta": "..."}
  ]
}`, languageInstruction, language, language, language)
}
