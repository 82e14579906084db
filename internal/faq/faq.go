// internal/faq/faq.go
//
// FAQ handoff for non-actionable messages. When the classifier decides a
// message is a question rather than a service request, the engine asks a
// Responder for an answer instead of opening a ticket.
package faq

import (
	"context"
	"strings"
	"unicode"

	"guest-router/internal/routing/rules"
)

// FallbackAnswer is sent when no FAQ entry covers the question.
const FallbackAnswer = "No tengo información sobre eso en este momento.\n" +
	"Para resolver esta duda, puedes contactar a recepción."

// Responder answers guest questions. Found is false when the responder has
// no answer, in which case the caller falls back to the reception message.
type Responder interface {
	Answer(ctx context.Context, text string) (answer string, found bool, err error)
}

type entry struct {
	keywords []string
	answer   string
}

// StaticResponder answers from a fixed keyword table. It stands in for a
// knowledge-base service; swap in another Responder to change the backend.
type StaticResponder struct {
	entries []entry
}

func NewStaticResponder() *StaticResponder {
	return &StaticResponder{
		entries: []entry{
			{
				keywords: []string{"desayuno"},
				answer:   "El desayuno se sirve todos los días de 07:00 a 10:30 en el restaurante del primer piso.",
			},
			{
				keywords: []string{"piscina"},
				answer:   "La piscina está abierta de 09:00 a 20:00. Las toallas de piscina se retiran en recepción.",
			},
			{
				keywords: []string{"gimnasio"},
				answer:   "El gimnasio está disponible las 24 horas con la llave de tu habitación.",
			},
			{
				keywords: []string{"mascota", "mascotas", "perro", "gato"},
				answer:   "Aceptamos mascotas pequeñas previa coordinación con recepción.",
			},
		},
	}
}

// Answer matches normalized text against the keyword table. The first entry
// with any keyword present wins.
func (r *StaticResponder) Answer(_ context.Context, text string) (string, bool, error) {
	normalized := rules.Normalize(text)
	if normalized == "" {
		return "", false, nil
	}

	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	for _, e := range r.entries {
		for _, kw := range e.keywords {
			if words[kw] {
				return e.answer, true, nil
			}
		}
	}
	return "", false, nil
}
