// internal/faq/faq_test.go
package faq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticResponder_Answer(t *testing.T) {
	r := NewStaticResponder()

	tests := []struct {
		name  string
		text  string
		found bool
	}{
		{"breakfast hours", "¿a qué hora es el desayuno?", true},
		{"pool with accents", "¿La PISCINA está abierta?", true},
		{"pets", "puedo traer a mi perro", true},
		{"unknown topic", "¿dónde puedo comprar recuerdos?", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, found, err := r.Answer(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			if found {
				assert.NotEmpty(t, answer)
			}
		})
	}
}

func TestStaticResponder_NoPartialWordMatch(t *testing.T) {
	r := NewStaticResponder()

	// "desayunos" is not the keyword "desayuno"; token match is exact.
	_, found, err := r.Answer(context.Background(), "piscinazo")
	require.NoError(t, err)
	assert.False(t, found)
}
