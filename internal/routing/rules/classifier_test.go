// internal/routing/rules/classifier_test.go
package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"guest-router/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "NECESITO TOALLAS", "necesito toallas"},
		{"folds accents", "La habitación está sucia", "la habitacion esta sucia"},
		{"keeps enie", "El baño está dañado", "el bano esta danado"},
		{"collapses whitespace", "  no   hay\t agua  ", "no hay agua"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestClassify_SingleAreaHits(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		area   models.Area
		reason string
	}{
		{"towels", "necesito toallas por favor", models.AreaHousekeeping, "Towels request"},
		{"cleaning with accents", "pueden venir a hacer la limpieza", models.AreaHousekeeping, "Cleaning request"},
		{"hot water", "no tengo agua caliente", models.AreaMantencion, "Hot water issue"},
		{"wifi", "el wifi no funciona", models.AreaMantencion, "WiFi/internet issue"},
		{"late checkout", "puedo pedir late checkout", models.AreaRecepcion, "Checkout inquiry"},
		{"manager", "quiero hablar con el gerente", models.AreaGerencia, "Manager request"},
		{"formal complaint", "quiero presentar una queja formal", models.AreaGerencia, "Formal complaint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.text)
			assert.True(t, result.Matched)
			assert.Equal(t, tt.area, result.Area)
			assert.Equal(t, tt.reason, result.Reason)
			assert.GreaterOrEqual(t, result.Confidence, 0.87)
			assert.LessOrEqual(t, result.Confidence, 0.97)
		})
	}
}

func TestClassify_MultiAreaIsMiss(t *testing.T) {
	// Mentions both towels (housekeeping) and wifi (maintenance). The
	// classifier must not guess between them.
	result := Classify("necesito toallas y el wifi no funciona")
	assert.False(t, result.Matched)
	assert.Empty(t, result.Area)
	assert.Zero(t, result.Confidence)
}

func TestClassify_NoMatchIsMiss(t *testing.T) {
	for _, text := range []string{
		"hola buenas tardes",
		"necesito mas almohadas",
		"",
		"   ",
	} {
		result := Classify(text)
		assert.False(t, result.Matched, "expected miss for %q", text)
	}
}

func TestClassify_ComplaintBeatsKeyword(t *testing.T) {
	// A complaint phrase plus a maintenance keyword is ambiguous across
	// areas and must escalate rather than route to maintenance.
	result := Classify("esto es inaceptable, la ducha esta rota")
	assert.False(t, result.Matched)

	// A pure complaint routes to management.
	result = Classify("tengo un reclamo")
	assert.True(t, result.Matched)
	assert.Equal(t, models.AreaGerencia, result.Area)
}
