package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "cafe", "cafe"},
		{"diacritics stripped", "Café de l'Été", "cafe_de_l_ete"},
		{"uppercase folded", "LOUVRE", "louvre"},
		{"punctuation collapsed", "Le  Petit--Café!!", "le_petit_cafe"},
		{"leading trailing separators", "  - Tour Eiffel - ", "tour_eiffel"},
		{"digits kept", "Place du 14 Juillet", "place_du_14_juillet"},
		{"empty", "", ""},
		{"only punctuation", "***", ""},
		{"unicode beyond latin", "Çà et là", "ca_et_la"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_AccentVariantsCollide(t *testing.T) {
	// Same place typed with and without accents must normalize identically.
	assert.Equal(t, Normalize("Musée d'Orsay"), Normalize("Musee d'orsay"))
	assert.Equal(t, Normalize("Châteauneuf-du-Pape"), Normalize("chateauneuf du pape"))
}
