package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchNearbyCategory(t *testing.T) {
	tests := []struct {
		name      string
		interests string
		wantType  string
		wantKw    string
		wantOK    bool
	}{
		{"restaurants", "Restaurantes que admiten mascotas", "restaurant", "pet", true},
		{"beaches", "playas para perros", "beach", "dog", true},
		{"vets", "veterinarios de urgencia", "veterinary_care", "", true},
		{"hotels", "HOTELES pet friendly", "lodging", "pet friendly", true},
		{"first match wins", "restaurantes y parques", "restaurant", "pet", true},
		{"no match", "museos", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, ok := matchNearbyCategory(tt.interests)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantType, cat.placeType)
			assert.Equal(t, tt.wantKw, cat.keyword)
		})
	}
}

func TestFallbackQuery(t *testing.T) {
	assert.Equal(t, "dog friendly campsites in Girona España",
		fallbackQuery("campings", "Girona", "España"))
	assert.Equal(t, "pet food stores in Girona España",
		fallbackQuery("tiendas de piensos", "Girona", "España"))
	assert.Equal(t, "parques pet friendly Girona España",
		fallbackQuery("parques", "Girona", "España"))
}
