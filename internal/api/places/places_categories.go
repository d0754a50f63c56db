package places

import "strings"

// nearbyCategory pairs an interest keyword with the place type and keyword
// used for the geo-biased nearby search.
type nearbyCategory struct {
	match     string
	placeType string
	keyword   string
}

// nearbyCategories is evaluated top to bottom; the first keyword found in the
// interests string wins, so order matters.
var nearbyCategories = []nearbyCategory{
	{match: "restaurantes", placeType: "restaurant", keyword: "pet"},
	{match: "playas", placeType: "beach", keyword: "dog"},
	{match: "parques", placeType: "park", keyword: "dog"},
	{match: "veterinarios", placeType: "veterinary_care", keyword: ""},
	{match: "tiendas", placeType: "pet_store", keyword: ""},
	{match: "hoteles", placeType: "lodging", keyword: "pet friendly"},
	{match: "campings", placeType: "campground", keyword: "pet"},
	{match: "cafeterias", placeType: "cafe", keyword: "pet"},
}

// matchNearbyCategory selects at most one nearby-search category for the
// given interests string, matching case-insensitively.
func matchNearbyCategory(interests string) (nearbyCategory, bool) {
	lowered := strings.ToLower(interests)
	for _, cat := range nearbyCategories {
		if strings.Contains(lowered, cat.match) {
			return cat, true
		}
	}
	return nearbyCategory{}, false
}

// fallbackQuery builds the alternate English-language query for the final
// text-search pass when the earlier branches came up short.
func fallbackQuery(interests, city, country string) string {
	lowered := strings.ToLower(interests)
	switch {
	case strings.Contains(lowered, "campings"):
		return "dog friendly campsites in " + city + " " + country
	case strings.Contains(lowered, "tiendas de piensos"):
		return "pet food stores in " + city + " " + country
	default:
		return interests + " pet friendly " + city + " " + country
	}
}
