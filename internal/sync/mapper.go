package sync

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/auphere/places-sync/internal/place"
	"github.com/auphere/places-sync/pkg/google"
)

// typePriority maps Google place types to the internal type field. The first
// entry matched against the place's type list wins.
var typePriority = []struct {
	google   string
	internal string
}{
	{"restaurant", "restaurant"},
	{"bar", "bar"},
	{"night_club", "nightclub"},
	{"nightclub", "nightclub"},
	{"cafe", "cafe"},
	{"museum", "other"},
	{"park", "other"},
	{"shopping_mall", "other"},
	{"lodging", "other"},
	{"food", "restaurant"},
	{"meal_takeaway", "restaurant"},
	{"meal_delivery", "restaurant"},
}

var cuisineTypes = []struct {
	google  string
	cuisine string
}{
	{"italian_restaurant", "italian"},
	{"chinese_restaurant", "chinese"},
	{"japanese_restaurant", "japanese"},
	{"mexican_restaurant", "mexican"},
	{"indian_restaurant", "indian"},
	{"spanish_restaurant", "spanish"},
	{"french_restaurant", "french"},
	{"thai_restaurant", "thai"},
	{"american_restaurant", "american"},
	{"mediterranean_restaurant", "mediterranean"},
}

var cuisineNameKeywords = []struct {
	keyword string
	cuisine string
}{
	{"italian", "italian"},
	{"pizza", "italian"},
	{"sushi", "japanese"},
	{"ramen", "japanese"},
	{"taco", "mexican"},
	{"burrito", "mexican"},
	{"curry", "indian"},
	{"tapas", "spanish"},
	{"paella", "spanish"},
	{"burger", "american"},
	{"bbq", "american"},
	{"thai", "thai"},
	{"vietnamese", "vietnamese"},
	{"korean", "korean"},
	{"mediterranean", "mediterranean"},
	{"chinese", "chinese"},
}

// MapPlace converts an API place into a store request for the given city.
func MapPlace(g google.Place, city string) place.CreatePlaceRequest {
	placeType := classifyType(g.Types)
	categories := filterCategories(g.Types)

	main := categories
	if len(main) > 3 {
		main = main[:3]
	}
	var secondary []string
	if len(categories) > 3 {
		secondary = categories[3:]
		if len(secondary) > 5 {
			secondary = secondary[:5]
		}
	}

	var cuisines []string
	if placeType == "restaurant" || placeType == "cafe" {
		cuisines = extractCuisines(g.Types, g.Name)
	}

	req := place.CreatePlaceRequest{
		Name:                g.Name,
		Type:                placeType,
		Latitude:            g.Geometry.Location.Lat,
		Longitude:           g.Geometry.Location.Lng,
		City:                city,
		District:            extractDistrict(g.AddressComponents),
		PostalCode:          extractPostalCode(g.AddressComponents),
		Website:             strPtr(g.Website),
		GooglePlaceID:       strPtr(g.PlaceID),
		MainCategories:      main,
		SecondaryCategories: secondary,
		CuisineTypes:        cuisines,
		PriceLevel:          g.PriceLevel,
		BusinessStatus:      strPtr(g.BusinessStatus),
		SuitableFor:         suitableFor(g.Types, g.PriceLevel),
	}

	// formatted_address is preferred over vicinity.
	if g.FormattedAddress != "" {
		req.Address = strPtr(g.FormattedAddress)
	} else {
		req.Address = strPtr(g.Vicinity)
	}

	if g.FormattedPhoneNumber != "" {
		req.Phone = strPtr(g.FormattedPhoneNumber)
	} else {
		req.Phone = strPtr(g.InternationalPhoneNumber)
	}

	if g.Rating > 0 {
		rating := g.Rating
		req.GoogleRating = &rating
	}
	if g.UserRatingsTotal > 0 {
		count := g.UserRatingsTotal
		req.GoogleRatingCount = &count
	}

	if g.URL != "" {
		req.GooglePlaceURL = strPtr(g.URL)
	} else {
		req.GooglePlaceURL = strPtr(fmt.Sprintf("https://www.google.com/maps/place/?q=place_id:%s", g.PlaceID))
	}

	if g.OpeningHours != nil {
		if data, err := json.Marshal(g.OpeningHours); err == nil {
			req.OpeningHours = data
		}
		req.IsOpenNow = g.OpeningHours.OpenNow
	}

	return req
}

// classifyType picks the internal place type from the priority list. The
// first priority entry found anywhere in types wins; no match means "other".
func classifyType(types []string) string {
	for _, entry := range typePriority {
		for _, t := range types {
			if t == entry.google {
				return entry.internal
			}
		}
	}
	return "other"
}

// filterCategories drops the generic Google types that carry no signal.
func filterCategories(types []string) []string {
	var out []string
	for _, t := range types {
		if strings.HasPrefix(t, "point_of_interest") ||
			strings.HasPrefix(t, "establishment") ||
			t == "geocode" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// extractCuisines derives cuisine tags from Google types and name keywords.
func extractCuisines(types []string, name string) []string {
	var cuisines []string
	for _, entry := range cuisineTypes {
		if contains(types, entry.google) {
			cuisines = append(cuisines, entry.cuisine)
		}
	}

	nameLower := strings.ToLower(name)
	for _, entry := range cuisineNameKeywords {
		if strings.Contains(nameLower, entry.keyword) && !contains(cuisines, entry.cuisine) {
			cuisines = append(cuisines, entry.cuisine)
		}
	}
	return cuisines
}

// extractDistrict finds a neighborhood-level address component.
func extractDistrict(components []google.AddressComponent) *string {
	for _, c := range components {
		for _, t := range c.Types {
			switch t {
			case "sublocality", "sublocality_level_1", "neighborhood", "administrative_area_level_3":
				return strPtr(c.LongName)
			}
		}
	}
	return nil
}

func extractPostalCode(components []google.AddressComponent) *string {
	for _, c := range components {
		if contains(c.Types, "postal_code") {
			return strPtr(c.LongName)
		}
	}
	return nil
}

// suitableFor derives audience tags from place types and price level.
func suitableFor(types []string, priceLevel *int) []string {
	var suitable []string
	add := func(tags ...string) {
		for _, tag := range tags {
			if !contains(suitable, tag) {
				suitable = append(suitable, tag)
			}
		}
	}

	if contains(types, "park") || contains(types, "museum") || contains(types, "tourist_attraction") {
		add("families", "solo", "groups")
	}
	if contains(types, "bar") || contains(types, "night_club") || contains(types, "nightclub") {
		add("groups", "couples")
	}
	if contains(types, "cafe") {
		add("solo", "couples", "groups")
	}
	if contains(types, "restaurant") || contains(types, "food") {
		add("couples", "families", "groups")

		if priceLevel != nil {
			if *priceLevel >= 3 {
				// Very expensive places lose the families tag.
				filtered := suitable[:0]
				for _, tag := range suitable {
					if tag != "families" {
						filtered = append(filtered, tag)
					}
				}
				suitable = filtered
			} else if *priceLevel <= 1 {
				add("budget")
			}
		}
	}

	return suitable
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
