package google

// Place is a place record from the Places Web Service. Nearby Search fills a
// subset of the fields; Place Details fills the rest.
type Place struct {
	PlaceID                  string             `json:"place_id"`
	Name                     string             `json:"name"`
	Types                    []string           `json:"types"`
	Geometry                 Geometry           `json:"geometry"`
	FormattedAddress         string             `json:"formatted_address,omitempty"`
	Vicinity                 string             `json:"vicinity,omitempty"`
	AddressComponents        []AddressComponent `json:"address_components,omitempty"`
	Rating                   float64            `json:"rating,omitempty"`
	UserRatingsTotal         int                `json:"user_ratings_total,omitempty"`
	PriceLevel               *int               `json:"price_level,omitempty"`
	BusinessStatus           string             `json:"business_status,omitempty"`
	OpeningHours             *OpeningHours      `json:"opening_hours,omitempty"`
	FormattedPhoneNumber     string             `json:"formatted_phone_number,omitempty"`
	InternationalPhoneNumber string             `json:"international_phone_number,omitempty"`
	Website                  string             `json:"website,omitempty"`
	URL                      string             `json:"url,omitempty"`
	Reviews                  []Review           `json:"reviews,omitempty"`
	Photos                   []Photo            `json:"photos,omitempty"`
}

// Geometry holds a place's coordinates.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a coordinate pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AddressComponent is one component of a structured address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// OpeningHours describes a place's opening schedule.
type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
	Periods     []Period `json:"periods,omitempty"`
}

// Period is one open/close interval in an opening schedule.
type Period struct {
	Open  PeriodPoint `json:"open"`
	Close PeriodPoint `json:"close,omitempty"`
}

// PeriodPoint is a day-of-week plus HHMM time.
type PeriodPoint struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// Review is a user review attached to a place.
type Review struct {
	AuthorName      string   `json:"author_name"`
	Rating          *float64 `json:"rating,omitempty"`
	Text            string   `json:"text"`
	Time            int64    `json:"time"`
	ProfilePhotoURL string   `json:"profile_photo_url,omitempty"`
}

// Photo is a photo reference attached to a place.
type Photo struct {
	PhotoReference   string   `json:"photo_reference"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	HTMLAttributions []string `json:"html_attributions,omitempty"`
}
