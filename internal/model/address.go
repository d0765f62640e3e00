package model

import (
	"net/url"
	"strings"
)

// apartmentMarker precedes the apartment number in a composed address.
const apartmentMarker = "кв. "

// mapsSearchURL is the map search endpoint used for address links.
const mapsSearchURL = "https://yandex.ru/maps/?text="

// ComposeAddress joins city, street address and apartment into one display line. Empty and
// blank components are left out. The second return value is false if nothing remains.
func ComposeAddress(city, street, apartment *string) (string, bool) {
	var parts []string
	for _, part := range []*string{city, street} {
		if part != nil && strings.TrimSpace(*part) != "" {
			parts = append(parts, strings.TrimSpace(*part))
		}
	}
	if apartment != nil && strings.TrimSpace(*apartment) != "" {
		parts = append(parts, apartmentMarker+strings.TrimSpace(*apartment))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

// MapsURL returns a link that searches the given address on the map.
func MapsURL(address string) string {
	return mapsSearchURL + url.QueryEscape(address)
}

// FullAddress is ComposeAddress applied to the person's address fields.
func (p *Person) FullAddress() (string, bool) {
	return ComposeAddress(p.City, p.Address, p.Apartment)
}
