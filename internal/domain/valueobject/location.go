package valueobject

import "strings"

// Location is an immutable value object for where a transaction took place
// or where a user lives. Every part is optional.
type Location struct {
	country    string
	city       string
	postalCode string
}

// NewLocation creates a Location, trimming surrounding whitespace.
func NewLocation(country, city, postalCode string) Location {
	return Location{
		country:    strings.TrimSpace(country),
		city:       strings.TrimSpace(city),
		postalCode: strings.TrimSpace(postalCode),
	}
}

// Country returns the country name or code.
func (l Location) Country() string { return l.country }

// City returns the city name.
func (l Location) City() string { return l.city }

// PostalCode returns the postal code.
func (l Location) PostalCode() string { return l.postalCode }

// IsZero returns true if no part of the location is set.
func (l Location) IsZero() bool {
	return l.country == "" && l.city == "" && l.postalCode == ""
}

// Complete reports whether both country and city are set.
func (l Location) Complete() bool {
	return l.country != "" && l.city != ""
}

// FillMissing returns a copy of l with empty parts taken from other.
func (l Location) FillMissing(other Location) Location {
	out := l
	if out.country == "" {
		out.country = other.country
	}
	if out.city == "" {
		out.city = other.city
	}
	if out.postalCode == "" {
		out.postalCode = other.postalCode
	}
	return out
}

// Equal checks equality with another Location.
func (l Location) Equal(other Location) bool {
	return l == other
}

// String renders "city, country".
func (l Location) String() string {
	switch {
	case l.city != "" && l.country != "":
		return l.city + ", " + l.country
	case l.city != "":
		return l.city
	default:
		return l.country
	}
}
