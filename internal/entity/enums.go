package entity

import "fmt"

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeStudio     PropertyType = "studio"
	PropertyTypePenthouse  PropertyType = "penthouse"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeDuplex     PropertyType = "duplex"
	PropertyTypeLand       PropertyType = "land"
	PropertyTypeCommercial PropertyType = "commercial"
)

func ParsePropertyType(s string) (PropertyType, error) {
	switch PropertyType(s) {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeStudio, PropertyTypePenthouse,
		PropertyTypeVilla, PropertyTypeDuplex, PropertyTypeLand, PropertyTypeCommercial:
		return PropertyType(s), nil
	}
	return "", fmt.Errorf("unknown property type %q", s)
}

type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

func ParseListingType(s string) (ListingType, error) {
	switch ListingType(s) {
	case ListingTypeSale, ListingTypeRent:
		return ListingType(s), nil
	}
	return "", fmt.Errorf("unknown listing type %q", s)
}

type PropertyStatus string

const (
	StatusDraft   PropertyStatus = "draft"
	StatusActive  PropertyStatus = "active"
	StatusSold    PropertyStatus = "sold"
	StatusRented  PropertyStatus = "rented"
	StatusExpired PropertyStatus = "expired"
)

func ParsePropertyStatus(s string) (PropertyStatus, error) {
	switch PropertyStatus(s) {
	case StatusDraft, StatusActive, StatusSold, StatusRented, StatusExpired:
		return PropertyStatus(s), nil
	}
	return "", fmt.Errorf("unknown property status %q", s)
}

// NotificationFrequency controls how often saved-search alerts are delivered.
type NotificationFrequency string

const (
	FrequencyInstant  NotificationFrequency = "instant"
	FrequencyDaily    NotificationFrequency = "daily"
	FrequencyWeekly   NotificationFrequency = "weekly"
	FrequencyDisabled NotificationFrequency = "disabled"
)

// ParseNotificationFrequency rejects unknown tags instead of defaulting.
// "immediate" is accepted as a legacy alias for "instant".
func ParseNotificationFrequency(s string) (NotificationFrequency, error) {
	if s == "immediate" {
		return FrequencyInstant, nil
	}
	switch NotificationFrequency(s) {
	case FrequencyInstant, FrequencyDaily, FrequencyWeekly, FrequencyDisabled:
		return NotificationFrequency(s), nil
	}
	return "", fmt.Errorf("unknown notification frequency %q", s)
}
