package models

import "gorm.io/gorm"

// Address belongs to exactly one listing. Lat/Lng are set together or not at
// all; they are the coordinates used for radius search.
type Address struct {
	gorm.Model
	ListingID      uint     `json:"listingID" gorm:"uniqueIndex;not null"`
	Street         string   `json:"street"`
	City           string   `json:"city" gorm:"index"`
	PostalCode     string   `json:"postalCode"`
	CityCode       string   `json:"cityCode" gorm:"index"` // INSEE code
	DepartmentCode string   `json:"departmentCode"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (a *Address) HasCoordinates() bool {
	return a != nil && a.Lat != nil && a.Lng != nil
}
