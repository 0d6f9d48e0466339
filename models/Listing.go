package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Amenity values a listing may carry. Anything outside this set is rejected
// at creation.
var Amenities = []string{"wifi", "kitchen", "washer", "parking", "terrace", "air_conditioning"}

type Listing struct {
	gorm.Model
	// Slug is the public identifier used in shareable links. Unique across
	// all listings and immutable after creation.
	Slug        string         `json:"slug" gorm:"uniqueIndex;size:16"`
	OwnerID     uint           `json:"ownerID" gorm:"index;not null"`
	Owner       Owner          `json:"owner" gorm:"foreignKey:OwnerID;references:ID"`
	Title       string         `json:"title"`
	Description string         `json:"description" gorm:"type:text"`
	Capacity    int            `json:"capacity"`
	AreaM2      *float32       `json:"areaM2"`
	Amenities   datatypes.JSON `json:"amenities"`

	// AvailableFrom drives the "available" badge: available iff the date is
	// not in the future.
	AvailableFrom time.Time `json:"availableFrom"`

	// Monthly price as a number plus an explicit currency. The legacy data
	// model kept this as free text, which made numeric filtering unreliable.
	MonthlyPrice float64 `json:"monthlyPrice"`
	Currency     string  `json:"currency" gorm:"size:3;default:'EUR'"`

	Address  *Address  `json:"address,omitempty" gorm:"foreignKey:ListingID;references:ID"`
	PhotoSet *PhotoSet `json:"photos,omitempty" gorm:"foreignKey:ListingID;references:ID"`
}

// IsAvailable reports whether the listing's availability date has been reached.
func (l *Listing) IsAvailable() bool {
	return !l.AvailableFrom.After(time.Now())
}

// AmenityList decodes the Amenities JSON column. A missing or malformed
// column decodes to an empty list.
func (l *Listing) AmenityList() []string {
	if l.Amenities == nil {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(l.Amenities, &out); err != nil {
		return []string{}
	}
	return out
}

// Custom JSON marshaling to convert the Amenities column to an array and to
// avoid serializing an unloaded owner.
func (l *Listing) MarshalJSON() ([]byte, error) {
	type Alias Listing
	aux := &struct {
		Amenities []string `json:"amenities"`
		Available bool     `json:"available"`
		Owner     *Owner   `json:"owner,omitempty"`
		*Alias
	}{
		Amenities: l.AmenityList(),
		Available: l.IsAvailable(),
		Alias:     (*Alias)(l),
	}

	if l.Owner.ID > 0 {
		ownerCopy := l.Owner
		ownerCopy.Listings = nil // prevent circular reference
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}
