package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// PhotoSet holds up to 5 image URLs for a listing. The slots serialize under
// the string keys "1".."5"; empty slots are omitted.
type PhotoSet struct {
	gorm.Model
	ListingID uint   `json:"listingID" gorm:"uniqueIndex;not null"`
	URL1      string `json:"-"`
	URL2      string `json:"-"`
	URL3      string `json:"-"`
	URL4      string `json:"-"`
	URL5      string `json:"-"`
}

// MaxPhotoSlots is the number of image slots a listing may fill.
const MaxPhotoSlots = 5

// URLs returns the populated slots keyed "1".."5".
func (p *PhotoSet) URLs() map[string]string {
	out := map[string]string{}
	if p == nil {
		return out
	}
	for key, url := range map[string]string{
		"1": p.URL1, "2": p.URL2, "3": p.URL3, "4": p.URL4, "5": p.URL5,
	} {
		if url != "" {
			out[key] = url
		}
	}
	return out
}

// SetURLs fills the slots in order from the given list. Anything beyond the
// fifth entry is dropped.
func (p *PhotoSet) SetURLs(urls []string) {
	slots := [MaxPhotoSlots]*string{&p.URL1, &p.URL2, &p.URL3, &p.URL4, &p.URL5}
	for i, slot := range slots {
		if i < len(urls) {
			*slot = urls[i]
		} else {
			*slot = ""
		}
	}
}

func (p *PhotoSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        uint              `json:"id"`
		ListingID uint              `json:"listingID"`
		URLs      map[string]string `json:"urls"`
	}{
		ID:        p.ID,
		ListingID: p.ListingID,
		URLs:      p.URLs(),
	})
}
