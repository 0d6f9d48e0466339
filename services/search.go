package services

import (
	"log"
	"sort"
	"strings"
	"time"

	"github.com/Gr4tig/SpinLiving-sub000/models"
	"github.com/Gr4tig/SpinLiving-sub000/utils"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// SearchFilters are all optional; a nil/empty field means "no constraint".
// Lat, Lng and RadiusKm are only meaningful together.
type SearchFilters struct {
	City          string
	CityCode      string
	Lat           *float64
	Lng           *float64
	RadiusKm      *float64
	MaxPrice      *float64
	Capacity      *int
	AvailableFrom *time.Time
	Amenities     []string
}

// RadiusActive reports whether a radius search is requested.
func (f *SearchFilters) RadiusActive() bool {
	return f.Lat != nil && f.Lng != nil && f.RadiusKm != nil
}

func (f *SearchFilters) cityFilterActive() bool {
	return strings.TrimSpace(f.City) != "" || strings.TrimSpace(f.CityCode) != ""
}

// ListingResult is the denormalized view-model the search grid renders:
// the listing with its address, photo set and owner, plus the computed
// distance when a radius search is active.
type ListingResult struct {
	Listing    models.Listing `json:"listing"`
	DistanceKm *float64       `json:"distanceKm,omitempty"`
}

// SearchListings runs the whole search pipeline: a base query over listing
// columns, batched relation loading, then the filters that need address data.
// Relation gaps degrade the affected listing instead of failing the search.
func SearchListings(db *gorm.DB, f SearchFilters) ([]ListingResult, error) {
	q := db.Model(&models.Listing{})

	// Filters that map to direct listing columns.
	if f.Capacity != nil && *f.Capacity > 0 {
		q = q.Where("capacity = ?", *f.Capacity)
	}
	if f.AvailableFrom != nil {
		q = q.Where("available_from >= ?", *f.AvailableFrom)
	}
	if f.MaxPrice != nil && *f.MaxPrice > 0 {
		q = q.Where("monthly_price <= ?", *f.MaxPrice)
	}

	var listings []models.Listing
	if err := q.
		Preload("Address").
		Preload("PhotoSet").
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, err
	}

	if len(listings) == 0 {
		return []ListingResult{}, nil
	}

	attachOwners(db, listings)

	results := make([]ListingResult, 0, len(listings))
	for i := range listings {
		listing := listings[i]

		if f.cityFilterActive() && !cityMatches(&listing, &f) {
			continue
		}
		if len(f.Amenities) > 0 && !hasAmenities(&listing, f.Amenities) {
			continue
		}

		var distance *float64
		if f.RadiusActive() {
			addr := listing.Address
			if !addr.HasCoordinates() {
				continue
			}
			d := utils.DistanceKm(*f.Lat, *f.Lng, *addr.Lat, *addr.Lng)
			if d > *f.RadiusKm {
				continue
			}
			distance = &d
		}

		results = append(results, ListingResult{Listing: listing, DistanceKm: distance})
	}

	if f.RadiusActive() {
		sort.SliceStable(results, func(i, j int) bool {
			return *results[i].DistanceKm < *results[j].DistanceKm
		})
	}

	return results, nil
}

// attachOwners resolves owner profiles in one batched query. A failure here
// only costs the nested owner fields, never the search.
func attachOwners(db *gorm.DB, listings []models.Listing) {
	ids := make([]uint, 0, len(listings))
	for i := range listings {
		if !slices.Contains(ids, listings[i].OwnerID) {
			ids = append(ids, listings[i].OwnerID)
		}
	}

	var owners []models.Owner
	if err := db.Where("id IN ?", ids).Find(&owners).Error; err != nil {
		log.Printf("search: failed to load owners: %v", err)
		return
	}

	byID := make(map[uint]models.Owner, len(owners))
	for _, owner := range owners {
		byID[owner.ID] = owner
	}
	for i := range listings {
		if owner, ok := byID[listings[i].OwnerID]; ok {
			listings[i].Owner = owner
		}
	}
}

// cityMatches keeps a listing only when its address matches the requested
// city name (case-insensitive) or INSEE city code. Listings without an
// address are dropped whenever a city filter is active.
func cityMatches(listing *models.Listing, f *SearchFilters) bool {
	addr := listing.Address
	if addr == nil {
		return false
	}
	if code := strings.TrimSpace(f.CityCode); code != "" {
		return addr.CityCode == code
	}
	return strings.EqualFold(strings.TrimSpace(addr.City), strings.TrimSpace(f.City))
}

func hasAmenities(listing *models.Listing, required []string) bool {
	have := listing.AmenityList()
	for _, amenity := range required {
		if !slices.Contains(have, amenity) {
			return false
		}
	}
	return true
}
