package routes

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Gr4tig/SpinLiving-sub000/models"
	"github.com/Gr4tig/SpinLiving-sub000/storage"
	"github.com/Gr4tig/SpinLiving-sub000/utils"
	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
)

// CreateListing publishes a listing: the listing row, its address and its
// photo set are created in one action. The public slug is generated here and
// never changes afterwards.
func CreateListing(ctx iris.Context) {
	ownerID := ctx.Values().Get("ownerID").(uint)

	var input CreateListingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	for _, amenity := range amenities {
		if !slices.Contains(models.Amenities, amenity) {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "Unknown amenity: "+amenity, ctx)
			return
		}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	if (input.Lat == nil) != (input.Lng == nil) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "lat and lng must be provided together", ctx)
		return
	}

	availableFrom, dateErr := time.Parse("2006-01-02", input.AvailableFrom)
	if dateErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "availableFrom must be a YYYY-MM-DD date", ctx)
		return
	}

	slug, slugErr := utils.UniqueSlug(storage.DB, &models.Listing{}, "slug")
	if slugErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	currency := input.Currency
	if currency == "" {
		currency = "EUR"
	}

	listing := models.Listing{
		Slug:          slug,
		OwnerID:       ownerID,
		Title:         input.Title,
		Description:   input.Description,
		Capacity:      input.Capacity,
		AreaM2:        input.AreaM2,
		Amenities:     amenitiesJSON,
		AvailableFrom: availableFrom,
		MonthlyPrice:  input.MonthlyPrice,
		Currency:      currency,
	}

	if err := storage.DB.Create(&listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	address := models.Address{
		ListingID:      listing.ID,
		Street:         input.Street,
		City:           input.City,
		PostalCode:     input.PostalCode,
		CityCode:       input.CityCode,
		DepartmentCode: input.DepartmentCode,
		Lat:            input.Lat,
		Lng:            input.Lng,
	}
	if err := storage.DB.Create(&address).Error; err != nil {
		log.Printf("listing %d: failed to create address: %v", listing.ID, err)
	} else {
		listing.Address = &address
	}

	photoSet := models.PhotoSet{ListingID: listing.ID}
	photoSet.SetURLs(insertPhotos(input.Photos, listing.ID))
	if err := storage.DB.Create(&photoSet).Error; err != nil {
		log.Printf("listing %d: failed to create photo set: %v", listing.ID, err)
	} else {
		listing.PhotoSet = &photoSet
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&listing)
}

// GetListingBySlug is the public listing page: listing plus address, photo
// slots and owner profile in one denormalized payload.
func GetListingBySlug(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	var listing models.Listing
	if err := storage.DB.
		Preload("Address").
		Preload("PhotoSet").
		Preload("Owner").
		Where("slug = ?", slug).
		First(&listing).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&listing)
}

func GetMyListings(ctx iris.Context) {
	ownerID := ctx.Values().Get("ownerID").(uint)

	var listings []models.Listing
	if err := storage.DB.
		Preload("Address").
		Preload("PhotoSet").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(listings)
}

// UpdateListing edits the listing's own columns. The slug is immutable and
// writes are last-write-wins. Address and photos have their own replace
// endpoints.
func UpdateListing(ctx iris.Context) {
	listing := findOwnedListing(ctx)
	if listing == nil {
		return
	}

	var input UpdateListingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Amenities != nil {
		for _, amenity := range input.Amenities {
			if !slices.Contains(models.Amenities, amenity) {
				utils.CreateError(iris.StatusBadRequest, "Bad Request", "Unknown amenity: "+amenity, ctx)
				return
			}
		}
		amenitiesJSON, _ := json.Marshal(input.Amenities)
		listing.Amenities = amenitiesJSON
	}

	listing.Title = input.Title
	listing.Description = input.Description
	listing.Capacity = input.Capacity
	listing.AreaM2 = input.AreaM2
	listing.MonthlyPrice = input.MonthlyPrice
	if input.Currency != "" {
		listing.Currency = input.Currency
	}
	if input.AvailableFrom != "" {
		availableFrom, dateErr := time.Parse("2006-01-02", input.AvailableFrom)
		if dateErr != nil {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "availableFrom must be a YYYY-MM-DD date", ctx)
			return
		}
		listing.AvailableFrom = availableFrom
	}

	if err := storage.DB.Save(listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(listing)
}

// ReplaceAddress swaps the listing's address wholesale.
func ReplaceAddress(ctx iris.Context) {
	listing := findOwnedListing(ctx)
	if listing == nil {
		return
	}

	var input AddressInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if (input.Lat == nil) != (input.Lng == nil) {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "lat and lng must be provided together", ctx)
		return
	}

	storage.DB.Where("listing_id = ?", listing.ID).Delete(&models.Address{})

	address := models.Address{
		ListingID:      listing.ID,
		Street:         input.Street,
		City:           input.City,
		PostalCode:     input.PostalCode,
		CityCode:       input.CityCode,
		DepartmentCode: input.DepartmentCode,
		Lat:            input.Lat,
		Lng:            input.Lng,
	}
	if err := storage.DB.Create(&address).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(&address)
}

// ReplacePhotos swaps the listing's photo set wholesale (up to 5 slots).
func ReplacePhotos(ctx iris.Context) {
	listing := findOwnedListing(ctx)
	if listing == nil {
		return
	}

	var input PhotosInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var photoSet models.PhotoSet
	if err := storage.DB.Where("listing_id = ?", listing.ID).First(&photoSet).Error; err != nil {
		photoSet = models.PhotoSet{ListingID: listing.ID}
	}

	photoSet.SetURLs(insertPhotos(input.Photos, listing.ID))
	if err := storage.DB.Save(&photoSet).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(&photoSet)
}

// DeleteListing removes the listing together with its address and photo set.
// The nested deletes are best-effort; a leftover row only costs storage.
func DeleteListing(ctx iris.Context) {
	listing := findOwnedListing(ctx)
	if listing == nil {
		return
	}

	if err := storage.DB.Delete(listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := storage.DB.Where("listing_id = ?", listing.ID).Delete(&models.Address{}).Error; err != nil {
		log.Printf("listing %d: failed to delete address: %v", listing.ID, err)
	}
	if err := storage.DB.Where("listing_id = ?", listing.ID).Delete(&models.PhotoSet{}).Error; err != nil {
		log.Printf("listing %d: failed to delete photo set: %v", listing.ID, err)
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// findOwnedListing loads the {id} listing and checks it belongs to the
// requesting owner. Writes the error response itself and returns nil when
// the caller should stop.
func findOwnedListing(ctx iris.Context) *models.Listing {
	ownerID := ctx.Values().Get("ownerID").(uint)
	id, idErr := strconv.ParseUint(ctx.Params().Get("id"), 10, 32)
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return nil
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return nil
	}

	if listing.OwnerID != ownerID {
		utils.CreateForbidden(ctx)
		return nil
	}

	return &listing
}

// insertPhotos uploads base64 payloads and passes hosted URLs through,
// keeping at most the first 5 usable entries.
func insertPhotos(photos []string, listingID uint) []string {
	var urls []string
	for i, photo := range photos {
		if photo == "" {
			continue
		}
		if len(urls) == models.MaxPhotoSlots {
			break
		}
		if strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") {
			urls = append(urls, photo)
			continue
		}
		publicID := fmt.Sprintf("listing/%d/photo_%d_%d", listingID, time.Now().UnixMilli(), i)
		if url := storage.UploadBase64Image(photo, publicID); url != "" {
			urls = append(urls, url)
		} else {
			log.Printf("listing %d: failed to upload photo %d", listingID, i)
		}
	}
	return urls
}

type CreateListingInput struct {
	Title         string   `json:"title" validate:"required,max=256"`
	Description   string   `json:"description"`
	Capacity      int      `json:"capacity" validate:"required,gt=0"`
	AreaM2        *float32 `json:"areaM2" validate:"omitempty,gt=0"`
	Amenities     []string `json:"amenities"`
	AvailableFrom string   `json:"availableFrom" validate:"required"`
	MonthlyPrice  float64  `json:"monthlyPrice" validate:"required,gt=0"`
	Currency      string   `json:"currency" validate:"omitempty,len=3"`

	Street         string   `json:"street" validate:"required"`
	City           string   `json:"city" validate:"required"`
	PostalCode     string   `json:"postalCode"`
	CityCode       string   `json:"cityCode"`
	DepartmentCode string   `json:"departmentCode"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`

	Photos []string `json:"photos" validate:"max=5"`
}

type UpdateListingInput struct {
	Title         string   `json:"title" validate:"required,max=256"`
	Description   string   `json:"description"`
	Capacity      int      `json:"capacity" validate:"required,gt=0"`
	AreaM2        *float32 `json:"areaM2" validate:"omitempty,gt=0"`
	Amenities     []string `json:"amenities"`
	AvailableFrom string   `json:"availableFrom"`
	MonthlyPrice  float64  `json:"monthlyPrice" validate:"required,gt=0"`
	Currency      string   `json:"currency" validate:"omitempty,len=3"`
}

type AddressInput struct {
	Street         string   `json:"street" validate:"required"`
	City           string   `json:"city" validate:"required"`
	PostalCode     string   `json:"postalCode"`
	CityCode       string   `json:"cityCode"`
	DepartmentCode string   `json:"departmentCode"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
}

type PhotosInput struct {
	Photos []string `json:"photos" validate:"max=5"`
}
