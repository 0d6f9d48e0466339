package routes

import (
	"strconv"
	"strings"
	"time"

	"github.com/Gr4tig/SpinLiving-sub000/services"
	"github.com/Gr4tig/SpinLiving-sub000/storage"
	"github.com/Gr4tig/SpinLiving-sub000/utils"
	"github.com/kataras/iris/v12"
)

// SearchListings handles listing search with stacked optional filters:
// city (name or INSEE code), radius around a reference point, price ceiling,
// occupant count, minimum availability date and required amenities.
func SearchListings(ctx iris.Context) {
	var filters services.SearchFilters

	filters.City = strings.TrimSpace(ctx.URLParam("city"))
	filters.CityCode = strings.TrimSpace(ctx.URLParam("cityCode"))

	if latStr := ctx.URLParam("lat"); latStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "lat must be a number", ctx)
			return
		}
		filters.Lat = &lat
	}
	if lngStr := ctx.URLParam("lng"); lngStr != "" {
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "lng must be a number", ctx)
			return
		}
		filters.Lng = &lng
	}
	if radiusStr := ctx.URLParam("radiusKm"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius <= 0 {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "radiusKm must be a positive number", ctx)
			return
		}
		filters.RadiusKm = &radius
	}

	// lat/lng/radius are only meaningful as a trio.
	if filters.Lat == nil || filters.Lng == nil || filters.RadiusKm == nil {
		filters.Lat, filters.Lng, filters.RadiusKm = nil, nil, nil
	}

	if maxPriceStr := ctx.URLParam("maxPrice"); maxPriceStr != "" {
		maxPrice, err := strconv.ParseFloat(maxPriceStr, 64)
		if err != nil || maxPrice <= 0 {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "maxPrice must be a positive number", ctx)
			return
		}
		filters.MaxPrice = &maxPrice
	}
	if capacityStr := ctx.URLParam("nombreColoc"); capacityStr != "" {
		capacity, err := strconv.Atoi(capacityStr)
		if err != nil || capacity <= 0 {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "nombreColoc must be a positive integer", ctx)
			return
		}
		filters.Capacity = &capacity
	}
	if dateStr := ctx.URLParam("dateMin"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "dateMin must be a YYYY-MM-DD date", ctx)
			return
		}
		filters.AvailableFrom = &date
	}
	if amenitiesStr := strings.TrimSpace(ctx.URLParam("amenities")); amenitiesStr != "" {
		for _, amenity := range strings.Split(amenitiesStr, ",") {
			if amenity = strings.TrimSpace(amenity); amenity != "" {
				filters.Amenities = append(filters.Amenities, amenity)
			}
		}
	}

	results, err := services.SearchListings(storage.DB, filters)
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to search listings"})
		return
	}

	ctx.JSON(results)
}
