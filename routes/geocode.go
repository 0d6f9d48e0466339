package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Gr4tig/SpinLiving-sub000/utils"
	"github.com/kataras/iris/v12"
)

const communesAPI = "https://geo.api.gouv.fr/communes"

type City struct {
	Name           string   `json:"name"`
	Code           string   `json:"code"` // INSEE
	DepartmentCode string   `json:"departmentCode"`
	PostalCodes    []string `json:"postalCodes"`
	Population     int      `json:"population"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
}

type communeRes struct {
	Nom             string   `json:"nom"`
	Code            string   `json:"code"`
	CodeDepartement string   `json:"codeDepartement"`
	CodesPostaux    []string `json:"codesPostaux"`
	Population      int      `json:"population"`
	Centre          struct {
		Coordinates []float64 `json:"coordinates"` // [lng, lat]
	} `json:"centre"`
}

func fetchCommunes(query url.Values) ([]City, error) {
	query.Set("fields", "nom,code,codeDepartement,codesPostaux,population,centre")
	query.Set("boost", "population")
	query.Set("limit", "10")

	res, err := http.Get(communesAPI + "?" + query.Encode())
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("communes api status %d", res.StatusCode)
	}

	var parsed []communeRes
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	cities := make([]City, 0, len(parsed))
	for _, c := range parsed {
		city := City{
			Name:           c.Nom,
			Code:           c.Code,
			DepartmentCode: c.CodeDepartement,
			PostalCodes:    c.CodesPostaux,
			Population:     c.Population,
		}
		if len(c.Centre.Coordinates) == 2 {
			city.Lng = c.Centre.Coordinates[0]
			city.Lat = c.Centre.Coordinates[1]
		}
		cities = append(cities, city)
	}
	return cities, nil
}

// SearchCities proxies the public communes API: lookup by name for the
// autocomplete, or by INSEE code for an exact resolve. The centre
// coordinates double as the reference point of a radius search.
func SearchCities(ctx iris.Context) {
	name := strings.TrimSpace(ctx.URLParam("name"))
	code := strings.TrimSpace(ctx.URLParam("code"))

	if name == "" && code == "" {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "name or code is required", ctx)
		return
	}

	query := url.Values{}
	if code != "" {
		query.Set("code", code)
	} else {
		query.Set("nom", name)
	}

	cities, err := fetchCommunes(query)
	if err != nil {
		ctx.StatusCode(iris.StatusBadGateway)
		ctx.JSON(iris.Map{"message": "City lookup failed"})
		return
	}

	ctx.JSON(cities)
}
