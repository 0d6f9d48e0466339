package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Gr4tig/SpinLiving-sub000/models"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestTenant(t *testing.T, db *gorm.DB, email string) *models.Tenant {
	t.Helper()
	user := models.User{Email: email}
	require.NoError(t, db.Create(&user).Error)
	tenant := models.Tenant{UserID: user.ID, FirstName: "Léa", LastName: "Bernard", TargetCity: "Nantes"}
	require.NoError(t, db.Create(&tenant).Error)
	return &tenant
}

func createTestListing(t *testing.T, db *gorm.DB, ownerID uint, slug string) *models.Listing {
	t.Helper()
	listing := models.Listing{
		Slug:          slug,
		OwnerID:       ownerID,
		Title:         "Chambre " + slug,
		Capacity:      2,
		AvailableFrom: time.Now().AddDate(0, -1, 0),
		MonthlyPrice:  450,
		Currency:      "EUR",
	}
	require.NoError(t, db.Create(&listing).Error)
	return &listing
}

// buildContactTestApp stubs the auth middleware chain: the caller flips the
// acting tenant/owner through the two pointers.
func buildContactTestApp(tenantID, ownerID *uint) *iris.Application {
	app := iris.New()
	app.Validator = validator.New()

	injectTenant := func(ctx iris.Context) {
		ctx.Values().Set("tenantID", *tenantID)
		ctx.Next()
	}
	injectOwner := func(ctx iris.Context) {
		ctx.Values().Set("ownerID", *ownerID)
		ctx.Next()
	}

	contact := app.Party("/api/contact")
	{
		contact.Post("/", injectTenant, CreateContactRequest)
		contact.Get("/sent", injectTenant, ListMyContactRequests)
		contact.Get("/received", injectOwner, ListReceivedContactRequests)
		contact.Patch("/{id:uint}/accept", injectOwner, AcceptContactRequest)
		contact.Patch("/{id:uint}/reject", injectOwner, RejectContactRequest)
	}
	app.Build()
	return app
}

func TestContactRequestLifecycle(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, "owner@example.com")
	tenant := createTestTenant(t, db, "tenant@example.com")
	listing := createTestListing(t, db, owner.ID, "lifecycle")
	app := buildContactTestApp(&tenant.ID, &owner.ID)

	body := fmt.Sprintf(`{"listingID": %d, "message": "Bonjour, la chambre est-elle libre ?", "desiredArrival": "2026-10-01"}`, listing.ID)
	resp := postJSON(app, http.MethodPost, "/api/contact", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, models.RequestPending, created["status"])
	requestID := uint(created["ID"].(float64))

	// Duplicate request for the same (tenant, listing) pair.
	dupResp := postJSON(app, http.MethodPost, "/api/contact", body)
	assert.Equal(t, http.StatusConflict, dupResp.Code)

	// Owner accepts.
	acceptResp := postJSON(app, http.MethodPatch, fmt.Sprintf("/api/contact/%d/accept", requestID), "")
	require.Equal(t, http.StatusOK, acceptResp.Code, acceptResp.Body.String())

	var accepted map[string]interface{}
	require.NoError(t, json.Unmarshal(acceptResp.Body.Bytes(), &accepted))
	assert.Equal(t, models.RequestAccepted, accepted["status"])
	assert.NotNil(t, accepted["respondedAt"])
}

func TestContactRequestTerminalStatesNeverRevert(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, "owner@example.com")
	tenant := createTestTenant(t, db, "tenant@example.com")
	listing := createTestListing(t, db, owner.ID, "terminal")
	app := buildContactTestApp(&tenant.ID, &owner.ID)

	body := fmt.Sprintf(`{"listingID": %d}`, listing.ID)
	resp := postJSON(app, http.MethodPost, "/api/contact", body)
	require.Equal(t, http.StatusCreated, resp.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	requestID := uint(created["ID"].(float64))

	require.Equal(t, http.StatusOK,
		postJSON(app, http.MethodPatch, fmt.Sprintf("/api/contact/%d/accept", requestID), "").Code)

	// Neither a reject nor a second accept may touch an answered request.
	assert.Equal(t, http.StatusConflict,
		postJSON(app, http.MethodPatch, fmt.Sprintf("/api/contact/%d/reject", requestID), "").Code)
	assert.Equal(t, http.StatusConflict,
		postJSON(app, http.MethodPatch, fmt.Sprintf("/api/contact/%d/accept", requestID), "").Code)

	var request models.ContactRequest
	require.NoError(t, db.First(&request, requestID).Error)
	assert.Equal(t, models.RequestAccepted, request.Status)
}

func TestContactRequestTransitionRequiresListingOwner(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, "owner@example.com")
	intruder := createTestOwner(t, db, "intruder@example.com")
	tenant := createTestTenant(t, db, "tenant@example.com")
	listing := createTestListing(t, db, owner.ID, "guarded")

	actingOwner := intruder.ID
	app := buildContactTestApp(&tenant.ID, &actingOwner)

	body := fmt.Sprintf(`{"listingID": %d}`, listing.ID)
	resp := postJSON(app, http.MethodPost, "/api/contact", body)
	require.Equal(t, http.StatusCreated, resp.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	requestID := uint(created["ID"].(float64))

	// A different owner cannot answer the request.
	assert.Equal(t, http.StatusForbidden,
		postJSON(app, http.MethodPatch, fmt.Sprintf("/api/contact/%d/accept", requestID), "").Code)

	var request models.ContactRequest
	require.NoError(t, db.First(&request, requestID).Error)
	assert.Equal(t, models.RequestPending, request.Status)

	// The real owner can.
	actingOwner = owner.ID
	assert.Equal(t, http.StatusOK,
		postJSON(app, http.MethodPatch, fmt.Sprintf("/api/contact/%d/accept", requestID), "").Code)
}

func TestContactRequestUnknownListing(t *testing.T) {
	db := setupTestDB(t)
	_ = createTestOwner(t, db, "owner@example.com")
	tenant := createTestTenant(t, db, "tenant@example.com")
	owner2ID := uint(0)
	app := buildContactTestApp(&tenant.ID, &owner2ID)

	resp := postJSON(app, http.MethodPost, "/api/contact", `{"listingID": 999}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReceivedRequestsScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, "owner@example.com")
	other := createTestOwner(t, db, "other@example.com")
	tenant := createTestTenant(t, db, "tenant@example.com")

	mine := createTestListing(t, db, owner.ID, "mine")
	theirs := createTestListing(t, db, other.ID, "theirs")

	require.NoError(t, db.Create(&models.ContactRequest{TenantID: tenant.ID, ListingID: mine.ID, Status: models.RequestPending}).Error)
	require.NoError(t, db.Create(&models.ContactRequest{TenantID: tenant.ID, ListingID: theirs.ID, Status: models.RequestPending}).Error)

	app := buildContactTestApp(&tenant.ID, &owner.ID)
	resp := postJSON(app, http.MethodGet, "/api/contact/received", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var requests []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &requests))
	require.Len(t, requests, 1)
	assert.Equal(t, float64(mine.ID), requests[0]["listingID"])
}
