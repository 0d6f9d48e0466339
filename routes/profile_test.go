package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Gr4tig/SpinLiving-sub000/models"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProfileTestApp(userID *uint) *iris.Application {
	app := iris.New()
	app.Validator = validator.New()

	injectUser := func(ctx iris.Context) {
		ctx.Values().Set("userID", *userID)
		ctx.Next()
	}

	profile := app.Party("/api/profile")
	{
		profile.Get("/role", injectUser, GetMyRole)
		profile.Get("/me", injectUser, GetMyProfile)
		profile.Post("/owner", injectUser, CreateOwnerProfile)
		profile.Post("/tenant", injectUser, CreateTenantProfile)
	}
	app.Build()
	return app
}

func TestResolveRole(t *testing.T) {
	db := setupTestDB(t)

	ownerUser := models.User{Email: "owner@example.com"}
	require.NoError(t, db.Create(&ownerUser).Error)
	owner := models.Owner{UserID: ownerUser.ID, FirstName: "Paul"}
	require.NoError(t, db.Create(&owner).Error)

	tenantUser := models.User{Email: "tenant@example.com"}
	require.NoError(t, db.Create(&tenantUser).Error)
	tenant := models.Tenant{UserID: tenantUser.ID, FirstName: "Léa"}
	require.NoError(t, db.Create(&tenant).Error)

	bareUser := models.User{Email: "bare@example.com"}
	require.NoError(t, db.Create(&bareUser).Error)

	role, profileID := resolveRole(ownerUser.ID)
	assert.Equal(t, RoleOwner, role)
	assert.Equal(t, owner.ID, profileID)

	role, profileID = resolveRole(tenantUser.ID)
	assert.Equal(t, RoleTenant, role)
	assert.Equal(t, tenant.ID, profileID)

	role, profileID = resolveRole(bareUser.ID)
	assert.Equal(t, RoleNone, role)
	assert.Equal(t, uint(0), profileID)
}

func TestProfilesAreMutuallyExclusive(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Email: "both@example.com"}
	require.NoError(t, db.Create(&user).Error)
	app := buildProfileTestApp(&user.ID)

	ownerBody := `{"firstName": "Paul", "lastName": "Durand"}`
	resp := postJSON(app, http.MethodPost, "/api/profile/owner", ownerBody)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// The same account cannot also get a tenant profile.
	tenantBody := `{"firstName": "Paul", "lastName": "Durand", "targetCity": "Lille"}`
	conflictResp := postJSON(app, http.MethodPost, "/api/profile/tenant", tenantBody)
	assert.Equal(t, http.StatusConflict, conflictResp.Code)

	// Nor a second owner profile.
	dupResp := postJSON(app, http.MethodPost, "/api/profile/owner", ownerBody)
	assert.Equal(t, http.StatusConflict, dupResp.Code)
}

func TestGetMyRoleEndpoint(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Email: "pre-onboarding@example.com"}
	require.NoError(t, db.Create(&user).Error)
	app := buildProfileTestApp(&user.ID)

	resp := postJSON(app, http.MethodGet, "/api/profile/role", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, RoleNone, payload["role"])

	tenantBody := `{"firstName": "Léa", "lastName": "Bernard", "targetCity": "Nantes", "objective": "Colocation proche fac"}`
	require.Equal(t, http.StatusCreated, postJSON(app, http.MethodPost, "/api/profile/tenant", tenantBody).Code)

	resp = postJSON(app, http.MethodGet, "/api/profile/role", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, RoleTenant, payload["role"])
}
