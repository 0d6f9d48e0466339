package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/Gr4tig/SpinLiving-sub000/models"
	"github.com/Gr4tig/SpinLiving-sub000/storage"
	"github.com/Gr4tig/SpinLiving-sub000/utils"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildUserTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	os.Setenv("REFRESH_TOKEN_SECRET", "testsecret2")
	os.Setenv("EMAIL_TOKEN_SECRET", "testsecret3")
	os.Setenv("CLIENT_URL", "https://spinliving.example.com")

	// Token creation only fire-and-forgets into redis; an unreachable
	// client is fine for these tests.
	if storage.Redis == nil {
		storage.Redis = redis.NewClient(&redis.Options{Addr: "localhost:1"})
	}

	app := iris.New()
	app.Validator = validator.New()

	user := app.Party("/api/user")
	{
		user.Post("/register", Register)
		user.Post("/login", Login)
		user.Get("/verify-email", VerifyEmail)
	}
	app.Build()
	return app
}

func TestRegisterThenLogin(t *testing.T) {
	setupTestDB(t)
	app := buildUserTestApp()

	body := `{"email": "New.User@Example.com", "password": "supersecret1"}`
	resp := postJSON(app, http.MethodPost, "/api/user/register", body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var registered map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &registered))
	assert.Equal(t, "new.user@example.com", registered["email"])
	assert.NotEmpty(t, registered["accessToken"])
	assert.Equal(t, false, registered["emailVerified"])

	// Email lookup is case-insensitive via lowercasing at both ends.
	loginResp := postJSON(app, http.MethodPost, "/api/user/login", body)
	assert.Equal(t, http.StatusOK, loginResp.Code, loginResp.Body.String())

	badResp := postJSON(app, http.MethodPost, "/api/user/login", `{"email": "new.user@example.com", "password": "wrongpassword"}`)
	assert.Equal(t, http.StatusUnauthorized, badResp.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupTestDB(t)
	app := buildUserTestApp()

	body := `{"email": "dup@example.com", "password": "supersecret1"}`
	require.Equal(t, http.StatusOK, postJSON(app, http.MethodPost, "/api/user/register", body).Code)
	assert.Equal(t, http.StatusConflict, postJSON(app, http.MethodPost, "/api/user/register", body).Code)
}

func TestVerifyEmailCallback(t *testing.T) {
	db := setupTestDB(t)
	app := buildUserTestApp()

	user := models.User{Email: "verify@example.com"}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.CreateEmailVerificationToken(user.ID, user.Email)
	require.NoError(t, err)

	resp := postJSON(app, http.MethodGet, "/api/user/verify-email?token="+token, "")
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "https://spinliving.example.com/verification-success", resp.Header().Get("Location"))

	var verified models.User
	require.NoError(t, db.First(&verified, user.ID).Error)
	require.NotNil(t, verified.EmailVerified)
	assert.True(t, *verified.EmailVerified)
}

func TestVerifyEmailBadTokenRedirectsToFailure(t *testing.T) {
	setupTestDB(t)
	app := buildUserTestApp()

	resp := postJSON(app, http.MethodGet, "/api/user/verify-email?token=garbage", "")
	require.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "https://spinliving.example.com/verification-failure", resp.Header().Get("Location"))
}
