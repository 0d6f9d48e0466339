package main

import (
	"log"
	"os"

	"github.com/Gr4tig/SpinLiving-sub000/routes"
	"github.com/Gr4tig/SpinLiving-sub000/storage"
	"github.com/Gr4tig/SpinLiving-sub000/utils"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	storage.InitializeDB()
	storage.InitializePhotoStorage()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}

		return tokenInput.RefreshToken
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Get("/verify-email", routes.VerifyEmail)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		user.Post("/recaptcha", routes.VerifyRecaptcha)
		user.Patch("/pushtoken", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.AlterPushToken)
		user.Patch("/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.AllowsNotifications)
	}

	profile := app.Party("/api/profile", accessTokenVerifierMiddleware)
	{
		profile.Get("/role", utils.UserIDFromTokenMiddleware, routes.GetMyRole)
		profile.Get("/me", utils.UserIDFromTokenMiddleware, routes.GetMyProfile)
		profile.Post("/owner", utils.UserIDFromTokenMiddleware, routes.CreateOwnerProfile)
		profile.Post("/tenant", utils.UserIDFromTokenMiddleware, routes.CreateTenantProfile)
		profile.Put("/owner", utils.OwnerOnlyMiddleware, routes.UpdateOwnerProfile)
		profile.Put("/tenant", utils.TenantOnlyMiddleware, routes.UpdateTenantProfile)
	}

	listing := app.Party("/api/listing")
	{
		listing.Get("/search", routes.SearchListings)
		listing.Get("/{slug:string}", routes.GetListingBySlug)
		listing.Get("/", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.GetMyListings)
		listing.Post("/", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.CreateListing)
		listing.Put("/{id:uint}", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.UpdateListing)
		listing.Put("/{id:uint}/address", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.ReplaceAddress)
		listing.Put("/{id:uint}/photos", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.ReplacePhotos)
		listing.Delete("/{id:uint}", accessTokenVerifierMiddleware, utils.OwnerOnlyMiddleware, routes.DeleteListing)
	}

	contact := app.Party("/api/contact", accessTokenVerifierMiddleware)
	{
		contact.Post("/", utils.TenantOnlyMiddleware, routes.CreateContactRequest)
		contact.Get("/sent", utils.TenantOnlyMiddleware, routes.ListMyContactRequests)
		contact.Get("/received", utils.OwnerOnlyMiddleware, routes.ListReceivedContactRequests)
		contact.Patch("/{id:uint}/accept", utils.OwnerOnlyMiddleware, routes.AcceptContactRequest)
		contact.Patch("/{id:uint}/reject", utils.OwnerOnlyMiddleware, routes.RejectContactRequest)
	}

	geo := app.Party("/api/geo")
	{
		geo.Get("/cities", routes.SearchCities)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("Spin Living server listening on :%s", port)
	app.Listen(":" + port)
}
