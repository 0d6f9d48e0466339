package utils

import (
	"github.com/Gr4tig/SpinLiving-sub000/models"
	"github.com/Gr4tig/SpinLiving-sub000/storage"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// UserIDFromTokenMiddleware extracts the user ID from the JWT and stores it
// in the request context for downstream handlers.
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// OwnerOnlyMiddleware ensures the requester has an owner profile and exposes
// its ID as "ownerID".
func OwnerOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)

	var owner models.Owner
	if err := storage.DB.Where("user_id = ?", claims.ID).First(&owner).Error; err != nil {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"error": "forbidden", "message": "owner profile required"})
		return
	}

	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("ownerID", owner.ID)
	ctx.Next()
}

// TenantOnlyMiddleware ensures the requester has a tenant profile and exposes
// its ID as "tenantID".
func TenantOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)

	var tenant models.Tenant
	if err := storage.DB.Where("user_id = ?", claims.ID).First(&tenant).Error; err != nil {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"error": "forbidden", "message": "tenant profile required"})
		return
	}

	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("tenantID", tenant.ID)
	ctx.Next()
}
