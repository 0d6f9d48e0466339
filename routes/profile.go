package routes

import (
	"fmt"
	"time"

	"github.com/Gr4tig/SpinLiving-sub000/models"
	"github.com/Gr4tig/SpinLiving-sub000/storage"
	"github.com/Gr4tig/SpinLiving-sub000/utils"
	"github.com/kataras/iris/v12"
)

// Role names returned by GetMyRole. "none" marks the pre-onboarding state;
// the client redirects such users to profile completion.
const (
	RoleOwner  = "owner"
	RoleTenant = "tenant"
	RoleNone   = "none"
)

// resolveRole checks the owner table first, then the tenant table. Well
// formed data has a match in at most one of them.
func resolveRole(userID uint) (role string, profileID uint) {
	var owner models.Owner
	if err := storage.DB.Where("user_id = ?", userID).First(&owner).Error; err == nil {
		return RoleOwner, owner.ID
	}

	var tenant models.Tenant
	if err := storage.DB.Where("user_id = ?", userID).First(&tenant).Error; err == nil {
		return RoleTenant, tenant.ID
	}

	return RoleNone, 0
}

func GetMyRole(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	role, profileID := resolveRole(userID)
	ctx.JSON(iris.Map{"role": role, "profileID": profileID})
}

func GetMyProfile(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	role, _ := resolveRole(userID)
	switch role {
	case RoleOwner:
		var owner models.Owner
		storage.DB.Where("user_id = ?", userID).First(&owner)
		ctx.JSON(iris.Map{"role": role, "profile": owner})
	case RoleTenant:
		var tenant models.Tenant
		storage.DB.Where("user_id = ?", userID).First(&tenant)
		ctx.JSON(iris.Map{"role": role, "profile": tenant})
	default:
		ctx.JSON(iris.Map{"role": RoleNone, "profile": nil})
	}
}

func CreateOwnerProfile(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input OwnerProfileInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if role, _ := resolveRole(userID); role != RoleNone {
		utils.CreateError(iris.StatusConflict, "Conflict", "Account already has a profile.", ctx)
		return
	}

	owner := models.Owner{
		UserID:    userID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		PhotoURL:  uploadProfilePhoto(input.Photo, userID),
	}

	if err := storage.DB.Create(&owner).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(owner)
}

func CreateTenantProfile(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input TenantProfileInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if role, _ := resolveRole(userID); role != RoleNone {
		utils.CreateError(iris.StatusConflict, "Conflict", "Account already has a profile.", ctx)
		return
	}

	tenant := models.Tenant{
		UserID:     userID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Phone:      input.Phone,
		PhotoURL:   uploadProfilePhoto(input.Photo, userID),
		TargetCity: input.TargetCity,
		Objective:  input.Objective,
	}

	if err := storage.DB.Create(&tenant).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(tenant)
}

func UpdateOwnerProfile(ctx iris.Context) {
	ownerID := ctx.Values().Get("ownerID").(uint)

	var input OwnerProfileInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var owner models.Owner
	if err := storage.DB.First(&owner, ownerID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	owner.FirstName = input.FirstName
	owner.LastName = input.LastName
	owner.Phone = input.Phone
	if input.Photo != "" {
		owner.PhotoURL = uploadProfilePhoto(input.Photo, owner.UserID)
	}

	if err := storage.DB.Save(&owner).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(owner)
}

func UpdateTenantProfile(ctx iris.Context) {
	tenantID := ctx.Values().Get("tenantID").(uint)

	var input TenantProfileInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var tenant models.Tenant
	if err := storage.DB.First(&tenant, tenantID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	tenant.FirstName = input.FirstName
	tenant.LastName = input.LastName
	tenant.Phone = input.Phone
	tenant.TargetCity = input.TargetCity
	tenant.Objective = input.Objective
	if input.Photo != "" {
		tenant.PhotoURL = uploadProfilePhoto(input.Photo, tenant.UserID)
	}

	if err := storage.DB.Save(&tenant).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(tenant)
}

// uploadProfilePhoto stores a base64 payload and returns its URL. Hosted
// URLs pass through untouched; an empty input stays empty.
func uploadProfilePhoto(photo string, userID uint) string {
	if photo == "" {
		return ""
	}
	if len(photo) > 4 && photo[:4] == "http" {
		return photo
	}
	publicID := fmt.Sprintf("profile/%d/%d", userID, time.Now().UnixMilli())
	return storage.UploadBase64Image(photo, publicID)
}

type OwnerProfileInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Phone     string `json:"phone"`
	Photo     string `json:"photo"`
}

type TenantProfileInput struct {
	FirstName  string `json:"firstName" validate:"required,max=256"`
	LastName   string `json:"lastName" validate:"required,max=256"`
	Phone      string `json:"phone"`
	Photo      string `json:"photo"`
	TargetCity string `json:"targetCity"`
	Objective  string `json:"objective" validate:"max=500"`
}
