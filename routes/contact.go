package routes

import (
	"log"
	"strconv"
	"time"

	"github.com/Gr4tig/SpinLiving-sub000/models"
	"github.com/Gr4tig/SpinLiving-sub000/services"
	"github.com/Gr4tig/SpinLiving-sub000/storage"
	"github.com/Gr4tig/SpinLiving-sub000/utils"
	"github.com/kataras/iris/v12"
)

// CreateContactRequest lets a tenant ask to be put in touch about a listing.
// One request per (tenant, listing) pair: checked here for a friendly error,
// enforced by the composite unique index for the race nobody wins.
func CreateContactRequest(ctx iris.Context) {
	tenantID := ctx.Values().Get("tenantID").(uint)

	var input CreateContactRequestInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, input.ListingID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var existing int64
	storage.DB.Model(&models.ContactRequest{}).
		Where("tenant_id = ? AND listing_id = ?", tenantID, listing.ID).
		Count(&existing)
	if existing > 0 {
		utils.CreateError(iris.StatusConflict, "Conflict", "You already contacted this listing.", ctx)
		return
	}

	var desiredArrival *time.Time
	if input.DesiredArrival != "" {
		parsed, dateErr := time.Parse("2006-01-02", input.DesiredArrival)
		if dateErr != nil {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "desiredArrival must be a YYYY-MM-DD date", ctx)
			return
		}
		desiredArrival = &parsed
	}

	request := models.ContactRequest{
		TenantID:       tenantID,
		ListingID:      listing.ID,
		Message:        input.Message,
		DesiredArrival: desiredArrival,
		Status:         models.RequestPending,
	}

	if err := storage.DB.Create(&request).Error; err != nil {
		// The unique index catches the duplicate the pre-check raced against.
		utils.CreateError(iris.StatusConflict, "Conflict", "You already contacted this listing.", ctx)
		return
	}

	go notifyOwnerOfRequest(&request, &listing)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&request)
}

// ListMyContactRequests is the tenant's view of their sent requests.
func ListMyContactRequests(ctx iris.Context) {
	tenantID := ctx.Values().Get("tenantID").(uint)

	var requests []models.ContactRequest
	if err := storage.DB.
		Preload("Listing").
		Preload("Listing.Address").
		Preload("Listing.PhotoSet").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(requests)
}

// ListReceivedContactRequests is the owner's inbox across all their listings.
func ListReceivedContactRequests(ctx iris.Context) {
	ownerID := ctx.Values().Get("ownerID").(uint)

	var requests []models.ContactRequest
	if err := storage.DB.
		Preload("Tenant").
		Preload("Listing").
		Joins("JOIN listings ON listings.id = contact_requests.listing_id").
		Where("listings.owner_id = ?", ownerID).
		Order("contact_requests.created_at DESC").
		Find(&requests).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(requests)
}

func AcceptContactRequest(ctx iris.Context) {
	transitionContactRequest(ctx, models.RequestAccepted)
}

func RejectContactRequest(ctx iris.Context) {
	transitionContactRequest(ctx, models.RequestRejected)
}

// transitionContactRequest moves a request out of pending with one
// conditional update: the status is written only when the request is still
// pending AND the referenced listing belongs to the caller. Terminal states
// can never be overwritten or reverted.
func transitionContactRequest(ctx iris.Context, target string) {
	ownerID := ctx.Values().Get("ownerID").(uint)
	id, idErr := strconv.ParseUint(ctx.Params().Get("id"), 10, 32)
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	now := time.Now()
	result := storage.DB.Model(&models.ContactRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Where("EXISTS (SELECT 1 FROM listings WHERE listings.id = contact_requests.listing_id AND listings.owner_id = ?)", ownerID).
		Updates(map[string]interface{}{
			"status":       target,
			"responded_at": &now,
		})

	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if result.RowsAffected == 0 {
		// Either not ours, already answered, or gone. Disambiguate for the
		// response without weakening the guarded update above.
		var request models.ContactRequest
		if err := storage.DB.First(&request, id).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		if request.Status != models.RequestPending {
			utils.CreateError(iris.StatusConflict, "Conflict", "Request already answered.", ctx)
			return
		}
		utils.CreateForbidden(ctx)
		return
	}

	var request models.ContactRequest
	if err := storage.DB.Preload("Tenant").Preload("Listing").First(&request, id).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	go notifyTenantOfAnswer(&request, target)

	ctx.JSON(&request)
}

func notifyOwnerOfRequest(request *models.ContactRequest, listing *models.Listing) {
	var owner models.Owner
	if err := storage.DB.First(&owner, listing.OwnerID).Error; err != nil {
		log.Printf("contact request %d: owner %d not found: %v", request.ID, listing.OwnerID, err)
		return
	}

	var tenant models.Tenant
	tenantName := "Un locataire"
	if err := storage.DB.First(&tenant, request.TenantID).Error; err == nil {
		tenantName = tenant.FirstName + " " + tenant.LastName
	}

	ns := services.NewNotificationService()
	ns.SendContactRequestNotificationToOwner(request.ID, listing.ID, owner.UserID, tenantName, listing.Title)
}

func notifyTenantOfAnswer(request *models.ContactRequest, target string) {
	ns := services.NewNotificationService()
	if target == models.RequestAccepted {
		ns.SendRequestAcceptedNotificationToTenant(request.ID, request.ListingID, request.Tenant.UserID, request.Listing.Title)
	} else {
		ns.SendRequestRejectedNotificationToTenant(request.ID, request.ListingID, request.Tenant.UserID, request.Listing.Title)
	}
}

type CreateContactRequestInput struct {
	ListingID      uint   `json:"listingID" validate:"required"`
	Message        string `json:"message" validate:"max=500"`
	DesiredArrival string `json:"desiredArrival"`
}
