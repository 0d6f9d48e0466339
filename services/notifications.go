package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/Gr4tig/SpinLiving-sub000/models"
	"github.com/Gr4tig/SpinLiving-sub000/storage"
	"github.com/Gr4tig/SpinLiving-sub000/utils"
)

// NotificationService handles all push notification logic
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData is the data payload attached to a push message for
// client-side deep linking.
type NotificationData struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	ListingID string `json:"listingId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	Screen    string `json:"screen"`
	Params    string `json:"params"`
}

// getUserPushTokens retrieves all push tokens for a user
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

// SendNotificationToUser sends a notification to every registered token of a
// user, returning the last delivery error if any.
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data NotificationData) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("Failed to get push tokens for user %d: %v", userID, err)
		return err
	}

	dataMap := map[string]string{
		"type":      data.Type,
		"id":        data.ID,
		"listingId": data.ListingID,
		"userId":    data.UserID,
		"screen":    data.Screen,
		"params":    data.Params,
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, dataMap); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token, err)
			lastError = err
		}
	}

	return lastError
}

// SendContactRequestNotificationToOwner notifies the owner when a tenant
// sends a contact request for one of their listings.
func (ns *NotificationService) SendContactRequestNotificationToOwner(requestID, listingID, ownerUserID uint, tenantName, listingTitle string) error {
	title := "Nouvelle demande de contact"
	body := fmt.Sprintf("%s souhaite vous contacter pour %s", tenantName, listingTitle)

	params := fmt.Sprintf(`{"requestId": %d, "listingId": %d}`, requestID, listingID)

	data := NotificationData{
		Type:      "contact_request_created",
		ID:        fmt.Sprintf("%d", requestID),
		ListingID: fmt.Sprintf("%d", listingID),
		Screen:    "OwnerRequests",
		Params:    params,
	}

	err := ns.SendNotificationToUser(ownerUserID, title, body, data)
	if err != nil {
		log.Printf("Failed to send contact request notification: %v", err)
	}
	return err
}

// SendRequestAcceptedNotificationToTenant notifies the tenant when the owner
// accepts their request.
func (ns *NotificationService) SendRequestAcceptedNotificationToTenant(requestID, listingID, tenantUserID uint, listingTitle string) error {
	title := "Demande acceptée !"
	body := fmt.Sprintf("Votre demande pour %s a été acceptée", listingTitle)

	params := fmt.Sprintf(`{"requestId": %d, "listingId": %d}`, requestID, listingID)

	data := NotificationData{
		Type:      "contact_request_accepted",
		ID:        fmt.Sprintf("%d", requestID),
		ListingID: fmt.Sprintf("%d", listingID),
		Screen:    "TenantRequests",
		Params:    params,
	}

	err := ns.SendNotificationToUser(tenantUserID, title, body, data)
	if err != nil {
		log.Printf("Failed to send acceptance notification: %v", err)
	}
	return err
}

// SendRequestRejectedNotificationToTenant notifies the tenant when the owner
// rejects their request.
func (ns *NotificationService) SendRequestRejectedNotificationToTenant(requestID, listingID, tenantUserID uint, listingTitle string) error {
	title := "Demande refusée"
	body := fmt.Sprintf("Votre demande pour %s a été refusée", listingTitle)

	params := fmt.Sprintf(`{"requestId": %d, "listingId": %d}`, requestID, listingID)

	data := NotificationData{
		Type:      "contact_request_rejected",
		ID:        fmt.Sprintf("%d", requestID),
		ListingID: fmt.Sprintf("%d", listingID),
		Screen:    "TenantRequests",
		Params:    params,
	}

	err := ns.SendNotificationToUser(tenantUserID, title, body, data)
	if err != nil {
		log.Printf("Failed to send rejection notification: %v", err)
	}
	return err
}
