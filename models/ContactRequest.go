package models

import (
	"time"

	"gorm.io/gorm"
)

// Contact request statuses. A request starts pending and moves exactly once
// to accepted or rejected.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// ContactRequest is a tenant's inquiry about a listing. The composite unique
// index keeps a tenant to one request per listing at the data layer.
type ContactRequest struct {
	gorm.Model
	TenantID  uint    `json:"tenantID" gorm:"not null;uniqueIndex:idx_tenant_listing"`
	Tenant    Tenant  `json:"tenant" gorm:"foreignKey:TenantID;references:ID"`
	ListingID uint    `json:"listingID" gorm:"not null;uniqueIndex:idx_tenant_listing"`
	Listing   Listing `json:"listing" gorm:"foreignKey:ListingID;references:ID"`

	Message        string     `json:"message" gorm:"size:500"`
	DesiredArrival *time.Time `json:"desiredArrival"`
	Status         string     `json:"status" gorm:"size:16;index;default:'pending'"`
	RespondedAt    *time.Time `json:"respondedAt"`
}
