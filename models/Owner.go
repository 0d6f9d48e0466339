package models

import "gorm.io/gorm"

// Owner is the profile of an account that publishes listings. An account has
// a row in at most one of the Owner and Tenant tables; which table matches
// decides the role.
type Owner struct {
	gorm.Model
	UserID    uint   `json:"userID" gorm:"uniqueIndex;not null"`
	User      User   `json:"user" gorm:"foreignKey:UserID;references:ID"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	PhotoURL  string `json:"photoURL"`

	Listings []Listing `json:"listings,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
}
