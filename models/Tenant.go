package models

import "gorm.io/gorm"

// Tenant is the profile of an account that searches listings and sends
// contact requests.
type Tenant struct {
	gorm.Model
	UserID    uint   `json:"userID" gorm:"uniqueIndex;not null"`
	User      User   `json:"user" gorm:"foreignKey:UserID;references:ID"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	PhotoURL  string `json:"photoURL"`

	// Search intent shown to owners alongside a contact request.
	TargetCity string `json:"targetCity"`
	Objective  string `json:"objective" gorm:"type:text"`
}
