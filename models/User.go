package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the account identity only. Profile data (names, phone, photo)
// lives in the Owner or Tenant table, never here.
type User struct {
	gorm.Model
	Email               string         `json:"email" gorm:"uniqueIndex"`
	Password            string         `json:"-"`
	EmailVerified       *bool          `json:"emailVerified" gorm:"default:false"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
}

// Custom JSON marshaling to convert the PushTokens JSON column to an array
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		PushTokens []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.PushTokens != nil {
		var pushTokens []string
		if err := json.Unmarshal(u.PushTokens, &pushTokens); err == nil {
			aux.PushTokens = pushTokens
		}
	}

	return json.Marshal(aux)
}
