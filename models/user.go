package models

import (
	"time"
)

const UserTable = "kiosk_users"

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User is a kiosk customer. Customers do not log in; the (name, phone)
// pair identifies them at the touchscreen.
type User struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"size:100;not null;uniqueIndex:kiosk_users_identity" json:"name"`
	PhoneNumber string     `gorm:"size:30;not null;uniqueIndex:kiosk_users_identity" json:"phoneNumber"`
	Gender      string     `gorm:"size:10;not null" json:"gender"`
	BirthDate   *time.Time `gorm:"type:date" json:"birthDate,omitempty"`
	School      string     `gorm:"size:200" json:"school,omitempty"`
	Consent     bool       `gorm:"not null;default:false" json:"consent"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return UserTable
}
