// models/waiting.go
package models

const WaitingTable = "kiosk_waitings"

// WaitingEntry is a pending request for a time-limited item. Entries of one
// item are served by RequestDate ascending, ties broken by ID.
type WaitingEntry struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64 `gorm:"not null;uniqueIndex:kiosk_waitings_user_item" json:"userId"`
	ItemID      int64 `gorm:"not null;uniqueIndex:kiosk_waitings_user_item;index" json:"itemId"`
	RequestDate int64 `gorm:"not null;index" json:"requestDate"`
	MaleCount   int   `gorm:"not null;default:0" json:"maleCount"`
	FemaleCount int   `gorm:"not null;default:0" json:"femaleCount"`
}

func (WaitingEntry) TableName() string { return WaitingTable }
