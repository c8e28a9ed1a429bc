// models/item.go
package models

import "time"

const ItemTable = "kiosk_items"

type Item struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"size:200;not null" json:"name"`
	Category string `gorm:"size:100;not null;default:''" json:"category"`

	IsTimeLimited     bool `gorm:"not null;default:false" json:"isTimeLimited"`
	RentalTimeMinutes *int `json:"rentalTimeMinutes,omitempty"` // 仅限时物品
	MaxRentalsPerUser *int `json:"maxRentalsPerUser,omitempty"` // 每人每日最多借用次数

	// 按借用人档案性别自动统计人数
	IsAutomaticGenderCount bool `gorm:"not null;default:false" json:"isAutomaticGenderCount"`

	IsHidden     bool `gorm:"not null;default:false;index" json:"isHidden"`
	IsDeleted    bool `gorm:"not null;default:false;index" json:"isDeleted"`
	DisplayOrder int  `gorm:"not null;default:0" json:"displayOrder"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Item) TableName() string { return ItemTable }

// RentalSeconds is the configured rental length, or 0 for items without one.
func (it *Item) RentalSeconds() int64 {
	if !it.IsTimeLimited || it.RentalTimeMinutes == nil {
		return 0
	}
	return int64(*it.RentalTimeMinutes) * 60
}

// OnKiosk reports whether customers can see and act on the item.
func (it *Item) OnKiosk() bool { return !it.IsDeleted && !it.IsHidden }
