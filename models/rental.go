// models/rental.go
package models

const RentalTable = "kiosk_rentals"

// Rental is one row of the rental ledger. Times are epoch seconds.
// User and item display fields are frozen at creation for reporting.
type Rental struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"index;not null" json:"userId"`
	ItemID int64 `gorm:"index;not null" json:"itemId"`

	RentalDate     int64  `gorm:"index;not null" json:"rentalDate"`
	ReturnDueDate  *int64 `gorm:"index" json:"returnDueDate,omitempty"`
	IsReturned     bool   `gorm:"not null;default:false" json:"isReturned"`
	ReturnDate     *int64 `json:"returnDate,omitempty"`
	IsManualReturn bool   `gorm:"not null;default:false" json:"isManualReturn"`

	MaleCount   int `gorm:"not null;default:0" json:"maleCount"`
	FemaleCount int `gorm:"not null;default:0" json:"femaleCount"`

	UserName     string `gorm:"size:100" json:"userName"`
	UserPhone    string `gorm:"size:30" json:"userPhone"`
	ItemName     string `gorm:"size:200" json:"itemName"`
	ItemCategory string `gorm:"size:100" json:"itemCategory"`
}

func (Rental) TableName() string { return RentalTable }

// Open reports whether the item is still checked out under this record.
func (r *Rental) Open() bool { return !r.IsReturned }
