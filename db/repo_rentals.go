// db/repo_rentals.go
package db

import (
	"context"
	"fmt"

	"Gin_postgres_redis_rental_kiosk/models"

	"gorm.io/gorm"
)

// Rentals

func (r *Repo) CreateRental(ctx context.Context, rt *models.Rental) error {
	if err := r.DB.WithContext(ctx).Create(rt).Error; err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}
	return nil
}

func (r *Repo) FindRentalByID(ctx context.Context, id int64) (*models.Rental, error) {
	var rt models.Rental
	if err := r.DB.WithContext(ctx).First(&rt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// LockRental reads the record FOR UPDATE on postgres. Inside a transaction
// that also locks the item, lock the item first.
func (r *Repo) LockRental(ctx context.Context, id int64) (*models.Rental, error) {
	var rt models.Rental
	if err := r.forUpdate(r.DB.WithContext(ctx)).First(&rt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// FindOpenRental returns the most recent unreturned record of the item.
func (r *Repo) FindOpenRental(ctx context.Context, itemID int64) (*models.Rental, error) {
	var rt models.Rental
	if err := r.DB.WithContext(ctx).
		Where("item_id = ? AND is_returned = ?", itemID, false).
		Order("rental_date DESC").Order("id DESC").
		First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// OpenRentalsByItem maps item id to its open record for the given items.
func (r *Repo) OpenRentalsByItem(ctx context.Context, itemIDs []int64) (map[int64]models.Rental, error) {
	out := make(map[int64]models.Rental, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	var rows []models.Rental
	if err := r.DB.WithContext(ctx).
		Where("item_id IN ? AND is_returned = ?", itemIDs, false).
		Order("rental_date ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, rt := range rows {
		out[rt.ItemID] = rt // 最新的覆盖旧的
	}
	return out, nil
}

// CountUserRentals counts the user's rentals of the item with
// from <= rental_date < to.
func (r *Repo) CountUserRentals(ctx context.Context, userID, itemID, from, to int64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Rental{}).
		Where("user_id = ? AND item_id = ? AND rental_date >= ? AND rental_date < ?", userID, itemID, from, to).
		Count(&n).Error
	return n, err
}

// MarkReturned closes an open record. It is a no-op on a closed one.
func (r *Repo) MarkReturned(ctx context.Context, id, now int64, manual bool) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Rental{}).
		Where("id = ? AND is_returned = ?", id, false).
		Updates(map[string]any{
			"is_returned":      true,
			"return_date":      now,
			"is_manual_return": manual,
		})
	return res.RowsAffected, res.Error
}

// ReturnOpenRentals force-returns every open record of the item.
func (r *Repo) ReturnOpenRentals(ctx context.Context, itemID, now int64, manual bool) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Rental{}).
		Where("item_id = ? AND is_returned = ?", itemID, false).
		Updates(map[string]any{
			"is_returned":      true,
			"return_date":      now,
			"is_manual_return": manual,
		})
	return res.RowsAffected, res.Error
}

func (r *Repo) SetReturnDueDate(ctx context.Context, id, due int64) error {
	res := r.DB.WithContext(ctx).Model(&models.Rental{}).
		Where("id = ? AND is_returned = ?", id, false).
		Update("return_due_date", due)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReturnExpired force-returns open records whose due date is before now and
// reports the items that were freed. Running it again with the same now
// changes nothing.
func (r *Repo) ReturnExpired(ctx context.Context, now int64) ([]int64, error) {
	var itemIDs []int64
	err := r.Transaction(ctx, func(tx *Repo) error {
		var expired []models.Rental
		if err := tx.forUpdate(tx.DB.WithContext(ctx)).
			Select("id", "item_id").
			Where("is_returned = ? AND return_due_date IS NOT NULL AND return_due_date < ?", false, now).
			Order("id").
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]int64, 0, len(expired))
		seen := make(map[int64]bool, len(expired))
		for _, rt := range expired {
			ids = append(ids, rt.ID)
			if !seen[rt.ItemID] {
				seen[rt.ItemID] = true
				itemIDs = append(itemIDs, rt.ItemID)
			}
		}
		return tx.DB.WithContext(ctx).Model(&models.Rental{}).
			Where("id IN ? AND is_returned = ?", ids, false).
			Updates(map[string]any{
				"is_returned":      true,
				"return_date":      now,
				"is_manual_return": false,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("return expired rentals: %w", err)
	}
	return itemIDs, nil
}

type RentalsQuery struct {
	UserID int64
	ItemID int64
	Status string // "", "open", "returned"
	From   int64  // rental_date >= From
	To     int64  // rental_date < To
	Page   int
	Size   int
}

type PagedRentals struct {
	Total   int64           `json:"total"`
	Rentals []models.Rental `json:"rentals"`
}

func (r *Repo) ListRentals(ctx context.Context, q RentalsQuery) (*PagedRentals, error) {
	q.Page, q.Size = clampPage(q.Page, q.Size, 200)

	tx := r.DB.WithContext(ctx).Model(&models.Rental{})
	if q.UserID != 0 {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.ItemID != 0 {
		tx = tx.Where("item_id = ?", q.ItemID)
	}
	switch q.Status {
	case "open":
		tx = tx.Where("is_returned = ?", false)
	case "returned":
		tx = tx.Where("is_returned = ?", true)
	}
	if q.From > 0 {
		tx = tx.Where("rental_date >= ?", q.From)
	}
	if q.To > 0 {
		tx = tx.Where("rental_date < ?", q.To)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}
	var rows []models.Rental
	if err := tx.Order("rental_date DESC").Order("id DESC").
		Offset((q.Page - 1) * q.Size).Limit(q.Size).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return &PagedRentals{Total: total, Rentals: rows}, nil
}
