// db/repo_waiting.go
package db

import (
	"context"
	"fmt"

	"Gin_postgres_redis_rental_kiosk/models"

	"gorm.io/gorm"
)

// Waiting queue

func (r *Repo) CreateWaiting(ctx context.Context, w *models.WaitingEntry) error {
	if err := r.DB.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("insert waiting entry: %w", err)
	}
	return nil
}

func (r *Repo) FindWaitingByID(ctx context.Context, id int64) (*models.WaitingEntry, error) {
	var w models.WaitingEntry
	if err := r.DB.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repo) FindWaiting(ctx context.Context, userID, itemID int64) (*models.WaitingEntry, error) {
	var w models.WaitingEntry
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// HeadOfQueue returns the entry that has waited longest for the item.
func (r *Repo) HeadOfQueue(ctx context.Context, itemID int64) (*models.WaitingEntry, error) {
	var w models.WaitingEntry
	if err := r.fifo(r.DB.WithContext(ctx).Where("item_id = ?", itemID)).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repo) DeleteWaiting(ctx context.Context, id int64) error {
	res := r.DB.WithContext(ctx).Delete(&models.WaitingEntry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) DeleteWaitingByItem(ctx context.Context, itemID int64) (int64, error) {
	res := r.DB.WithContext(ctx).Delete(&models.WaitingEntry{}, "item_id = ?", itemID)
	return res.RowsAffected, res.Error
}

func (r *Repo) CountWaiting(ctx context.Context, itemID int64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.WaitingEntry{}).
		Where("item_id = ?", itemID).
		Count(&n).Error
	return n, err
}

// WaitingCounts maps item id to its queue length for the given items.
func (r *Repo) WaitingCounts(ctx context.Context, itemIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ItemID int64
		N      int64
	}
	if err := r.DB.WithContext(ctx).Model(&models.WaitingEntry{}).
		Select("item_id, COUNT(*) AS n").
		Where("item_id IN ?", itemIDs).
		Group("item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ItemID] = row.N
	}
	return out, nil
}

// QueuePosition is the 1-indexed FIFO rank of the entry within its item.
func (r *Repo) QueuePosition(ctx context.Context, w *models.WaitingEntry) (int64, error) {
	var ahead int64
	err := r.DB.WithContext(ctx).Model(&models.WaitingEntry{}).
		Where("item_id = ?", w.ItemID).
		Where("request_date < ? OR (request_date = ? AND id < ?)", w.RequestDate, w.RequestDate, w.ID).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return ahead + 1, nil
}

func (r *Repo) ListWaiting(ctx context.Context, itemID int64) ([]models.WaitingEntry, error) {
	var ws []models.WaitingEntry
	err := r.fifo(r.DB.WithContext(ctx).Where("item_id = ?", itemID)).Find(&ws).Error
	return ws, err
}

func (r *Repo) fifo(tx *gorm.DB) *gorm.DB {
	return tx.Order("request_date ASC").Order("id ASC")
}
