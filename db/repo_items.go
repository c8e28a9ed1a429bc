// db/repo_items.go
package db

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_rental_kiosk/models"

	"gorm.io/gorm"
)

// Items
func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *Repo) FindItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// LockItem reads the item row and holds it until the transaction ends, so
// every occupancy decision about the item is serialized.
func (r *Repo) LockItem(ctx context.Context, id int64) (*models.Item, error) {
	var it models.Item
	if err := r.forUpdate(r.DB.WithContext(ctx)).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// SaveItem writes every configurable column, including zero values.
func (r *Repo) SaveItem(ctx context.Context, it *models.Item) error {
	it.UpdatedAt = time.Now()
	res := r.DB.WithContext(ctx).Model(&models.Item{}).Where("id = ?", it.ID).
		Select("name", "category", "is_time_limited", "rental_time_minutes", "max_rentals_per_user",
			"is_automatic_gender_count", "is_hidden", "is_deleted", "display_order", "updated_at").
		Updates(it)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type ItemsQuery struct {
	Q             string // 模糊搜索：name/category
	IncludeHidden bool   // 管理端：含隐藏
}

func (r *Repo) ListItems(ctx context.Context, q ItemsQuery) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Item{}).Where("is_deleted = ?", false)
	if !q.IncludeHidden {
		tx = tx.Where("is_hidden = ?", false)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", pat, pat)
	}
	var items []models.Item
	err := tx.Order("display_order ASC").Order("id ASC").Find(&items).Error
	return items, err
}
