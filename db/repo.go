package db

import (
	"Gin_postgres_redis_rental_kiosk/models"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

var ErrDuplicateUser = errors.New("user with this name and phone number already exists")

// IsNotFound reports whether err means the looked-up row does not exist.
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// Transaction runs fn against a Repo bound to a single database transaction.
// Returning an error from fn rolls every write back.
func (r *Repo) Transaction(ctx context.Context, fn func(tx *Repo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx})
	})
}

func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// forUpdate adds a row lock where the dialect has one; SQLite serializes
// writers on its single connection instead.
func (r *Repo) forUpdate(tx *gorm.DB) *gorm.DB {
	if r.DB.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Users

// 按 ID 查
func (r *Repo) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByIdentity looks a kiosk customer up by the pair they type in.
func (r *Repo) FindUserByIdentity(ctx context.Context, name, phone string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("name = ? AND phone_number = ?", strings.TrimSpace(name), normalizePhone(phone)).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	u.Name = strings.TrimSpace(u.Name)
	u.PhoneNumber = normalizePhone(u.PhoneNumber)
	return r.Transaction(ctx, func(tx *Repo) error {
		var n int64
		if err := tx.DB.WithContext(ctx).Model(&models.User{}).
			Where("name = ? AND phone_number = ?", u.Name, u.PhoneNumber).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateUser
		}
		return tx.DB.WithContext(ctx).Create(u).Error
	})
}

func (r *Repo) UpdateUser(ctx context.Context, u *models.User) error {
	u.Name = strings.TrimSpace(u.Name)
	u.PhoneNumber = normalizePhone(u.PhoneNumber)
	return r.Transaction(ctx, func(tx *Repo) error {
		var n int64
		if err := tx.DB.WithContext(ctx).Model(&models.User{}).
			Where("name = ? AND phone_number = ? AND id <> ?", u.Name, u.PhoneNumber, u.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateUser
		}
		res := tx.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).
			Select("name", "phone_number", "gender", "birth_date", "school", "consent").
			Updates(u)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// 列表（分页 + 关键词，关键词匹配姓名/电话/学校）
type ListUsersResult struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (ListUsersResult, error) {
	page, size = clampPage(page, size, 100)

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR phone_number LIKE ? OR LOWER(school) LIKE ?", like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListUsersResult{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return ListUsersResult{}, err
	}
	return ListUsersResult{Users: users, Total: total}, nil
}

// 删除用户；借用记录保留快照，排队记录一并删除
func (r *Repo) DeleteUserByID(ctx context.Context, id int64) error {
	return r.Transaction(ctx, func(tx *Repo) error {
		if err := tx.DB.WithContext(ctx).Where("user_id = ?", id).Delete(&models.WaitingEntry{}).Error; err != nil {
			return err
		}
		res := tx.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func normalizePhone(p string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(p))
}

func clampPage(page, size, max int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > max {
		size = 20
	}
	return page, size
}
