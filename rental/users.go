package rental

import (
	"context"
	"errors"
	"strings"
	"time"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/models"
)

// UserInput is a kiosk customer's profile as typed at the touchscreen or
// edited by an admin.
type UserInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=30"`
	Gender      string `json:"gender" validate:"required,oneof=male female"`
	BirthDate   string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	School      string `json:"school" validate:"max=200"`
	Consent     bool   `json:"consent"`
}

func (s *Service) userFromInput(in UserInput, u *models.User) error {
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	in.School = strings.TrimSpace(in.School)
	if err := s.validateStruct(&in); err != nil {
		return err
	}

	u.Name = in.Name
	u.PhoneNumber = in.PhoneNumber
	u.Gender = in.Gender
	u.School = in.School
	u.Consent = in.Consent
	u.BirthDate = nil
	if in.BirthDate != "" {
		bd, err := time.ParseInLocation("2006-01-02", in.BirthDate, time.UTC)
		if err != nil {
			return s.fail(msgValidation, "birthDate must be YYYY-MM-DD")
		}
		u.BirthDate = &bd
	}
	return nil
}

// IdentifyUser finds a customer by the (name, phone) pair they enter.
func (s *Service) IdentifyUser(ctx context.Context, name, phone string) (*models.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" {
		return nil, s.fail(msgValidation, "name and phoneNumber are required")
	}
	u, err := s.repo.FindUserByIdentity(ctx, name, phone)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "user")
		}
		return nil, s.storeErr(err)
	}
	return u, nil
}

func (s *Service) RegisterUser(ctx context.Context, in UserInput) (*models.User, error) {
	u := &models.User{}
	if err := s.userFromInput(in, u); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, db.ErrDuplicateUser) {
			return nil, s.fail(msgUserExists, "")
		}
		return nil, s.storeErr(err)
	}
	s.log.Info("user registered", "user_id", u.ID)
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "user %d", id)
		}
		return nil, s.storeErr(err)
	}
	return u, nil
}

// UpdateUser edits the live profile. Rentals keep the name and phone they
// were created with.
func (s *Service) UpdateUser(ctx context.Context, id int64, in UserInput) (*models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.userFromInput(in, u); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicateUser):
			return nil, s.fail(msgUserExists, "")
		case db.IsNotFound(err):
			return nil, s.fail(msgNotFound, "user %d", id)
		}
		return nil, s.storeErr(err)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, q string, page, size int) (db.ListUsersResult, error) {
	res, err := s.repo.ListUsers(ctx, q, page, size)
	if err != nil {
		return db.ListUsersResult{}, s.storeErr(err)
	}
	return res, nil
}

// DeleteUser removes the profile and its waiting entries. Ledger rows stay
// for reporting.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUserByID(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return s.fail(msgNotFound, "user %d", id)
		}
		return s.storeErr(err)
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}
