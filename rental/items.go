package rental

import (
	"context"
	"strings"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/models"
	"Gin_postgres_redis_rental_kiosk/notify"
)

// ItemInput is the admin-editable configuration of an item.
type ItemInput struct {
	Name                   string `json:"name" validate:"required,max=200"`
	Category               string `json:"category" validate:"max=100"`
	IsTimeLimited          bool   `json:"isTimeLimited"`
	RentalTimeMinutes      *int   `json:"rentalTimeMinutes" validate:"omitempty,gt=0,lte=10080"`
	MaxRentalsPerUser      *int   `json:"maxRentalsPerUser" validate:"omitempty,gte=1"`
	IsAutomaticGenderCount bool   `json:"isAutomaticGenderCount"`
	IsHidden               bool   `json:"isHidden"`
	DisplayOrder           int    `json:"displayOrder"`
}

func (s *Service) checkItemInput(in *ItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := s.validateStruct(in); err != nil {
		return err
	}
	if in.IsTimeLimited && in.RentalTimeMinutes == nil {
		return s.fail(msgValidation, "rentalTimeMinutes is required for time-limited items")
	}
	return nil
}

func (in *ItemInput) apply(it *models.Item) {
	it.Name = in.Name
	it.Category = in.Category
	it.IsTimeLimited = in.IsTimeLimited
	it.RentalTimeMinutes = in.RentalTimeMinutes
	it.MaxRentalsPerUser = in.MaxRentalsPerUser
	it.IsAutomaticGenderCount = in.IsAutomaticGenderCount
	it.IsHidden = in.IsHidden
	it.DisplayOrder = in.DisplayOrder
}

func (s *Service) CreateItem(ctx context.Context, in ItemInput) (*models.Item, error) {
	if err := s.checkItemInput(&in); err != nil {
		return nil, err
	}
	it := &models.Item{}
	in.apply(it)
	if err := s.repo.CreateItem(ctx, it); err != nil {
		return nil, s.storeErr(err)
	}
	s.log.Info("item created", "item_id", it.ID, "name", it.Name)
	return it, nil
}

// UpdateItem rewrites the item configuration. Turning the time limit off
// closes the open rental as a manual return and empties the queue, all in
// the same transaction.
func (s *Service) UpdateItem(ctx context.Context, id int64, in ItemInput) (*models.Item, error) {
	if err := s.checkItemInput(&in); err != nil {
		return nil, err
	}

	var (
		out *models.Item
		cas cascade
	)
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		it, err := tx.LockItem(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "item %d", id)
			}
			return err
		}
		if it.IsDeleted {
			return s.fail(msgNotFound, "item %d", id)
		}

		if it.IsTimeLimited && !in.IsTimeLimited {
			if cas, err = s.release(ctx, tx, it.ID); err != nil {
				return err
			}
		}
		in.apply(it)
		if err := tx.SaveItem(ctx, it); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	s.publish(ctx, cas.events(id)...)
	s.log.Info("item updated", "item_id", id, "returned", cas.returned, "dequeued", cas.dequeued)
	return out, nil
}

// DeleteItem soft-deletes the item with the same cascade as disabling its
// time limit; a removed item keeps no open rental or waiters.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	var cas cascade
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		it, err := tx.LockItem(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "item %d", id)
			}
			return err
		}
		if it.IsDeleted {
			return s.fail(msgNotFound, "item %d", id)
		}
		if cas, err = s.release(ctx, tx, it.ID); err != nil {
			return err
		}
		it.IsDeleted = true
		return tx.SaveItem(ctx, it)
	})
	if err != nil {
		return s.storeErr(err)
	}

	s.publish(ctx, cas.events(id)...)
	s.log.Info("item deleted", "item_id", id, "returned", cas.returned, "dequeued", cas.dequeued)
	return nil
}

// GetItem returns the configuration of a live item.
func (s *Service) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	it, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "item %d", id)
		}
		return nil, s.storeErr(err)
	}
	if it.IsDeleted {
		return nil, s.fail(msgNotFound, "item %d", id)
	}
	return it, nil
}

type cascade struct {
	returned int64
	dequeued int64
}

func (c cascade) events(itemID int64) []notify.Event {
	var out []notify.Event
	if c.returned > 0 {
		out = append(out, notify.Occupancy(itemID))
	}
	if c.dequeued > 0 {
		out = append(out, notify.Queue(itemID))
	}
	return out
}

// release force-returns the item's open rentals and drops its queue.
func (s *Service) release(ctx context.Context, tx *db.Repo, itemID int64) (cascade, error) {
	var c cascade
	var err error
	if c.returned, err = tx.ReturnOpenRentals(ctx, itemID, s.epoch(), true); err != nil {
		return c, err
	}
	if c.dequeued, err = tx.DeleteWaitingByItem(ctx, itemID); err != nil {
		return c, err
	}
	return c, nil
}
