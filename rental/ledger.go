package rental

import (
	"context"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/models"
	"Gin_postgres_redis_rental_kiosk/notify"
)

// ReturnItem closes a rental immediately as a manual return, whatever its
// due date. Returning a closed record is a no-op that echoes the record.
func (s *Service) ReturnItem(ctx context.Context, rentalID int64) (*models.Rental, error) {
	var (
		out     *models.Rental
		changed bool
	)
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		rt, err := tx.LockRental(ctx, rentalID)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "rental %d", rentalID)
			}
			return err
		}
		if rt.IsReturned {
			out = rt
			return nil
		}

		now := s.epoch()
		n, err := tx.MarkReturned(ctx, rt.ID, now, true)
		if err != nil {
			return err
		}
		changed = n > 0
		rt.IsReturned = true
		rt.ReturnDate = &now
		rt.IsManualReturn = true
		out = rt
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	if changed {
		s.publish(ctx, notify.Occupancy(out.ItemID))
		s.log.Info("rental returned", "rental_id", out.ID, "item_id", out.ItemID)
	}
	return out, nil
}

// ExtendRental pushes the due date of an open rental forward by the item's
// rental time. It is refused while anyone waits for the item.
func (s *Service) ExtendRental(ctx context.Context, rentalID int64) (*models.Rental, error) {
	var out *models.Rental
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		rt, err := tx.FindRentalByID(ctx, rentalID)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "rental %d", rentalID)
			}
			return err
		}

		item, err := tx.LockItem(ctx, rt.ItemID)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "item %d", rt.ItemID)
			}
			return err
		}
		// 先锁物品再锁借用记录，与级联归还的加锁顺序一致
		if rt, err = tx.LockRental(ctx, rentalID); err != nil {
			return err
		}
		if rt.IsReturned || rt.ReturnDueDate == nil {
			return s.fail(msgRentalClosed, "")
		}
		secs := item.RentalSeconds()
		if secs <= 0 {
			return s.fail(msgValidation, "item %d has no rental time", item.ID)
		}

		waiting, err := tx.CountWaiting(ctx, item.ID)
		if err != nil {
			return err
		}
		if waiting > 0 {
			return s.fail(msgExtendBlocked, "%d waiting", waiting)
		}

		due := *rt.ReturnDueDate + secs
		if err := tx.SetReturnDueDate(ctx, rt.ID, due); err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgRentalClosed, "")
			}
			return err
		}
		rt.ReturnDueDate = &due
		out = rt
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	s.publish(ctx, notify.Occupancy(out.ItemID))
	s.log.Info("rental extended", "rental_id", out.ID, "item_id", out.ItemID, "due", *out.ReturnDueDate)
	return out, nil
}

// FindRental returns one ledger record.
func (s *Service) FindRental(ctx context.Context, rentalID int64) (*models.Rental, error) {
	rt, err := s.repo.FindRentalByID(ctx, rentalID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "rental %d", rentalID)
		}
		return nil, s.storeErr(err)
	}
	return rt, nil
}

// ListRentals pages through the ledger.
func (s *Service) ListRentals(ctx context.Context, q db.RentalsQuery) (*db.PagedRentals, error) {
	switch q.Status {
	case "", "open", "returned":
	default:
		return nil, s.fail(msgValidation, "status must be open or returned")
	}
	out, err := s.repo.ListRentals(ctx, q)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return out, nil
}
