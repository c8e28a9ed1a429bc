package rental

import (
	"context"
	"errors"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/models"
	"Gin_postgres_redis_rental_kiosk/notify"

	"gorm.io/gorm"
)

type RentRequest struct {
	UserID int64  `json:"userId"`
	ItemID int64  `json:"itemId"`
	Party  *Party `json:"party,omitempty"`
}

// RentNow checks out an item to a kiosk customer on the spot.
//
// Time-limited items get an open record due rentalTimeMinutes from now.
// Other items are logged as an already returned record, since they carry
// no occupancy.
func (s *Service) RentNow(ctx context.Context, req RentRequest) (*models.Rental, error) {
	s.SweepBestEffort(ctx)

	var out *models.Rental
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		item, err := tx.LockItem(ctx, req.ItemID)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "item %d", req.ItemID)
			}
			return err
		}
		if !item.OnKiosk() {
			return s.fail(msgNotFound, "item %d", req.ItemID)
		}

		if item.IsTimeLimited {
			if _, err := tx.FindOpenRental(ctx, item.ID); err == nil {
				return s.fail(msgItemOccupied, "")
			} else if !db.IsNotFound(err) {
				return err
			}
		}

		user, err := tx.FindUserByID(ctx, req.UserID)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "user %d", req.UserID)
			}
			return err
		}

		party, err := s.resolveParty(item, user, req.Party, true)
		if err != nil {
			return err
		}

		capped, err := s.dailyCapReached(ctx, tx, user.ID, item.ID, item.MaxRentalsPerUser)
		if err != nil {
			return err
		}
		if capped {
			return s.fail(msgDailyCap, "")
		}

		rt := s.newRental(item, user, party)
		if err := tx.CreateRental(ctx, rt); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return s.fail(msgItemOccupied, "")
			}
			return err
		}
		out = rt
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	if out.Open() {
		s.publish(ctx, notify.Occupancy(out.ItemID))
	}
	s.log.Info("item rented", "rental_id", out.ID, "item_id", out.ItemID, "user_id", out.UserID)
	return out, nil
}

// GrantQueueEntry promotes a waiting entry into a rental. The entry is gone
// after the call unless it was not found or the item is still occupied;
// a user over the daily cap loses the entry and gets DAILY_CAP_EXCEEDED.
func (s *Service) GrantQueueEntry(ctx context.Context, entryID int64) (*models.Rental, error) {
	s.SweepBestEffort(ctx)

	entry, err := s.repo.FindWaitingByID(ctx, entryID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "queue entry %d", entryID)
		}
		return nil, s.storeErr(err)
	}
	return s.grant(ctx, entry.ItemID, func(tx *db.Repo) (*models.WaitingEntry, error) {
		w, err := tx.FindWaitingByID(ctx, entryID)
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "queue entry %d", entryID)
		}
		return w, err
	})
}

// GrantNext grants whoever has waited longest for the item.
func (s *Service) GrantNext(ctx context.Context, itemID int64) (*models.Rental, error) {
	s.SweepBestEffort(ctx)

	return s.grant(ctx, itemID, func(tx *db.Repo) (*models.WaitingEntry, error) {
		w, err := tx.HeadOfQueue(ctx, itemID)
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "no one is waiting for item %d", itemID)
		}
		return w, err
	})
}

func (s *Service) grant(ctx context.Context, itemID int64, pick func(tx *db.Repo) (*models.WaitingEntry, error)) (*models.Rental, error) {
	var (
		out    *models.Rental
		capped bool
	)
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		item, err := tx.LockItem(ctx, itemID)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "item %d", itemID)
			}
			return err
		}
		if item.IsDeleted {
			return s.fail(msgNotFound, "item %d", itemID)
		}
		if !item.IsTimeLimited {
			return s.fail(msgQueueNotSupported, "")
		}

		// 锁住物品后再读一次，避免并发重复批准
		entry, err := pick(tx)
		if err != nil {
			return err
		}
		if entry.ItemID != item.ID {
			return s.fail(msgNotFound, "queue entry %d", entry.ID)
		}

		if _, err := tx.FindOpenRental(ctx, item.ID); err == nil {
			return s.fail(msgGrantOccupied, "")
		} else if !db.IsNotFound(err) {
			return err
		}

		user, err := tx.FindUserByID(ctx, entry.UserID)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "user %d", entry.UserID)
			}
			return err
		}

		reached, err := s.dailyCapReached(ctx, tx, user.ID, item.ID, item.MaxRentalsPerUser)
		if err != nil {
			return err
		}
		if reached {
			// 超出每日上限：删除排队记录并提交，错误在事务外返回
			capped = true
			return tx.DeleteWaiting(ctx, entry.ID)
		}

		rt := s.newRental(item, user, Party{Male: entry.MaleCount, Female: entry.FemaleCount})
		if err := tx.CreateRental(ctx, rt); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return s.fail(msgGrantOccupied, "")
			}
			return err
		}
		if err := tx.DeleteWaiting(ctx, entry.ID); err != nil {
			return err
		}
		out = rt
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	if capped {
		s.publish(ctx, notify.Queue(itemID))
		s.log.Info("queue entry dropped at grant: daily cap reached", "item_id", itemID)
		return nil, s.fail(msgGrantDailyCap, "")
	}

	s.publish(ctx, notify.Occupancy(itemID), notify.Queue(itemID))
	s.log.Info("queue entry granted", "rental_id", out.ID, "item_id", itemID, "user_id", out.UserID)
	return out, nil
}

// newRental snapshots the user and item display fields onto the record.
func (s *Service) newRental(item *models.Item, user *models.User, party Party) *models.Rental {
	now := s.epoch()
	rt := &models.Rental{
		UserID:       user.ID,
		ItemID:       item.ID,
		RentalDate:   now,
		MaleCount:    party.Male,
		FemaleCount:  party.Female,
		UserName:     user.Name,
		UserPhone:    user.PhoneNumber,
		ItemName:     item.Name,
		ItemCategory: item.Category,
	}
	if secs := item.RentalSeconds(); secs > 0 {
		due := now + secs
		rt.ReturnDueDate = &due
	} else {
		rt.IsReturned = true
		rt.ReturnDate = &now
	}
	return rt
}
