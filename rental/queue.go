package rental

import (
	"context"
	"errors"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/models"
	"Gin_postgres_redis_rental_kiosk/notify"

	"gorm.io/gorm"
)

type QueueRequest struct {
	UserID int64  `json:"userId"`
	ItemID int64  `json:"itemId"`
	Party  *Party `json:"party,omitempty"`
}

// Ticket is a waiting entry with its 1-indexed FIFO position.
type Ticket struct {
	Entry    models.WaitingEntry `json:"entry"`
	Position int64               `json:"position"`
}

// JoinQueue appends the user to the item's waiting list. Only time-limited
// items have a queue. Party counts are optional here.
func (s *Service) JoinQueue(ctx context.Context, req QueueRequest) (*Ticket, error) {
	s.SweepBestEffort(ctx)

	var out *Ticket
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
		if !item.IsTimeLimited {
			return s.fail(msgQueueNotSupported, "")
		}

		user, err := tx.FindUserByID(ctx, req.UserID)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "user %d", req.UserID)
			}
			return err
		}

		if _, err := tx.FindWaiting(ctx, user.ID, item.ID); err == nil {
			return s.fail(msgAlreadyQueued, "")
		} else if !db.IsNotFound(err) {
			return err
		}

		party, err := s.resolveParty(item, user, req.Party, false)
		if err != nil {
			return err
		}

		w := &models.WaitingEntry{
			UserID:      user.ID,
			ItemID:      item.ID,
			RequestDate: s.epoch(),
			MaleCount:   party.Male,
			FemaleCount: party.Female,
		}
		if err := tx.CreateWaiting(ctx, w); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return s.fail(msgAlreadyQueued, "")
			}
			return err
		}
		pos, err := tx.QueuePosition(ctx, w)
		if err != nil {
			return err
		}
		out = &Ticket{Entry: *w, Position: pos}
		return nil
	})
	if err != nil {
		return nil, s.storeErr(err)
	}

	s.publish(ctx, notify.Queue(out.Entry.ItemID))
	s.log.Info("joined queue", "entry_id", out.Entry.ID, "item_id", out.Entry.ItemID, "user_id", out.Entry.UserID, "position", out.Position)
	return out, nil
}

// CancelQueueEntry removes a waiting entry. A second cancel is NOT_FOUND.
func (s *Service) CancelQueueEntry(ctx context.Context, entryID int64) error {
	var itemID int64
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		w, err := tx.FindWaitingByID(ctx, entryID)
		if err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "queue entry %d", entryID)
			}
			return err
		}
		itemID = w.ItemID
		if err := tx.DeleteWaiting(ctx, w.ID); err != nil {
			if db.IsNotFound(err) {
				return s.fail(msgNotFound, "queue entry %d", entryID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return s.storeErr(err)
	}

	s.publish(ctx, notify.Queue(itemID))
	s.log.Info("queue entry cancelled", "entry_id", entryID, "item_id", itemID)
	return nil
}

// QueuePosition looks an entry up with its current rank.
func (s *Service) QueuePosition(ctx context.Context, entryID int64) (*Ticket, error) {
	w, err := s.repo.FindWaitingByID(ctx, entryID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "queue entry %d", entryID)
		}
		return nil, s.storeErr(err)
	}
	pos, err := s.repo.QueuePosition(ctx, w)
	if err != nil {
		return nil, s.storeErr(err)
	}
	return &Ticket{Entry: *w, Position: pos}, nil
}

// ItemQueue lists the item's waiting entries in service order.
func (s *Service) ItemQueue(ctx context.Context, itemID int64) ([]Ticket, error) {
	if _, err := s.repo.FindItemByID(ctx, itemID); err != nil {
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "item %d", itemID)
		}
		return nil, s.storeErr(err)
	}
	ws, err := s.repo.ListWaiting(ctx, itemID)
	if err != nil {
		return nil, s.storeErr(err)
	}
	out := make([]Ticket, len(ws))
	for i, w := range ws {
		out[i] = Ticket{Entry: w, Position: int64(i + 1)}
	}
	return out, nil
}
