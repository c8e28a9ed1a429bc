package rental

import (
	"context"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/models"
)

type Status string

const (
	Available Status = "AVAILABLE"
	Rented    Status = "RENTED"
)

// ItemStatus is the live view of one item. Items without a time limit are
// always AVAILABLE and report no waiters.
type ItemStatus struct {
	Item          models.Item `json:"item"`
	Status        Status      `json:"status"`
	RentalID      *int64      `json:"rentalId,omitempty"`
	ReturnDueDate *int64      `json:"returnDueDate,omitempty"`
	WaitingCount  int64       `json:"waitingCount"`
}

// GetItemStatus is a pure read. Run a sweep first if RENTED must not
// include rentals that are already overdue.
func (s *Service) GetItemStatus(ctx context.Context, itemID int64) (*ItemStatus, error) {
	item, err := s.repo.FindItemByID(ctx, itemID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, s.fail(msgNotFound, "item %d", itemID)
		}
		return nil, s.storeErr(err)
	}
	if item.IsDeleted {
		return nil, s.fail(msgNotFound, "item %d", itemID)
	}

	st := &ItemStatus{Item: *item, Status: Available}
	if !item.IsTimeLimited {
		return st, nil
	}

	rt, err := s.repo.FindOpenRental(ctx, item.ID)
	switch {
	case err == nil:
		st.Status = Rented
		st.RentalID = &rt.ID
		st.ReturnDueDate = rt.ReturnDueDate
	case !db.IsNotFound(err):
		return nil, s.storeErr(err)
	}

	if st.WaitingCount, err = s.repo.CountWaiting(ctx, item.ID); err != nil {
		return nil, s.storeErr(err)
	}
	return st, nil
}

// ListItemStatuses resolves every listed item with two batched reads.
func (s *Service) ListItemStatuses(ctx context.Context, q db.ItemsQuery) ([]ItemStatus, error) {
	items, err := s.repo.ListItems(ctx, q)
	if err != nil {
		return nil, s.storeErr(err)
	}

	var limited []int64
	for _, it := range items {
		if it.IsTimeLimited {
			limited = append(limited, it.ID)
		}
	}
	open, err := s.repo.OpenRentalsByItem(ctx, limited)
	if err != nil {
		return nil, s.storeErr(err)
	}
	waiting, err := s.repo.WaitingCounts(ctx, limited)
	if err != nil {
		return nil, s.storeErr(err)
	}

	out := make([]ItemStatus, 0, len(items))
	for _, it := range items {
		st := ItemStatus{Item: it, Status: Available}
		if it.IsTimeLimited {
			if rt, ok := open[it.ID]; ok {
				id := rt.ID
				st.Status = Rented
				st.RentalID = &id
				st.ReturnDueDate = rt.ReturnDueDate
			}
			st.WaitingCount = waiting[it.ID]
		}
		out = append(out, st)
	}
	return out, nil
}
