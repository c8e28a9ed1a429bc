package rental

import (
	"context"

	"Gin_postgres_redis_rental_kiosk/notify"
)

// Sweep force-returns every open time-limited rental whose due date has
// passed and reports the freed items. Running it twice in a row changes
// nothing the second time.
func (s *Service) Sweep(ctx context.Context) ([]int64, error) {
	freed, err := s.repo.ReturnExpired(ctx, s.epoch())
	if err != nil {
		return nil, s.storeErr(err)
	}
	if len(freed) == 0 {
		return freed, nil
	}

	events := make([]notify.Event, 0, len(freed))
	for _, id := range freed {
		events = append(events, notify.Occupancy(id))
	}
	s.publish(ctx, events...)
	s.log.Info("expired rentals returned", "items", freed)
	return freed, nil
}

// SweepBestEffort runs a sweep and swallows its failure. The caller then
// works on whatever state the store has.
func (s *Service) SweepBestEffort(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		s.log.Warn("expiry sweep failed, continuing", "error", err)
	}
}
