// Package rental is the kiosk's rental and waiting-queue engine.
//
// Every state-changing operation runs inside one database transaction that
// first locks the item row, then re-reads occupancy and queue state, then
// validates and writes. A refused operation leaves no partial writes.
// Change events go out only after the transaction has committed.
package rental

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/notify"

	"github.com/go-playground/validator/v10"
)

type Service struct {
	repo     *db.Repo
	notifier notify.Notifier
	log      *slog.Logger
	loc      *time.Location
	locale   string
	now      func() time.Time
	validate *validator.Validate
}

type Option func(*Service)

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDayLocation sets the time zone whose calendar day bounds daily caps.
func WithDayLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLocale(locale string) Option {
	return func(s *Service) {
		if SupportedLocale(locale) {
			s.locale = normalizeLocale(locale)
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo *db.Repo, opts ...Option) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	s := &Service{
		repo:     repo,
		notifier: notify.Nop{},
		log:      slog.Default(),
		loc:      time.Local,
		locale:   DefaultLocale,
		now:      time.Now,
		validate: v,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Locale() string { return s.locale }

func (s *Service) Repo() *db.Repo { return s.repo }

func (s *Service) epoch() int64 { return s.now().Unix() }

// publish is fire-and-forget; the mutation it describes is already durable.
func (s *Service) publish(ctx context.Context, events ...notify.Event) {
	if len(events) == 0 {
		return
	}
	if err := s.notifier.Publish(ctx, events...); err != nil {
		s.log.Warn("publish change events failed", "error", err, "events", len(events))
	}
}

// dailyCapReached counts the user's rentals of the item in the current day
// window against the item's cap. Items without a cap never reach it.
func (s *Service) dailyCapReached(ctx context.Context, tx *db.Repo, userID int64, itemID int64, limit *int) (bool, error) {
	if limit == nil {
		return false, nil
	}
	from, to := DayWindow(s.now(), s.loc)
	n, err := tx.CountUserRentals(ctx, userID, itemID, from, to)
	if err != nil {
		return false, err
	}
	return n >= int64(*limit), nil
}
