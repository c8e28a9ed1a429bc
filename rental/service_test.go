package rental

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_rental_kiosk/db"
	"Gin_postgres_redis_rental_kiosk/models"
	"Gin_postgres_redis_rental_kiosk/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc   *Service
	repo  *db.Repo
	clock *testClock
	rec   *notify.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := db.NewRepo(gdb)
	clock := &testClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	rec := &notify.Recorder{}
	svc := NewService(repo,
		WithClock(clock.Now),
		WithNotifier(rec),
		WithDayLocation(time.UTC),
	)
	return &fixture{svc: svc, repo: repo, clock: clock, rec: rec}
}

func intPtr(v int) *int { return &v }

func (f *fixture) item(t *testing.T, in ItemInput) *models.Item {
	t.Helper()
	if in.Name == "" {
		in.Name = "Item"
	}
	it, err := f.svc.CreateItem(context.Background(), in)
	require.NoError(t, err)
	return it
}

func (f *fixture) timed(t *testing.T, minutes int, limit *int) *models.Item {
	t.Helper()
	return f.item(t, ItemInput{Name: "Console", Category: "game", IsTimeLimited: true, RentalTimeMinutes: intPtr(minutes), MaxRentalsPerUser: limit})
}

var userSeq int

func (f *fixture) user(t *testing.T, gender string) *models.User {
	t.Helper()
	userSeq++
	u, err := f.svc.RegisterUser(context.Background(), UserInput{
		Name:        "user",
		PhoneNumber: fmt.Sprintf("010-0000-%04d", userSeq),
		Gender:      gender,
		Consent:     true,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) openRentals(t *testing.T, itemID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.repo.DB.Model(&models.Rental{}).
		Where("item_id = ? AND is_returned = ?", itemID, false).Count(&n).Error)
	return n
}

func (f *fixture) queueLen(t *testing.T, itemID int64) int64 {
	t.Helper()
	n, err := f.repo.CountWaiting(context.Background(), itemID)
	require.NoError(t, err)
	return n
}

func one() *Party { return &Party{Male: 1} }

func TestRentNowConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)

	const n = 12
	users := make([]*models.User, n)
	for i := range users {
		users[i] = f.user(t, models.GenderMale)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for _, u := range users {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, err := f.svc.RentNow(ctx, RentRequest{UserID: uid, ItemID: it.ID, Party: one()})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			errs = append(errs, err)
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	for _, err := range errs {
		assert.Equal(t, ItemOccupied, KindOf(err), err.Error())
	}
	assert.Equal(t, int64(1), f.openRentals(t, it.ID))
}

func TestRentNowSetsDueDateAndSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	u := f.user(t, models.GenderFemale)

	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: &Party{Male: 2, Female: 1}})
	require.NoError(t, err)

	now := f.clock.Now().Unix()
	assert.Equal(t, now, rt.RentalDate)
	require.NotNil(t, rt.ReturnDueDate)
	assert.Equal(t, now+1800, *rt.ReturnDueDate)
	assert.False(t, rt.IsReturned)
	assert.Equal(t, 2, rt.MaleCount)
	assert.Equal(t, 1, rt.FemaleCount)
	assert.Equal(t, "Console", rt.ItemName)
	assert.Equal(t, "game", rt.ItemCategory)
	assert.Equal(t, u.PhoneNumber, rt.UserPhone)
	assert.True(t, f.rec.Has(notify.ItemOccupancyChanged, it.ID))

	// 快照不随档案修改变化
	_, err = f.svc.UpdateUser(ctx, u.ID, UserInput{Name: "renamed", PhoneNumber: u.PhoneNumber, Gender: models.GenderFemale})
	require.NoError(t, err)
	got, err := f.svc.FindRental(ctx, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, "user", got.UserName)
}

func TestRentNowNonTimeLimitedIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, ItemInput{Name: "Snack"})
	a := f.user(t, models.GenderMale)
	b := f.user(t, models.GenderMale)

	r1, err := f.svc.RentNow(ctx, RentRequest{UserID: a.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)
	assert.True(t, r1.IsReturned)
	assert.Nil(t, r1.ReturnDueDate)

	_, err = f.svc.RentNow(ctx, RentRequest{UserID: b.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err, "items without a time limit have no occupancy")

	st, err := f.svc.GetItemStatus(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, Available, st.Status)
	assert.Zero(t, st.WaitingCount)
}

func TestRentNowRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	u := f.user(t, models.GenderMale)

	_, err := f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: 9999, Party: one()})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.RentNow(ctx, RentRequest{UserID: 9999, ItemID: it.ID, Party: one()})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: &Party{}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: &Party{Male: -1, Female: 3}})
	assert.ErrorIs(t, err, ErrValidation)

	hidden := f.item(t, ItemInput{Name: "Hidden", IsTimeLimited: true, RentalTimeMinutes: intPtr(10), IsHidden: true})
	_, err = f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: hidden.ID, Party: one()})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, f.openRentals(t, it.ID), "rejections write nothing")
}

func TestAutomaticGenderCountOverridesParty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.item(t, ItemInput{Name: "Locker", IsTimeLimited: true, RentalTimeMinutes: intPtr(60), IsAutomaticGenderCount: true})
	u := f.user(t, models.GenderFemale)

	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: &Party{Male: 5, Female: 5}})
	require.NoError(t, err)
	assert.Equal(t, 0, rt.MaleCount)
	assert.Equal(t, 1, rt.FemaleCount)

	m := f.user(t, models.GenderMale)
	tk, err := f.svc.JoinQueue(ctx, QueueRequest{UserID: m.ID, ItemID: it.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, tk.Entry.MaleCount)
	assert.Equal(t, 0, tk.Entry.FemaleCount)
}

func TestDailyCapAtRentNow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, intPtr(1))
	u := f.user(t, models.GenderMale)

	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)
	_, err = f.svc.ReturnItem(ctx, rt.ID)
	require.NoError(t, err)

	_, err = f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: one()})
	assert.ErrorIs(t, err, ErrDailyCapExceeded)

	// 第二天重新计数
	f.clock.Advance(24 * time.Hour)
	_, err = f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: one()})
	assert.NoError(t, err)
}

func TestJoinQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	a := f.user(t, models.GenderMale)
	b := f.user(t, models.GenderFemale)

	ta, err := f.svc.JoinQueue(ctx, QueueRequest{UserID: a.ID, ItemID: it.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), ta.Position)
	assert.Equal(t, f.clock.Now().Unix(), ta.Entry.RequestDate)
	assert.True(t, f.rec.Has(notify.QueueChanged, it.ID))

	f.clock.Advance(time.Second)
	tb, err := f.svc.JoinQueue(ctx, QueueRequest{UserID: b.ID, ItemID: it.ID, Party: &Party{Female: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), tb.Position)
	assert.Equal(t, 2, tb.Entry.FemaleCount)

	_, err = f.svc.JoinQueue(ctx, QueueRequest{UserID: a.ID, ItemID: it.ID})
	assert.ErrorIs(t, err, ErrAlreadyQueued)
	assert.Equal(t, int64(2), f.queueLen(t, it.ID))

	_, err = f.svc.JoinQueue(ctx, QueueRequest{UserID: b.ID, ItemID: it.ID, Party: &Party{Male: -2}})
	assert.Equal(t, AlreadyQueued, KindOf(err), "duplicate is detected before the party is checked")

	plain := f.item(t, ItemInput{Name: "Water"})
	_, err = f.svc.JoinQueue(ctx, QueueRequest{UserID: a.ID, ItemID: plain.ID})
	assert.ErrorIs(t, err, ErrQueueNotSupported)
}

func TestJoinQueueConcurrentSameUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	u := f.user(t, models.GenderMale)

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.JoinQueue(ctx, QueueRequest{UserID: u.ID, ItemID: it.ID})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, AlreadyQueued, KindOf(err))
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(1), f.queueLen(t, it.ID))
}

func TestGrantServesQueueInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)

	var tickets []*Ticket
	for i := 0; i < 3; i++ {
		u := f.user(t, models.GenderMale)
		tk, err := f.svc.JoinQueue(ctx, QueueRequest{UserID: u.ID, ItemID: it.ID, Party: one()})
		require.NoError(t, err)
		tickets = append(tickets, tk)
		f.clock.Advance(time.Second)
	}

	rt, err := f.svc.GrantQueueEntry(ctx, tickets[0].Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets[0].Entry.UserID, rt.UserID)
	assert.Equal(t, 1, rt.MaleCount)

	for i, want := range []int64{1, 2} {
		tk, err := f.svc.QueuePosition(ctx, tickets[i+1].Entry.ID)
		require.NoError(t, err)
		assert.Equal(t, want, tk.Position)
	}
	_, err = f.svc.QueuePosition(ctx, tickets[0].Entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 物品仍在借出中，批准保持排队记录
	_, err = f.svc.GrantNext(ctx, it.ID)
	assert.ErrorIs(t, err, ErrItemOccupied)
	assert.Equal(t, int64(2), f.queueLen(t, it.ID))

	_, err = f.svc.ReturnItem(ctx, rt.ID)
	require.NoError(t, err)

	next, err := f.svc.GrantNext(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets[1].Entry.UserID, next.UserID)

	list, err := f.svc.ItemQueue(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tickets[2].Entry.ID, list[0].Entry.ID)
	assert.Equal(t, int64(1), list[0].Position)
}

func TestGrantCarriesQueuedParty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	u := f.user(t, models.GenderFemale)

	// 排队时人数可省略，批准后借用记录沿用 0/0
	tk, err := f.svc.JoinQueue(ctx, QueueRequest{UserID: u.ID, ItemID: it.ID})
	require.NoError(t, err)
	assert.Zero(t, tk.Entry.MaleCount+tk.Entry.FemaleCount)

	rt, err := f.svc.GrantQueueEntry(ctx, tk.Entry.ID)
	require.NoError(t, err)
	assert.Zero(t, rt.MaleCount)
	assert.Zero(t, rt.FemaleCount)
	assert.False(t, rt.IsReturned)
}

func TestGrantMissingEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)

	_, err := f.svc.GrantQueueEntry(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GrantNext(ctx, it.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGrantDailyCapDropsEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, intPtr(1))
	u := f.user(t, models.GenderMale)

	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)
	_, err = f.svc.ReturnItem(ctx, rt.ID)
	require.NoError(t, err)

	tk, err := f.svc.JoinQueue(ctx, QueueRequest{UserID: u.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)
	f.rec.Reset()

	_, err = f.svc.GrantQueueEntry(ctx, tk.Entry.ID)
	require.ErrorIs(t, err, ErrDailyCapExceeded)
	assert.Contains(t, AsError(err, "en").Message, "removed")

	assert.Zero(t, f.queueLen(t, it.ID), "the stale entry must not stay in the queue")
	assert.Zero(t, f.openRentals(t, it.ID))
	assert.True(t, f.rec.Has(notify.QueueChanged, it.ID))
}

func TestDisableTimeLimitCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	a := f.user(t, models.GenderMale)
	b := f.user(t, models.GenderMale)
	c := f.user(t, models.GenderFemale)

	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: a.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)
	for _, u := range []*models.User{b, c} {
		_, err := f.svc.JoinQueue(ctx, QueueRequest{UserID: u.ID, ItemID: it.ID})
		require.NoError(t, err)
	}
	f.clock.Advance(5 * time.Minute)
	f.rec.Reset()

	updated, err := f.svc.UpdateItem(ctx, it.ID, ItemInput{Name: it.Name, Category: it.Category, IsTimeLimited: false})
	require.NoError(t, err)
	assert.False(t, updated.IsTimeLimited)

	assert.Zero(t, f.openRentals(t, it.ID))
	assert.Zero(t, f.queueLen(t, it.ID))

	got, err := f.svc.FindRental(ctx, rt.ID)
	require.NoError(t, err)
	assert.True(t, got.IsReturned)
	assert.True(t, got.IsManualReturn)
	require.NotNil(t, got.ReturnDate)
	assert.Equal(t, f.clock.Now().Unix(), *got.ReturnDate)

	assert.True(t, f.rec.Has(notify.ItemOccupancyChanged, it.ID))
	assert.True(t, f.rec.Has(notify.QueueChanged, it.ID))
}

func TestDeleteItemCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	a := f.user(t, models.GenderMale)
	b := f.user(t, models.GenderMale)

	_, err := f.svc.RentNow(ctx, RentRequest{UserID: a.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)
	_, err = f.svc.JoinQueue(ctx, QueueRequest{UserID: b.ID, ItemID: it.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteItem(ctx, it.ID))
	assert.Zero(t, f.openRentals(t, it.ID))
	assert.Zero(t, f.queueLen(t, it.ID))

	_, err = f.svc.GetItemStatus(ctx, it.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteItem(ctx, it.ID), ErrNotFound)
}

func TestSweepIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	u := f.user(t, models.GenderMale)

	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	freed, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, freed, "due exactly now is not yet overdue")

	f.clock.Advance(time.Minute)
	freed, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{it.ID}, freed)
	first, err := f.svc.FindRental(ctx, rt.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	freed, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, freed)
	second, err := f.svc.FindRental(ctx, rt.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, second.IsReturned)
	assert.False(t, second.IsManualReturn)

	st, err := f.svc.GetItemStatus(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, Available, st.Status)
}

func TestRentNowSweepsFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 10, nil)
	a := f.user(t, models.GenderMale)
	b := f.user(t, models.GenderMale)

	_, err := f.svc.RentNow(ctx, RentRequest{UserID: a.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)
	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: b.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err, "the overdue rental is released before occupancy is checked")
	assert.Equal(t, b.ID, rt.UserID)
}

func TestExtendBlockedByWaiters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	a := f.user(t, models.GenderMale)
	b := f.user(t, models.GenderMale)

	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: a.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)
	tk, err := f.svc.JoinQueue(ctx, QueueRequest{UserID: b.ID, ItemID: it.ID})
	require.NoError(t, err)

	_, err = f.svc.ExtendRental(ctx, rt.ID)
	assert.ErrorIs(t, err, ErrExtendBlockedByWaiters)

	require.NoError(t, f.svc.CancelQueueEntry(ctx, tk.Entry.ID))
	assert.ErrorIs(t, f.svc.CancelQueueEntry(ctx, tk.Entry.ID), ErrNotFound)

	extended, err := f.svc.ExtendRental(ctx, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, *rt.ReturnDueDate+30*60, *extended.ReturnDueDate)

	_, err = f.svc.ReturnItem(ctx, rt.ID)
	require.NoError(t, err)
	_, err = f.svc.ExtendRental(ctx, rt.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExtendAfterTimeLimitDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	u := f.user(t, models.GenderMale)

	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)
	_, err = f.svc.UpdateItem(ctx, it.ID, ItemInput{Name: it.Name, Category: it.Category, IsTimeLimited: false})
	require.NoError(t, err)

	_, err = f.svc.ExtendRental(ctx, rt.ID)
	assert.Equal(t, ValidationError, KindOf(err))

	got, err := f.svc.FindRental(ctx, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, *rt.ReturnDueDate, *got.ReturnDueDate)
}

func TestReturnIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	it := f.timed(t, 30, nil)
	u := f.user(t, models.GenderMale)

	rt, err := f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: it.ID, Party: one()})
	require.NoError(t, err)

	first, err := f.svc.ReturnItem(ctx, rt.ID)
	require.NoError(t, err)
	assert.True(t, first.IsReturned)
	assert.True(t, first.IsManualReturn)

	f.clock.Advance(time.Minute)
	second, err := f.svc.ReturnItem(ctx, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.ReturnDate, *second.ReturnDate)

	_, err = f.svc.ReturnItem(ctx, 777)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEndToEndScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, ItemInput{Name: "A", IsTimeLimited: true, RentalTimeMinutes: intPtr(30), MaxRentalsPerUser: intPtr(2)})
	u1 := f.user(t, models.GenderMale)
	u2 := f.user(t, models.GenderFemale)

	r1, err := f.svc.RentNow(ctx, RentRequest{UserID: u1.ID, ItemID: a.ID, Party: one()})
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Unix()+1800, *r1.ReturnDueDate)

	_, err = f.svc.RentNow(ctx, RentRequest{UserID: u2.ID, ItemID: a.ID, Party: &Party{Female: 1}})
	assert.ErrorIs(t, err, ErrItemOccupied)

	tk, err := f.svc.JoinQueue(ctx, QueueRequest{UserID: u2.ID, ItemID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), tk.Position)

	st, err := f.svc.GetItemStatus(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, Rented, st.Status)
	assert.Equal(t, int64(1), st.WaitingCount)
	assert.Equal(t, r1.ReturnDueDate, st.ReturnDueDate)

	returned, err := f.svc.ReturnItem(ctx, r1.ID)
	require.NoError(t, err)
	assert.True(t, returned.IsReturned)

	r2, err := f.svc.GrantQueueEntry(ctx, tk.Entry.ID)
	require.NoError(t, err)
	assert.Equal(t, u2.ID, r2.UserID)
	assert.False(t, r2.IsReturned)
	assert.Zero(t, f.queueLen(t, a.ID))
	assert.Equal(t, int64(1), f.openRentals(t, a.ID))
}

func TestListItemStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rented := f.item(t, ItemInput{Name: "Rented", IsTimeLimited: true, RentalTimeMinutes: intPtr(30), DisplayOrder: 1})
	free := f.item(t, ItemInput{Name: "Free", IsTimeLimited: true, RentalTimeMinutes: intPtr(30), DisplayOrder: 2})
	plain := f.item(t, ItemInput{Name: "Plain", DisplayOrder: 3})
	u := f.user(t, models.GenderMale)
	w := f.user(t, models.GenderFemale)

	_, err := f.svc.RentNow(ctx, RentRequest{UserID: u.ID, ItemID: rented.ID, Party: one()})
	require.NoError(t, err)
	_, err = f.svc.JoinQueue(ctx, QueueRequest{UserID: w.ID, ItemID: rented.ID})
	require.NoError(t, err)

	list, err := f.svc.ListItemStatuses(ctx, db.ItemsQuery{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, rented.ID, list[0].Item.ID)
	assert.Equal(t, Rented, list[0].Status)
	assert.Equal(t, int64(1), list[0].WaitingCount)
	assert.NotNil(t, list[0].RentalID)

	assert.Equal(t, free.ID, list[1].Item.ID)
	assert.Equal(t, Available, list[1].Status)

	assert.Equal(t, plain.ID, list[2].Item.ID)
	assert.Equal(t, Available, list[2].Status)
}

func TestItemInputValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateItem(ctx, ItemInput{Name: "No time", IsTimeLimited: true})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateItem(ctx, ItemInput{Name: "Zero", IsTimeLimited: true, RentalTimeMinutes: intPtr(0)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateItem(ctx, ItemInput{Name: "Cap", MaxRentalsPerUser: intPtr(0)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateItem(ctx, ItemInput{Name: "  "})
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ValidationError, e.Kind)
	assert.Contains(t, e.Detail, "name")
}

func TestUserRegistration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.RegisterUser(ctx, UserInput{Name: "Kim", PhoneNumber: "010-1111-2222", Gender: "Female", BirthDate: "2001-04-05"})
	require.NoError(t, err)
	assert.Equal(t, models.GenderFemale, u.Gender)
	require.NotNil(t, u.BirthDate)

	_, err = f.svc.RegisterUser(ctx, UserInput{Name: "Kim", PhoneNumber: "01011112222", Gender: "female"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	found, err := f.svc.IdentifyUser(ctx, "Kim", "010 1111 2222")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = f.svc.IdentifyUser(ctx, "Kim", "01099999999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.RegisterUser(ctx, UserInput{Name: "Lee", PhoneNumber: "01033334444", Gender: "other"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.RegisterUser(ctx, UserInput{Name: "Lee", PhoneNumber: "01033334444", Gender: "male", BirthDate: "05/04/2001"})
	assert.ErrorIs(t, err, ErrValidation)
}
