package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"qrportal/internal/model"
	"qrportal/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newStore(t *testing.T) (RecordStore, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return New(db, NewAliasCache(nil, time.Hour, zap.NewNop().Sugar())), db
}

func TestFindByAlias(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	q := testutil.CreateQR(t, db, &model.QRCode{Alias: "promo", OwnerID: 1, TargetURL: "example.com"})

	got, err := s.FindByAlias(ctx, "promo")
	require.NoError(t, err)
	assert.Equal(t, q.ID, got.ID)

	_, err = s.FindByAlias(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_MakesRecordUnresolvable(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	q := testutil.CreateQR(t, db, &model.QRCode{Alias: "gone", OwnerID: 1})

	require.NoError(t, s.Delete(ctx, q.ID))

	_, err := s.FindByAlias(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByID(ctx, q.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, q.ID), ErrNotFound)

	exists, err := s.AliasExists(ctx, "gone")
	require.NoError(t, err)
	assert.True(t, exists, "已删除的别名仍然占用")
}

func TestIsOwnerPaused(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	paused := testutil.CreateUser(t, db, "paused", model.RoleUser, true)
	active := testutil.CreateUser(t, db, "active", model.RoleUser, false)

	got, err := s.IsOwnerPaused(ctx, paused.ID)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = s.IsOwnerPaused(ctx, active.ID)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = s.IsOwnerPaused(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestRecordScan(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	q := testutil.CreateQR(t, db, &model.QRCode{Alias: "count", OwnerID: 1, ScanCount: 5})

	err := s.RecordScan(ctx, &model.ScanEvent{QRID: q.ID, Alias: "count", ScannedAt: time.Now(), IP: "10.0.0.1"})
	require.NoError(t, err)

	got, err := s.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.ScanCount)

	events, err := s.ListScans(ctx, q.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "10.0.0.1", events[0].IP)
}

func TestRecordScan_DeletedRecordRollsBack(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	q := testutil.CreateQR(t, db, &model.QRCode{Alias: "late", OwnerID: 1})
	require.NoError(t, s.Delete(ctx, q.ID))

	err := s.RecordScan(ctx, &model.ScanEvent{QRID: q.ID, Alias: "late", ScannedAt: time.Now()})
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&model.ScanEvent{}).Count(&count)
	assert.Zero(t, count, "事务回滚后不应残留扫码日志")
}

func TestRecordScan_ConcurrentIncrements(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	q := testutil.CreateQR(t, db, &model.QRCode{Alias: "busy", OwnerID: 1})

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.RecordScan(ctx, &model.ScanEvent{QRID: q.ID, Alias: "busy", ScannedAt: time.Now()}))
		}()
	}
	wg.Wait()

	got, err := s.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.ScanCount)
}

func TestRecordScan_LimitHoldsUnderConcurrency(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	q := testutil.CreateQR(t, db, &model.QRCode{Alias: "last", OwnerID: 1, ScanLimit: 3, ScanCount: 2})

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		limited int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RecordScan(ctx, &model.ScanEvent{QRID: q.ID, Alias: "last", ScannedAt: time.Now()})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrLimitReached):
				limited++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, limited)

	got, err := s.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ScanCount)

	var count int64
	require.NoError(t, db.Model(&model.ScanEvent{}).Where("qr_id = ?", q.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "超出上限的扫码日志应随事务回滚")
}

func TestCreate_DuplicateAlias(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &model.QRCode{Alias: "dup", OwnerID: 1, Status: model.StatusActive}))
	err := s.Create(ctx, &model.QRCode{Alias: "dup", OwnerID: 2, Status: model.StatusActive})
	assert.ErrorIs(t, err, ErrAliasTaken)
}

func TestUpdate_IgnoresImmutableFields(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	q := testutil.CreateQR(t, db, &model.QRCode{Alias: "fixed", OwnerID: 1, ScanCount: 3})

	require.NoError(t, s.Update(ctx, q.ID, map[string]interface{}{
		"alias":      "changed",
		"scan_count": 0,
		"payload":    "new payload",
	}))

	got, err := s.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "fixed", got.Alias)
	assert.Equal(t, int64(3), got.ScanCount)
	assert.Equal(t, "new payload", got.Payload)

	require.NoError(t, s.SetStatus(ctx, q.ID, model.StatusPaused, true))
	got, err = s.FindByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaused, got.Status)
	assert.True(t, got.AdminLocked)
}

func TestListByOwnerAndScanTimes(t *testing.T) {
	s, db := newStore(t)
	ctx := context.Background()
	a := testutil.CreateQR(t, db, &model.QRCode{Alias: "a", OwnerID: 7})
	testutil.CreateQR(t, db, &model.QRCode{Alias: "b", OwnerID: 7})
	testutil.CreateQR(t, db, &model.QRCode{Alias: "c", OwnerID: 8})

	list, err := s.ListByOwner(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	now := time.Now()
	require.NoError(t, s.RecordScan(ctx, &model.ScanEvent{QRID: a.ID, ScannedAt: now.AddDate(0, 0, -40)}))
	require.NoError(t, s.RecordScan(ctx, &model.ScanEvent{QRID: a.ID, ScannedAt: now}))

	times, err := s.ScanTimes(ctx, a.ID, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Len(t, times, 1)
}

func TestAliasCache_NilSafe(t *testing.T) {
	var c *AliasCache
	_, ok := c.Get(context.Background(), "x")
	assert.False(t, ok)
	c.Set(context.Background(), "x", 1)
	c.Del(context.Background(), "x")
}
