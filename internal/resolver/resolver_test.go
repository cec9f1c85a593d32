package resolver

import (
	"context"
	"strings"
	"testing"
	"time"

	"qrportal/internal/model"
	"qrportal/internal/store"
	"qrportal/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidAlias(t *testing.T) {
	assert.True(t, ValidAlias("abc-DEF_123"))
	assert.False(t, ValidAlias(""))
	assert.False(t, ValidAlias("has space"))
	assert.False(t, ValidAlias("../etc"))
	assert.False(t, ValidAlias("emoji✓"))
	assert.False(t, ValidAlias(strings.Repeat("a", MaxAliasLength+1)))
}

func TestResolve(t *testing.T) {
	db := testutil.NewDB(t)
	s := store.New(db, store.NewAliasCache(nil, time.Hour, zap.NewNop().Sugar()))
	r := New(s, zap.NewNop().Sugar())
	ctx := context.Background()

	q := testutil.CreateQR(t, db, &model.QRCode{Alias: "menu", OwnerID: 1})

	got, err := r.Resolve(ctx, " menu ")
	require.NoError(t, err)
	assert.Equal(t, q.ID, got.ID)

	got, err = r.ResolveID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "menu", got.Alias)

	for _, alias := range []string{"", "   ", "no/slash", "unknown"} {
		_, err := r.Resolve(ctx, alias)
		assert.ErrorIs(t, err, store.ErrNotFound, alias)
	}
	_, err = r.ResolveID(ctx, 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolve_NotFoundHasNoSideEffects(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(store.New(db, nil), zap.NewNop().Sugar())

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), "ghost")
		assert.ErrorIs(t, err, store.ErrNotFound)
	}

	var records, events int64
	db.Model(&model.QRCode{}).Count(&records)
	db.Model(&model.ScanEvent{}).Count(&events)
	assert.Zero(t, records)
	assert.Zero(t, events)
}
