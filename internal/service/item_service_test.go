package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consignment-service/internal/entity"
)

func TestItemService_SubmitItem(t *testing.T) {
	_, rdb := newRedis(t)
	store := newFakeItemStore()
	svc := NewItemService(store, rdb)

	item, err := svc.SubmitItem(context.Background(), 7, Submission{Title: " Wool coat ", EstimatedValue: 120.5})
	require.NoError(t, err)

	assert.Equal(t, 1, item.ID)
	assert.Equal(t, "Wool coat", item.Title)
	assert.Equal(t, int64(12050), item.EstimatedValueCents)
	assert.Equal(t, entity.ItemPending, item.Status)
	assert.NotEmpty(t, item.IdempotentKey)
}

func TestItemService_SubmitItem_BelowFloor(t *testing.T) {
	_, rdb := newRedis(t)
	store := newFakeItemStore()
	svc := NewItemService(store, rdb)

	_, err := svc.SubmitItem(context.Background(), 7, Submission{Title: "Scarf", EstimatedValue: 49.99})
	require.ErrorIs(t, err, ErrIneligible)

	var inel *IneligibleError
	require.True(t, errors.As(err, &inel))
	assert.Contains(t, inel.Message, "€50")
	assert.Contains(t, inel.Reason, "handling costs")
	assert.Empty(t, store.items)
}

func TestItemService_SubmitItem_InvalidArgument(t *testing.T) {
	_, rdb := newRedis(t)
	svc := NewItemService(newFakeItemStore(), rdb)

	_, err := svc.SubmitItem(context.Background(), 7, Submission{Title: "Coat", EstimatedValue: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.SubmitItem(context.Background(), 7, Submission{Title: "  ", EstimatedValue: 100})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestItemService_SubmitItem_Idempotent(t *testing.T) {
	_, rdb := newRedis(t)
	svc := NewItemService(newFakeItemStore(), rdb)
	sub := Submission{Title: "Coat", EstimatedValue: 100, IdempotentKey: "abc"}

	_, err := svc.SubmitItem(context.Background(), 7, sub)
	require.NoError(t, err)

	_, err = svc.SubmitItem(context.Background(), 7, sub)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestItemService_SubmitItem_ReleasesKeyOnFailure(t *testing.T) {
	mr, rdb := newRedis(t)
	store := newFakeItemStore()
	store.createErr = errors.New("db down")
	svc := NewItemService(store, rdb)

	_, err := svc.SubmitItem(context.Background(), 7, Submission{Title: "Coat", EstimatedValue: 100, IdempotentKey: "abc"})
	require.Error(t, err)
	assert.False(t, mr.Exists("idempotent-key:abc"))
}

func TestItemService_ReviewItem(t *testing.T) {
	_, rdb := newRedis(t)
	store := newFakeItemStore(
		&entity.Item{ID: 1, ConsignorID: 7, Status: entity.ItemPending},
		&entity.Item{ID: 2, ConsignorID: 7, Status: entity.ItemPending},
	)
	svc := NewItemService(store, rdb)
	ctx := context.Background()

	item, err := svc.ReviewItem(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, entity.ItemApproved, item.Status)

	item, err = svc.ReviewItem(ctx, 2, false)
	require.NoError(t, err)
	assert.Equal(t, entity.ItemRejected, item.Status)

	_, err = svc.ReviewItem(ctx, 1, false)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.ReviewItem(ctx, 99, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemService_WithdrawItem(t *testing.T) {
	_, rdb := newRedis(t)
	store := newFakeItemStore(
		&entity.Item{ID: 1, ConsignorID: 7, Status: entity.ItemApproved},
		&entity.Item{ID: 2, ConsignorID: 7, Status: entity.ItemSold},
	)
	svc := NewItemService(store, rdb)
	ctx := context.Background()

	_, err := svc.WithdrawItem(ctx, 8, 1)
	assert.ErrorIs(t, err, ErrForbidden)

	item, err := svc.WithdrawItem(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.ItemWithdrawn, item.Status)

	_, err = svc.WithdrawItem(ctx, 7, 2)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestItemService_ListItems_Empty(t *testing.T) {
	_, rdb := newRedis(t)
	svc := NewItemService(newFakeItemStore(), rdb)

	items, err := svc.ListItems(context.Background(), entity.ItemFilter{ConsignorID: 7})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestItemService_WritesClearDashboardCache(t *testing.T) {
	mr, rdb := newRedis(t)
	store := newFakeItemStore(
		&entity.Item{ID: 1, ConsignorID: 7, Status: entity.ItemPending},
		&entity.Item{ID: 2, ConsignorID: 7, Status: entity.ItemApproved},
	)
	svc := NewItemService(store, rdb)
	ctx := context.Background()
	key := DashboardCacheKey(7)

	require.NoError(t, mr.Set(key, "{}"))
	_, err := svc.SubmitItem(ctx, 7, Submission{Title: "Coat", EstimatedValue: 100})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	require.NoError(t, mr.Set(key, "{}"))
	_, err = svc.ReviewItem(ctx, 1, true)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	require.NoError(t, mr.Set(key, "{}"))
	_, err = svc.WithdrawItem(ctx, 7, 2)
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))
}
