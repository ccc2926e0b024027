package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ezpay/settlement-service/internal/codec"
	"github.com/ezpay/settlement-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, store *MemoryStore, cdc *codec.Codec, balance int64) int64 {
	t.Helper()
	account := &models.Account{
		Username: cdc.EncodeText("user"),
		Balance:  cdc.EncodeDecimal(decimal.NewFromInt(balance)),
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account.ID
}

func TestMemoryStoreApplyTransfer(t *testing.T) {
	cdc, err := codec.New("KEY")
	require.NoError(t, err)
	store := NewMemoryStore(cdc)

	src := seedAccount(t, store, cdc, 1000)
	dst := seedAccount(t, store, cdc, 0)

	require.NoError(t, store.ApplyTransfer(context.Background(), src, dst, decimal.NewFromInt(300)))

	sourceRow, err := store.FindAccountByID(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, cdc.DecodeDecimal(sourceRow.Balance).Equal(decimal.NewFromInt(700)))

	destRow, err := store.FindAccountByID(context.Background(), dst)
	require.NoError(t, err)
	assert.True(t, cdc.DecodeDecimal(destRow.Balance).Equal(decimal.NewFromInt(300)))
}

func TestMemoryStoreApplyTransferOverdraw(t *testing.T) {
	cdc, err := codec.New("KEY")
	require.NoError(t, err)
	store := NewMemoryStore(cdc)

	src := seedAccount(t, store, cdc, 100)
	dst := seedAccount(t, store, cdc, 0)

	err = store.ApplyTransfer(context.Background(), src, dst, decimal.NewFromInt(101))
	require.Error(t, err)

	// Neither balance moved.
	sourceRow, err := store.FindAccountByID(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, cdc.DecodeDecimal(sourceRow.Balance).Equal(decimal.NewFromInt(100)))
}

func TestMemoryStoreApplyTransferUnknownAccount(t *testing.T) {
	cdc, err := codec.New("KEY")
	require.NoError(t, err)
	store := NewMemoryStore(cdc)
	src := seedAccount(t, store, cdc, 100)

	err = store.ApplyTransfer(context.Background(), src, 999, decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, ErrNotFound))
}

// Concurrent transfers over the same accounts must not lose updates.
func TestMemoryStoreApplyTransferConcurrent(t *testing.T) {
	cdc, err := codec.New("KEY")
	require.NoError(t, err)
	store := NewMemoryStore(cdc)

	src := seedAccount(t, store, cdc, 10_000)
	dst := seedAccount(t, store, cdc, 0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.ApplyTransfer(context.Background(), src, dst, decimal.NewFromInt(10))
		}()
	}
	wg.Wait()

	sourceRow, err := store.FindAccountByID(context.Background(), src)
	require.NoError(t, err)
	destRow, err := store.FindAccountByID(context.Background(), dst)
	require.NoError(t, err)
	assert.True(t, cdc.DecodeDecimal(sourceRow.Balance).Equal(decimal.NewFromInt(9000)))
	assert.True(t, cdc.DecodeDecimal(destRow.Balance).Equal(decimal.NewFromInt(1000)))
}

func TestMemoryStoreSetBlacklisted(t *testing.T) {
	cdc, err := codec.New("KEY")
	require.NoError(t, err)
	store := NewMemoryStore(cdc)
	id := seedAccount(t, store, cdc, 500)

	require.NoError(t, store.SetBlacklisted(context.Background(), id, true))

	account, err := store.FindAccountByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, account.Blacklisted)
	// Only the flag changed.
	assert.True(t, cdc.DecodeDecimal(account.Balance).Equal(decimal.NewFromInt(500)))

	err = store.SetBlacklisted(context.Background(), 999, true)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreFindSamePairSameDay(t *testing.T) {
	cdc, err := codec.New("KEY")
	require.NoError(t, err)
	store := NewMemoryStore(cdc)

	day := time.Date(2024, 9, 2, 12, 0, 0, 0, time.Local)
	seed := func(sourceID, destID int64, ts time.Time) {
		require.NoError(t, store.CreateTransaction(context.Background(), &models.Transaction{
			Amount:        cdc.EncodeDecimal(decimal.NewFromInt(10)),
			SourceID:      sourceID,
			DestinationID: destID,
			Time:          ts,
		}))
	}

	seed(1, 2, day)                    // match
	seed(1, 2, day.Add(-2*time.Hour))  // match
	seed(2, 1, day)                    // reversed pair, excluded
	seed(1, 3, day)                    // other destination, excluded
	seed(1, 2, day.AddDate(0, 0, -1))  // previous day, excluded
	seed(1, 2, day.Add(12*time.Hour))  // 24:00 next day, excluded

	got, err := store.FindSamePairSameDay(context.Background(), 1, 2, day)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
