package workflow

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/toughwms/internal/domain"
	"github.com/talkincode/toughwms/pkg/common"
)

func TestNextNumberSequence(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	number, err := NextNumber(db, domain.DocKindReceipt, now)
	require.NoError(t, err)
	assert.Equal(t, "REC/2024/0001", number)

	require.NoError(t, db.Create(&domain.WmsReceipt{
		ID: common.UUIDint64(), Number: "REC/2024/0001", Status: domain.ReceiptStatusDraft,
	}).Error)
	require.NoError(t, db.Create(&domain.WmsReceipt{
		ID: common.UUIDint64(), Number: "REC/2024/0007", Status: domain.ReceiptStatusDraft,
	}).Error)

	number, err = NextNumber(db, domain.DocKindReceipt, now)
	require.NoError(t, err)
	assert.Equal(t, "REC/2024/0008", number)
}

func TestNextNumberScopedByYear(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&domain.WmsDelivery{
		ID: common.UUIDint64(), Number: "DO/2023/0042", Status: domain.DeliveryStatusPicked,
	}).Error)

	number, err := NextNumber(db, domain.DocKindDelivery, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "DO/2024/0001", number)
}

func TestNextNumberSkipsMalformedSuffix(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&domain.WmsReceipt{
		ID: common.UUIDint64(), Number: "REC/2024/DRAFT", Status: domain.ReceiptStatusDraft,
	}).Error)
	require.NoError(t, db.Create(&domain.WmsReceipt{
		ID: common.UUIDint64(), Number: "REC/2024/0002", Status: domain.ReceiptStatusDraft,
	}).Error)

	number, err := NextNumber(db, domain.DocKindReceipt, now)
	require.NoError(t, err)
	assert.Equal(t, "REC/2024/0003", number)
}

func TestCreateReceiptNumbersSequential(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	year := time.Now().Year()
	for i := 1; i <= 3; i++ {
		rec := &domain.WmsReceipt{SupplierId: 1, WarehouseId: 1}
		require.NoError(t, svc.CreateReceipt(ctx, rec))
		assert.Equal(t, fmt.Sprintf("REC/%d/%04d", year, i), rec.Number)
	}
}

func TestConcurrentCreateNeverDuplicatesNumbers(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	const workers = 4
	var wg sync.WaitGroup
	results := make([]*domain.WmsReceipt, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := &domain.WmsReceipt{SupplierId: 1, WarehouseId: 1}
			errs[i] = svc.CreateReceipt(ctx, rec)
			results[i] = rec
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[results[i].Number], "duplicate number %s", results[i].Number)
		seen[results[i].Number] = true
	}
}
