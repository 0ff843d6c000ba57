package workflow

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/toughwms/internal/domain"
)

func TestReceiptFlowIncreasesStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productA := seedProduct(t, db, "SKU-A", 0)

	rec := &domain.WmsReceipt{SupplierId: 1, WarehouseId: 1}
	require.NoError(t, svc.CreateReceipt(ctx, rec))
	assert.Equal(t, domain.ReceiptStatusDraft, rec.Status)

	_, err := svc.UpdateReceiptItems(ctx, rec.ID, []domain.WmsReceiptItem{
		{ProductId: productA.ID, QtyReceived: 10, Price: decimal.RequireFromString("5.00")},
	})
	require.NoError(t, err)

	_, err = svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusReady)
	require.NoError(t, err)

	done, err := svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusDone)
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStatusDone, done.Status)

	assert.EqualValues(t, 10, onHand(t, db, productA.ID))
	assert.Equal(t, "50.00", ReceiptTotal(done.Items).StringFixed(2))

	// ledger has exactly one movement for the receipt
	var count int64
	db.Model(&domain.WmsStockMovement{}).
		Where("doc_kind = ? AND doc_id = ?", domain.DocKindReceipt, rec.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestReceiptGuardFailureLeavesStatusUnchanged(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productA := seedProduct(t, db, "SKU-A", 0)

	rec := &domain.WmsReceipt{SupplierId: 1, WarehouseId: 1}
	require.NoError(t, svc.CreateReceipt(ctx, rec))
	_, err := svc.UpdateReceiptItems(ctx, rec.ID, []domain.WmsReceiptItem{
		{ProductId: productA.ID, QtyReceived: 0},
	})
	require.NoError(t, err)

	// draft -> ready now requires the existing item to be complete
	_, err = svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusReady)
	require.Error(t, err)
	assert.True(t, IsGuardError(err))

	got, err := svc.GetReceipt(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStatusDraft, got.Status)
	assert.EqualValues(t, 0, onHand(t, db, productA.ID))
}

func TestReceiptDoneReentryDoesNotDoubleCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productA := seedProduct(t, db, "SKU-A", 0)

	rec := &domain.WmsReceipt{SupplierId: 1, WarehouseId: 1}
	require.NoError(t, svc.CreateReceipt(ctx, rec))
	_, err := svc.UpdateReceiptItems(ctx, rec.ID, []domain.WmsReceiptItem{
		{ProductId: productA.ID, QtyReceived: 10, Price: decimal.RequireFromString("5.00")},
	})
	require.NoError(t, err)
	_, err = svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusReady)
	require.NoError(t, err)
	_, err = svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusDone)
	require.NoError(t, err)

	// same-status transition is a no-op
	_, err = svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusDone)
	require.NoError(t, err)
	assert.EqualValues(t, 10, onHand(t, db, productA.ID))

	// regress and re-enter done: adjustment is not re-applied
	_, err = svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusReady)
	require.NoError(t, err)
	_, err = svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusDone)
	require.NoError(t, err)
	assert.EqualValues(t, 10, onHand(t, db, productA.ID))
}

func TestReceiptItemEditLockedWhenDone(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productA := seedProduct(t, db, "SKU-A", 0)

	rec := &domain.WmsReceipt{SupplierId: 1, WarehouseId: 1}
	require.NoError(t, svc.CreateReceipt(ctx, rec))
	_, err := svc.UpdateReceiptItems(ctx, rec.ID, []domain.WmsReceiptItem{
		{ProductId: productA.ID, QtyReceived: 1},
	})
	require.NoError(t, err)
	_, err = svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusReady)
	require.NoError(t, err)
	_, err = svc.TransitionReceipt(ctx, rec.ID, domain.ReceiptStatusDone)
	require.NoError(t, err)

	_, err = svc.UpdateReceiptItems(ctx, rec.ID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentLocked)
}

func TestDeliveryFlowDecreasesStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productB := seedProduct(t, db, "SKU-B", 20)

	del := &domain.WmsDelivery{CustomerId: 2}
	require.NoError(t, svc.CreateDelivery(ctx, del))
	assert.Equal(t, domain.DeliveryStatusPicked, del.Status)

	_, err := svc.UpdateDeliveryItems(ctx, del.ID, []domain.WmsDeliveryItem{
		{ProductId: productB.ID, QtyPicked: 5, QtyPacked: 5, Price: decimal.RequireFromString("2.00")},
	})
	require.NoError(t, err)

	_, err = svc.TransitionDelivery(ctx, del.ID, domain.DeliveryStatusPacked)
	require.NoError(t, err)
	validated, err := svc.TransitionDelivery(ctx, del.ID, domain.DeliveryStatusValidated)
	require.NoError(t, err)

	assert.EqualValues(t, 15, onHand(t, db, productB.ID))
	assert.Equal(t, "10.00", DeliveryTotal(validated.Items).StringFixed(2))
}

func TestDeliveryPackedOverPickedRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productB := seedProduct(t, db, "SKU-B", 20)

	del := &domain.WmsDelivery{CustomerId: 2}
	require.NoError(t, svc.CreateDelivery(ctx, del))

	_, err := svc.UpdateDeliveryItems(ctx, del.ID, []domain.WmsDeliveryItem{
		{ProductId: productB.ID, QtyPicked: 5, QtyPacked: 7},
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	// nothing stored
	got, err := svc.GetDelivery(ctx, del.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.EqualValues(t, 20, onHand(t, db, productB.ID))
}

func TestDeliveryInsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productB := seedProduct(t, db, "SKU-B", 3)

	del := &domain.WmsDelivery{CustomerId: 2}
	require.NoError(t, svc.CreateDelivery(ctx, del))
	_, err := svc.UpdateDeliveryItems(ctx, del.ID, []domain.WmsDeliveryItem{
		{ProductId: productB.ID, QtyPicked: 5, QtyPacked: 5},
	})
	require.NoError(t, err)
	_, err = svc.TransitionDelivery(ctx, del.ID, domain.DeliveryStatusPacked)
	require.NoError(t, err)

	_, err = svc.TransitionDelivery(ctx, del.ID, domain.DeliveryStatusValidated)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// status and stock both rolled back
	got, err := svc.GetDelivery(ctx, del.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusPacked, got.Status)
	assert.EqualValues(t, 3, onHand(t, db, productB.ID))

	var count int64
	db.Model(&domain.WmsStockMovement{}).
		Where("doc_kind = ? AND doc_id = ?", domain.DocKindDelivery, del.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDeliveryAggregatesRepeatedProductLines(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productB := seedProduct(t, db, "SKU-B", 20)

	del := &domain.WmsDelivery{CustomerId: 2}
	require.NoError(t, svc.CreateDelivery(ctx, del))
	_, err := svc.UpdateDeliveryItems(ctx, del.ID, []domain.WmsDeliveryItem{
		{ProductId: productB.ID, QtyPicked: 3, QtyPacked: 3},
		{ProductId: productB.ID, QtyPicked: 4, QtyPacked: 4},
	})
	require.NoError(t, err)
	_, err = svc.TransitionDelivery(ctx, del.ID, domain.DeliveryStatusPacked)
	require.NoError(t, err)
	_, err = svc.TransitionDelivery(ctx, del.ID, domain.DeliveryStatusValidated)
	require.NoError(t, err)

	assert.EqualValues(t, 13, onHand(t, db, productB.ID))
}

func TestTotalSurvivesSaveReload(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productA := seedProduct(t, db, "SKU-A", 0)

	items := []domain.WmsReceiptItem{
		{ProductId: productA.ID, QtyReceived: 7, Price: decimal.RequireFromString("1.99")},
		{ProductId: productA.ID, QtyReceived: 2, Price: decimal.RequireFromString("10.05")},
	}
	before := ReceiptTotal(items).StringFixed(2)

	rec := &domain.WmsReceipt{SupplierId: 1, WarehouseId: 1}
	require.NoError(t, svc.CreateReceipt(ctx, rec))
	_, err := svc.UpdateReceiptItems(ctx, rec.ID, items)
	require.NoError(t, err)

	reloaded, err := svc.GetReceipt(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, before, ReceiptTotal(reloaded.Items).StringFixed(2))
}

func TestManufactureFlowConsumesAndProduces(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	finished := seedProduct(t, db, "SKU-FIN", 0)
	compA := seedProduct(t, db, "SKU-CA", 10)
	compB := seedProduct(t, db, "SKU-CB", 10)

	mo := &domain.WmsManufactureOrder{ProductId: finished.ID, Qty: 3}
	require.NoError(t, svc.CreateManufactureOrder(ctx, mo))
	assert.Contains(t, mo.Number, "MO/")

	_, err := svc.UpdateManufactureComponents(ctx, mo.ID, []domain.WmsManufactureComponent{
		{ProductId: compA.ID, Qty: 2},
		{ProductId: compB.ID, Qty: 1},
	})
	require.NoError(t, err)

	_, err = svc.TransitionManufactureOrder(ctx, mo.ID, domain.MfgStatusConfirmed)
	require.NoError(t, err)
	_, err = svc.TransitionManufactureOrder(ctx, mo.ID, domain.MfgStatusDone)
	require.NoError(t, err)

	assert.EqualValues(t, 3, onHand(t, db, finished.ID))
	assert.EqualValues(t, 4, onHand(t, db, compA.ID))
	assert.EqualValues(t, 7, onHand(t, db, compB.ID))

	// re-running the terminal transition is a no-op
	_, err = svc.TransitionManufactureOrder(ctx, mo.ID, domain.MfgStatusDone)
	require.NoError(t, err)
	assert.EqualValues(t, 3, onHand(t, db, finished.ID))
}

func TestAdjustProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	productA := seedProduct(t, db, "SKU-A", 5)

	require.NoError(t, svc.AdjustProduct(ctx, productA.ID, 3, "cycle count", "admin"))
	assert.EqualValues(t, 8, onHand(t, db, productA.ID))

	err := svc.AdjustProduct(ctx, productA.ID, -20, "oops", "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.EqualValues(t, 8, onHand(t, db, productA.ID))

	err = svc.AdjustProduct(ctx, productA.ID, 0, "", "admin")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestAdjustUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	err := svc.AdjustProduct(context.Background(), 424242, 1, "ghost", "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
