package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/talkincode/toughwms/internal/domain"
)

func TestReceiptGuardDraftToReady(t *testing.T) {
	rec := &domain.WmsReceipt{Status: domain.ReceiptStatusDraft}

	res := ReceiptGuard(rec, domain.ReceiptStatusReady)
	assert.False(t, res.Allowed)
	assert.Equal(t, "Please select a supplier", res.Reason)

	rec.SupplierId = 100
	res = ReceiptGuard(rec, domain.ReceiptStatusReady)
	assert.False(t, res.Allowed)
	assert.Equal(t, "Please select a destination warehouse", res.Reason)

	rec.WarehouseId = 200
	assert.True(t, ReceiptGuard(rec, domain.ReceiptStatusReady).Allowed)

	// once items exist they must be complete
	rec.Items = []domain.WmsReceiptItem{{ProductId: 1, QtyReceived: 0}}
	assert.False(t, ReceiptGuard(rec, domain.ReceiptStatusReady).Allowed)
	rec.Items[0].QtyReceived = 3
	assert.True(t, ReceiptGuard(rec, domain.ReceiptStatusReady).Allowed)
}

func TestReceiptGuardReadyToDone(t *testing.T) {
	rec := &domain.WmsReceipt{
		Status:      domain.ReceiptStatusReady,
		SupplierId:  100,
		WarehouseId: 200,
	}

	// empty line list is not valid for done
	res := ReceiptGuard(rec, domain.ReceiptStatusDone)
	assert.False(t, res.Allowed)

	rec.Items = []domain.WmsReceiptItem{
		{ProductId: 1, QtyReceived: 10},
		{ProductId: 2, QtyReceived: 0},
	}
	res = ReceiptGuard(rec, domain.ReceiptStatusDone)
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "received quantity")

	rec.Items[1].QtyReceived = 5
	assert.True(t, ReceiptGuard(rec, domain.ReceiptStatusDone).Allowed)

	// missing product reference fails too
	rec.Items[0].ProductId = 0
	assert.False(t, ReceiptGuard(rec, domain.ReceiptStatusDone).Allowed)
}

func TestReceiptGuardRegressionsUnconditional(t *testing.T) {
	rec := &domain.WmsReceipt{Status: domain.ReceiptStatusReady}
	assert.True(t, ReceiptGuard(rec, domain.ReceiptStatusDraft).Allowed)

	rec.Status = domain.ReceiptStatusDone
	assert.True(t, ReceiptGuard(rec, domain.ReceiptStatusReady).Allowed)
}

func TestDeliveryGuardPickedToPacked(t *testing.T) {
	del := &domain.WmsDelivery{Status: domain.DeliveryStatusPicked}

	res := DeliveryGuard(del, domain.DeliveryStatusPacked)
	assert.False(t, res.Allowed)
	assert.Equal(t, "Please select a customer", res.Reason)

	del.CustomerId = 300
	del.Items = []domain.WmsDeliveryItem{{ProductId: 1, QtyPicked: 0}}
	assert.False(t, DeliveryGuard(del, domain.DeliveryStatusPacked).Allowed)

	del.Items[0].QtyPicked = 5
	assert.True(t, DeliveryGuard(del, domain.DeliveryStatusPacked).Allowed)
}

func TestDeliveryGuardPackedToValidated(t *testing.T) {
	del := &domain.WmsDelivery{
		Status:     domain.DeliveryStatusPacked,
		CustomerId: 300,
		Items: []domain.WmsDeliveryItem{
			{ProductId: 1, QtyPicked: 5, QtyPacked: 0},
		},
	}
	res := DeliveryGuard(del, domain.DeliveryStatusValidated)
	assert.False(t, res.Allowed)
	assert.Equal(t, "Please ensure all items are picked and packed", res.Reason)

	del.Items[0].QtyPacked = 7
	res = DeliveryGuard(del, domain.DeliveryStatusValidated)
	assert.False(t, res.Allowed)
	assert.Equal(t, "Packed quantity cannot exceed picked quantity", res.Reason)

	del.Items[0].QtyPacked = 5
	assert.True(t, DeliveryGuard(del, domain.DeliveryStatusValidated).Allowed)

	del.Items = nil
	assert.False(t, DeliveryGuard(del, domain.DeliveryStatusValidated).Allowed)
}

func TestManufactureGuard(t *testing.T) {
	mo := &domain.WmsManufactureOrder{Status: domain.MfgStatusDraft}
	assert.False(t, ManufactureGuard(mo, domain.MfgStatusConfirmed).Allowed)

	mo.ProductId = 9
	assert.False(t, ManufactureGuard(mo, domain.MfgStatusConfirmed).Allowed)

	mo.Qty = 4
	assert.True(t, ManufactureGuard(mo, domain.MfgStatusConfirmed).Allowed)

	mo.Status = domain.MfgStatusConfirmed
	mo.Items = []domain.WmsManufactureComponent{{ProductId: 9, Qty: 1, Price: decimal.New(1, 0)}}
	res := ManufactureGuard(mo, domain.MfgStatusDone)
	assert.False(t, res.Allowed)
	assert.Equal(t, "A component cannot be the finished product itself", res.Reason)

	mo.Items[0].ProductId = 10
	assert.True(t, ManufactureGuard(mo, domain.MfgStatusDone).Allowed)
}

func TestGuardResultErr(t *testing.T) {
	assert.NoError(t, allow().Err())
	err := deny("nope").Err()
	assert.Error(t, err)
	assert.True(t, IsGuardError(err))
	assert.Equal(t, "nope", err.Error())
}
