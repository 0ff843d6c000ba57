package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/talkincode/toughwms/internal/domain"
)

func TestReceiptTotal(t *testing.T) {
	items := []domain.WmsReceiptItem{
		{QtyReceived: 10, Price: decimal.RequireFromString("5.00")},
		{QtyReceived: 3, Price: decimal.RequireFromString("1.99")},
	}
	assert.Equal(t, "55.97", ReceiptTotal(items).StringFixed(2))
	assert.Equal(t, "0.00", ReceiptTotal(nil).StringFixed(2))
}

func TestDeliveryTotalUsesPackedQty(t *testing.T) {
	items := []domain.WmsDeliveryItem{
		{QtyPicked: 5, QtyPacked: 5, Price: decimal.RequireFromString("2.00")},
		{QtyPicked: 9, QtyPacked: 4, Price: decimal.RequireFromString("0.50")},
	}
	// packed is what ships: 5*2.00 + 4*0.50
	assert.Equal(t, "12.00", DeliveryTotal(items).StringFixed(2))
}

func TestTotalNoFloatAccumulationError(t *testing.T) {
	// 0.1 added 1000 times drifts with float64, not with decimal
	items := make([]domain.WmsReceiptItem, 1000)
	for i := range items {
		items[i] = domain.WmsReceiptItem{QtyReceived: 1, Price: decimal.RequireFromString("0.10")}
	}
	assert.Equal(t, "100.00", ReceiptTotal(items).StringFixed(2))
}

func TestManufactureTotal(t *testing.T) {
	mo := &domain.WmsManufactureOrder{
		Qty: 3,
		Items: []domain.WmsManufactureComponent{
			{Qty: 2, Price: decimal.RequireFromString("1.25")},
		},
	}
	// 2 components x 3 units x 1.25
	assert.Equal(t, "7.50", ManufactureTotal(mo).StringFixed(2))
}
