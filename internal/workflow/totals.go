package workflow

import (
	"github.com/shopspring/decimal"
	"github.com/talkincode/toughwms/internal/domain"
)

// ReceiptTotal is the document value: sum of received qty x unit price,
// rounded to 2 decimal places.
func ReceiptTotal(items []domain.WmsReceiptItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.QtyReceived)))
	}
	return total.Round(2)
}

// DeliveryTotal values the packed quantity, not the picked one: packed
// is what actually ships.
func DeliveryTotal(items []domain.WmsDeliveryItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.QtyPacked)))
	}
	return total.Round(2)
}

// ManufactureTotal is the consumed component value for the full order
// quantity.
func ManufactureTotal(mo *domain.WmsManufactureOrder) decimal.Decimal {
	total := decimal.Zero
	for _, item := range mo.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(item.Qty * mo.Qty)))
	}
	return total.Round(2)
}
