package workflow

import (
	"github.com/talkincode/toughwms/internal/domain"
)

// GuardResult is the outcome of a transition guard. Guards are pure
// predicates over the document; they never mutate state or return errors.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Err converts the result to a GuardError when not allowed
func (r GuardResult) Err() error {
	if r.Allowed {
		return nil
	}
	return &GuardError{Reason: r.Reason}
}

func allow() GuardResult {
	return GuardResult{Allowed: true}
}

func deny(reason string) GuardResult {
	return GuardResult{Allowed: false, Reason: reason}
}

// ReceiptGuard decides whether a receipt may advance to target.
// Regressions (ready->draft, done->ready) are unconditional.
func ReceiptGuard(rec *domain.WmsReceipt, target string) GuardResult {
	switch target {
	case domain.ReceiptStatusReady:
		if rec.Status != domain.ReceiptStatusDraft {
			// done -> ready regression
			return allow()
		}
		if rec.SupplierId == 0 {
			return deny("Please select a supplier")
		}
		if rec.WarehouseId == 0 {
			return deny("Please select a destination warehouse")
		}
		// line items are optional until any exist
		for _, item := range rec.Items {
			if item.ProductId == 0 || item.QtyReceived <= 0 {
				return deny("Please ensure all items have a product and a received quantity")
			}
		}
		return allow()
	case domain.ReceiptStatusDone:
		if len(rec.Items) == 0 {
			return deny("Please add at least one item to receive")
		}
		for _, item := range rec.Items {
			if item.ProductId == 0 || item.QtyReceived <= 0 {
				return deny("Please ensure all items have a product and a received quantity")
			}
		}
		return allow()
	case domain.ReceiptStatusDraft:
		return allow()
	}
	return deny("Unknown receipt status")
}

// DeliveryGuard decides whether a delivery may advance to target.
func DeliveryGuard(del *domain.WmsDelivery, target string) GuardResult {
	switch target {
	case domain.DeliveryStatusPacked:
		if del.CustomerId == 0 {
			return deny("Please select a customer")
		}
		for _, item := range del.Items {
			if item.ProductId == 0 || item.QtyPicked <= 0 {
				return deny("Please ensure all items are picked")
			}
		}
		return allow()
	case domain.DeliveryStatusValidated:
		if len(del.Items) == 0 {
			return deny("Please add at least one item to deliver")
		}
		for _, item := range del.Items {
			if item.ProductId == 0 || item.QtyPicked <= 0 || item.QtyPacked <= 0 {
				return deny("Please ensure all items are picked and packed")
			}
			if item.QtyPacked > item.QtyPicked {
				return deny("Packed quantity cannot exceed picked quantity")
			}
		}
		return allow()
	}
	return deny("Unknown delivery status")
}

// ManufactureGuard decides whether a manufacturing order may advance to target.
func ManufactureGuard(mo *domain.WmsManufactureOrder, target string) GuardResult {
	switch target {
	case domain.MfgStatusConfirmed:
		if mo.ProductId == 0 {
			return deny("Please select a finished product")
		}
		if mo.Qty <= 0 {
			return deny("Please set the quantity to produce")
		}
		return allow()
	case domain.MfgStatusDone:
		for _, item := range mo.Items {
			if item.ProductId == 0 || item.Qty <= 0 {
				return deny("Please ensure all components have a product and a quantity")
			}
			if item.ProductId == mo.ProductId {
				return deny("A component cannot be the finished product itself")
			}
		}
		return allow()
	}
	return deny("Unknown manufacturing order status")
}
