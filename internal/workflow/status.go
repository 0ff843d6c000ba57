package workflow

import (
	"github.com/talkincode/toughwms/internal/domain"
)

// transition tables are the single source of truth for document status
// progression. The key is the current status, the value the set of
// statuses reachable from it.
var (
	receiptTransitions = map[string][]string{
		domain.ReceiptStatusDraft: {domain.ReceiptStatusReady},
		domain.ReceiptStatusReady: {domain.ReceiptStatusDraft, domain.ReceiptStatusDone},
		domain.ReceiptStatusDone:  {domain.ReceiptStatusReady},
	}

	deliveryTransitions = map[string][]string{
		domain.DeliveryStatusPicked:    {domain.DeliveryStatusPacked},
		domain.DeliveryStatusPacked:    {domain.DeliveryStatusValidated},
		domain.DeliveryStatusValidated: {},
	}

	manufactureTransitions = map[string][]string{
		domain.MfgStatusDraft:     {domain.MfgStatusConfirmed},
		domain.MfgStatusConfirmed: {domain.MfgStatusDone},
		domain.MfgStatusDone:      {},
	}
)

func transitionTable(kind string) map[string][]string {
	switch kind {
	case domain.DocKindReceipt:
		return receiptTransitions
	case domain.DocKindDelivery:
		return deliveryTransitions
	case domain.DocKindManufacture:
		return manufactureTransitions
	}
	return nil
}

// InitialStatus returns the status a new document of the kind starts in
func InitialStatus(kind string) string {
	switch kind {
	case domain.DocKindReceipt:
		return domain.ReceiptStatusDraft
	case domain.DocKindDelivery:
		return domain.DeliveryStatusPicked
	case domain.DocKindManufacture:
		return domain.MfgStatusDraft
	}
	return ""
}

// TerminalStatus returns the stock-effecting terminal status of the kind
func TerminalStatus(kind string) string {
	switch kind {
	case domain.DocKindReceipt:
		return domain.ReceiptStatusDone
	case domain.DocKindDelivery:
		return domain.DeliveryStatusValidated
	case domain.DocKindManufacture:
		return domain.MfgStatusDone
	}
	return ""
}

// ValidStatus reports whether status is a known status for the kind
func ValidStatus(kind, status string) bool {
	table := transitionTable(kind)
	_, ok := table[status]
	return ok
}

// CanTransition checks whether moving from one status to another is
// allowed by the kind's transition table. A transition to the current
// status is always allowed and treated as a no-op by the executor.
func CanTransition(kind, from, to string) bool {
	if from == to {
		return ValidStatus(kind, from)
	}
	allowed, exists := transitionTable(kind)[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a TransitionError if the transition is not allowed
func ValidateTransition(kind, from, to string) error {
	if !CanTransition(kind, from, to) {
		return &TransitionError{Kind: kind, From: from, To: to}
	}
	return nil
}
