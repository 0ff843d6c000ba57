package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt statuses
const (
	ReceiptStatusDraft = "draft"
	ReceiptStatusReady = "ready"
	ReceiptStatusDone  = "done"
)

// WmsReceipt is an incoming-goods document. Stock is increased exactly
// once when the receipt reaches done.
type WmsReceipt struct {
	ID          int64            `json:"id,string" form:"id"`
	Number      string           `gorm:"size:32;uniqueIndex" json:"number"`
	SupplierId  int64            `gorm:"index" json:"supplier_id,string" form:"supplier_id"`
	WarehouseId int64            `gorm:"index" json:"warehouse_id,string" form:"warehouse_id"`
	ScheduledAt *time.Time       `json:"scheduled_at" form:"scheduled_at"`
	ReceivedAt  *time.Time       `json:"received_at"`
	Status      string           `gorm:"size:16;index;default:'draft'" json:"status"`
	Remark      string           `json:"remark" form:"remark"`
	Items       []WmsReceiptItem `gorm:"foreignKey:ReceiptId;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TableName Specify table name
func (WmsReceipt) TableName() string {
	return "wms_receipt"
}

// IsTerminal reports whether the receipt is in its terminal state
func (r WmsReceipt) IsTerminal() bool {
	return r.Status == ReceiptStatusDone
}

type WmsReceiptItem struct {
	ID          int64           `json:"id,string" form:"id"`
	ReceiptId   int64           `gorm:"index" json:"receipt_id,string" form:"receipt_id"`
	ProductId   int64           `gorm:"index" json:"product_id,string" form:"product_id"`
	QtyReceived int64           `json:"qty_received" form:"qty_received"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)" json:"price" form:"price"`
	Sort        int             `json:"sort" form:"sort"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (WmsReceiptItem) TableName() string {
	return "wms_receipt_item"
}
