package domain

import "time"

// Document kinds recorded in the stock movement ledger
const (
	DocKindReceipt     = "receipt"
	DocKindDelivery    = "delivery"
	DocKindManufacture = "manufacture"
	DocKindAdjustment  = "adjustment"
)

// WmsStockMovement is the append-only stock ledger. The unique index on
// (doc_kind, doc_id, product_id) is what makes terminal transitions
// idempotent: a document's adjustment can be recorded at most once per
// product, re-entering the terminal state never double-counts.
type WmsStockMovement struct {
	ID        int64     `json:"id,string"`
	DocKind   string    `gorm:"size:16;uniqueIndex:idx_doc_product" json:"doc_kind"`
	DocId     int64     `gorm:"uniqueIndex:idx_doc_product" json:"doc_id,string"`
	ProductId int64     `gorm:"index;uniqueIndex:idx_doc_product" json:"product_id,string"`
	DocNumber string    `gorm:"size:32;index" json:"doc_number"`
	Delta     int64     `json:"delta"`
	Reason    string    `gorm:"size:255" json:"reason"`
	OprName   string    `gorm:"size:64" json:"opr_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (WmsStockMovement) TableName() string {
	return "wms_stock_movement"
}
