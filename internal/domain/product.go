package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WmsWarehouse represents a physical storage site
type WmsWarehouse struct {
	ID        int64     `json:"id,string" form:"id"`
	Code      string    `gorm:"size:32;uniqueIndex" json:"code" form:"code"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Address   string    `json:"address" form:"address"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (WmsWarehouse) TableName() string {
	return "wms_warehouse"
}

// WmsProduct represents a stocked item. OnHandQty/ReservedQty are only
// ever changed through atomic SQL increments, never read-modify-write.
type WmsProduct struct {
	ID          int64           `json:"id,string" form:"id"`
	Sku         string          `gorm:"size:64;uniqueIndex" json:"sku" form:"sku"`
	Name        string          `gorm:"index" json:"name" form:"name"`
	Category    string          `gorm:"size:64;index" json:"category" form:"category"`
	Uom         string          `gorm:"size:32" json:"uom" form:"uom"`
	OnHandQty   int64           `gorm:"default:0" json:"on_hand_qty"`
	ReservedQty int64           `gorm:"default:0" json:"reserved_qty"`
	MinQty      int64           `gorm:"default:0" json:"min_qty" form:"min_qty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)" json:"price" form:"price"`
	WarehouseId int64           `gorm:"index" json:"warehouse_id,string" form:"warehouse_id"`
	Location    string          `gorm:"size:64" json:"location" form:"location"`
	Remark      string          `json:"remark" form:"remark"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (WmsProduct) TableName() string {
	return "wms_product"
}

// FreeQty returns the free-to-use quantity (on hand minus reserved)
func (p WmsProduct) FreeQty() int64 {
	return p.OnHandQty - p.ReservedQty
}

// BelowMinimum reports whether the product hit its reorder threshold
func (p WmsProduct) BelowMinimum() bool {
	return p.MinQty > 0 && p.OnHandQty < p.MinQty
}
