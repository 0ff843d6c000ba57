package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Manufacturing order statuses
const (
	MfgStatusDraft     = "draft"
	MfgStatusConfirmed = "confirmed"
	MfgStatusDone      = "done"
)

// WmsManufactureOrder produces Qty units of the finished product and
// consumes its component lines when the order reaches done.
type WmsManufactureOrder struct {
	ID         int64                     `json:"id,string" form:"id"`
	Number     string                    `gorm:"size:32;uniqueIndex" json:"number"`
	ProductId  int64                     `gorm:"index" json:"product_id,string" form:"product_id"`
	Qty        int64                     `json:"qty" form:"qty"`
	Status     string                    `gorm:"size:16;index;default:'draft'" json:"status"`
	FinishedAt *time.Time                `json:"finished_at"`
	Remark     string                    `json:"remark" form:"remark"`
	Items      []WmsManufactureComponent `gorm:"foreignKey:OrderId;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// TableName Specify table name
func (WmsManufactureOrder) TableName() string {
	return "wms_manufacture_order"
}

// IsTerminal reports whether the order is in its terminal state
func (m WmsManufactureOrder) IsTerminal() bool {
	return m.Status == MfgStatusDone
}

// WmsManufactureComponent Qty is the component quantity consumed per
// unit of finished product.
type WmsManufactureComponent struct {
	ID        int64           `json:"id,string" form:"id"`
	OrderId   int64           `gorm:"index" json:"order_id,string" form:"order_id"`
	ProductId int64           `gorm:"index" json:"product_id,string" form:"product_id"`
	Qty       int64           `json:"qty" form:"qty"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2)" json:"price" form:"price"`
	Sort      int             `json:"sort" form:"sort"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (WmsManufactureComponent) TableName() string {
	return "wms_manufacture_component"
}
