package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery statuses
const (
	DeliveryStatusPicked    = "picked"
	DeliveryStatusPacked    = "packed"
	DeliveryStatusValidated = "validated"
)

// WmsDelivery is an outgoing-goods document. Stock is decreased by the
// packed quantity exactly once when the delivery is validated.
type WmsDelivery struct {
	ID          int64             `json:"id,string" form:"id"`
	Number      string            `gorm:"size:32;uniqueIndex" json:"number"`
	CustomerId  int64             `gorm:"index" json:"customer_id,string" form:"customer_id"`
	DeliveryAt  *time.Time        `json:"delivery_at" form:"delivery_at"`
	Status      string            `gorm:"size:16;index;default:'picked'" json:"status"`
	Remark      string            `json:"remark" form:"remark"`
	Items       []WmsDeliveryItem `gorm:"foreignKey:DeliveryId;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TableName Specify table name
func (WmsDelivery) TableName() string {
	return "wms_delivery"
}

// IsTerminal reports whether the delivery is in its terminal state
func (d WmsDelivery) IsTerminal() bool {
	return d.Status == DeliveryStatusValidated
}

// WmsDeliveryItem invariant: 0 <= QtyPacked <= QtyPicked, enforced
// server side on every item write.
type WmsDeliveryItem struct {
	ID         int64           `json:"id,string" form:"id"`
	DeliveryId int64           `gorm:"index" json:"delivery_id,string" form:"delivery_id"`
	ProductId  int64           `gorm:"index" json:"product_id,string" form:"product_id"`
	QtyPicked  int64           `json:"qty_picked" form:"qty_picked"`
	QtyPacked  int64           `json:"qty_packed" form:"qty_packed"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2)" json:"price" form:"price"`
	Sort       int             `json:"sort" form:"sort"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (WmsDeliveryItem) TableName() string {
	return "wms_delivery_item"
}
