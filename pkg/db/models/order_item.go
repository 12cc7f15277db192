package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem captures the snapshot of each bale line within an order. The
// subtotal is persisted at creation and never recomputed, so the line
// survives later bale edits or deletion unchanged.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	BaleID    *uuid.UUID      `gorm:"column:bale_id;type:uuid"`
	Name      string          `gorm:"column:name;not null"`
	ImageURL  *string         `gorm:"column:image_url"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
