package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BaleItem is one kind of garment packed into a bale. Line cost and price
// are captured at composition time so the bale's pricing can be re-derived
// from its stored lines even after the source stock item changes.
type BaleItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BaleID      uuid.UUID       `gorm:"column:bale_id;type:uuid;not null;index"`
	StockItemID *uuid.UUID      `gorm:"column:stock_item_id;type:uuid"`
	Label       string          `gorm:"column:label;not null"`
	Quantity    int             `gorm:"column:quantity;not null;default:1"`
	LineCost    decimal.Decimal `gorm:"column:line_cost;type:numeric(12,2);not null;default:0"`
	LinePrice   decimal.Decimal `gorm:"column:line_price;type:numeric(12,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
