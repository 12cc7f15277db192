package models

import (
	"time"

	"github.com/google/uuid"
)

// StockItemImage is one product photo attached to a stock item.
type StockItemImage struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StockItemID uuid.UUID `gorm:"column:stock_item_id;type:uuid;not null;index"`
	URL         string    `gorm:"column:url;not null"`
	Position    int       `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
