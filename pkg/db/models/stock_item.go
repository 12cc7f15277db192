package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockItem is an individually sold garment outside of bales.
type StockItem struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string           `gorm:"column:name;not null"`
	Description  *string          `gorm:"column:description"`
	CategoryID   *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	Category     *Category        `gorm:"foreignKey:CategoryID"`
	CostPrice    decimal.Decimal  `gorm:"column:cost_price;type:numeric(12,2);not null;default:0"`
	SellingPrice decimal.Decimal  `gorm:"column:selling_price;type:numeric(12,2);not null;default:0"`
	Quantity     int              `gorm:"column:quantity;not null;default:0"`
	IsPublished  bool             `gorm:"column:is_published;not null;default:false"`
	Images       []StockItemImage `gorm:"foreignKey:StockItemID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}
