package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bale is a sealed bundle of secondhand clothing sold as a single unit.
type Bale struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BaleNumber    string           `gorm:"column:bale_number;not null;default:generate_bale_number();uniqueIndex"`
	Name          string           `gorm:"column:name;not null"`
	Description   *string          `gorm:"column:description"`
	CategoryID    *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	Category      *Category        `gorm:"foreignKey:CategoryID"`
	WeightKG      *decimal.Decimal `gorm:"column:weight_kg;type:numeric(8,2)"`
	ItemCount     *int             `gorm:"column:item_count"`
	CostPrice     decimal.Decimal  `gorm:"column:cost_price;type:numeric(12,2);not null;default:0"`
	SellingPrice  decimal.Decimal  `gorm:"column:selling_price;type:numeric(12,2);not null;default:0"`
	OverridePrice *decimal.Decimal `gorm:"column:override_price;type:numeric(12,2)"`
	Discount      decimal.Decimal  `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	StockQuantity int              `gorm:"column:stock_quantity;not null;default:0"`
	Position      int              `gorm:"column:position;not null;default:0"`
	IsPublished   bool             `gorm:"column:is_published;not null;default:false"`
	ImageURL      *string          `gorm:"column:image_url"`
	Items         []BaleItem       `gorm:"foreignKey:BaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt     gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}

// ListPrice is the price shown to buyers: the override when set, otherwise
// the calculated selling price, less any discount and floored at zero.
func (b Bale) ListPrice() decimal.Decimal {
	price := b.SellingPrice
	if b.OverridePrice != nil {
		price = *b.OverridePrice
	}
	price = price.Sub(b.Discount)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}
