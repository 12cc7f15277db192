package bales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
)

// BaleItemDTO is the API shape of one packed garment line.
type BaleItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	StockItemID *uuid.UUID      `json:"stock_item_id,omitempty"`
	Label       string          `json:"label"`
	Quantity    int             `json:"quantity"`
	LineCost    decimal.Decimal `json:"line_cost"`
	LinePrice   decimal.Decimal `json:"line_price"`
}

// BaleDTO is the API shape of a bale, including its computed pricing.
type BaleDTO struct {
	ID            uuid.UUID        `json:"id"`
	BaleNumber    string           `json:"bale_number"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	CategoryName  *string          `json:"category_name,omitempty"`
	WeightKG      *decimal.Decimal `json:"weight_kg,omitempty"`
	ItemCount     *int             `json:"item_count,omitempty"`
	Pricing       Pricing          `json:"pricing"`
	ListPrice     decimal.Decimal  `json:"list_price"`
	Discount      decimal.Decimal  `json:"discount"`
	StockQuantity int              `json:"stock_quantity"`
	Position      int              `json:"position"`
	IsPublished   bool             `json:"is_published"`
	ImageURL      *string          `json:"image_url,omitempty"`
	Items         []BaleItemDTO    `json:"items"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func toBaleDTO(bale *models.Bale) *BaleDTO {
	items := make([]BaleItemDTO, 0, len(bale.Items))
	for _, item := range bale.Items {
		items = append(items, BaleItemDTO{
			ID:          item.ID,
			StockItemID: item.StockItemID,
			Label:       item.Label,
			Quantity:    item.Quantity,
			LineCost:    item.LineCost,
			LinePrice:   item.LinePrice,
		})
	}

	pricing := Pricing{
		TotalCostPrice:       bale.CostPrice,
		RecommendedSalePrice: bale.SellingPrice,
		ActualSellingPrice:   bale.SellingPrice,
	}
	if bale.OverridePrice != nil {
		pricing.ActualSellingPrice = *bale.OverridePrice
	}
	pricing.Profit = pricing.ActualSellingPrice.Sub(pricing.TotalCostPrice)
	if pricing.TotalCostPrice.IsPositive() {
		pricing.MarginPercentage = pricing.Profit.Div(pricing.TotalCostPrice).Mul(hundred)
	} else {
		pricing.MarginPercentage = decimal.Zero
	}

	dto := &BaleDTO{
		ID:            bale.ID,
		BaleNumber:    bale.BaleNumber,
		Name:          bale.Name,
		Description:   bale.Description,
		CategoryID:    bale.CategoryID,
		WeightKG:      bale.WeightKG,
		ItemCount:     bale.ItemCount,
		Pricing:       pricing,
		ListPrice:     bale.ListPrice(),
		Discount:      LineDiscount(pricing.RecommendedSalePrice, pricing.ActualSellingPrice),
		StockQuantity: bale.StockQuantity,
		Position:      bale.Position,
		IsPublished:   bale.IsPublished,
		ImageURL:      bale.ImageURL,
		Items:         items,
		CreatedAt:     bale.CreatedAt,
		UpdatedAt:     bale.UpdatedAt,
	}
	if bale.Category != nil {
		dto.CategoryName = &bale.Category.Name
	}
	return dto
}

// BaleListResult is one page of bales.
type BaleListResult struct {
	Bales      []BaleDTO `json:"bales"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}
