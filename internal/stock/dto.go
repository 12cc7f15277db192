package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
)

// ImageDTO is one stock item photo. The image at position zero is the
// primary storefront image.
type ImageDTO struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Position int       `json:"position"`
	Primary  bool      `json:"primary"`
}

// StockItemDTO is the API shape of a stock item.
type StockItemDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description,omitempty"`
	CategoryID       *uuid.UUID      `json:"category_id,omitempty"`
	CategoryName     *string         `json:"category_name,omitempty"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
	Quantity         int             `json:"quantity"`
	IsPublished      bool            `json:"is_published"`
	Images           []ImageDTO      `json:"images"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// StockItemListResult is one page of stock items.
type StockItemListResult struct {
	Items      []StockItemDTO `json:"items"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

func toImageDTOs(images []models.StockItemImage) []ImageDTO {
	out := make([]ImageDTO, 0, len(images))
	for i, image := range images {
		out = append(out, ImageDTO{
			ID:       image.ID,
			URL:      image.URL,
			Position: image.Position,
			Primary:  i == 0,
		})
	}
	return out
}

func toStockItemDTO(item *models.StockItem) *StockItemDTO {
	dto := &StockItemDTO{
		ID:               item.ID,
		Name:             item.Name,
		Description:      item.Description,
		CategoryID:       item.CategoryID,
		CostPrice:        item.CostPrice,
		SellingPrice:     item.SellingPrice,
		MarginPercentage: MarginPercent(item.CostPrice, item.SellingPrice),
		Quantity:         item.Quantity,
		IsPublished:      item.IsPublished,
		Images:           toImageDTOs(item.Images),
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
	if item.Category != nil {
		dto.CategoryName = &item.Category.Name
	}
	return dto
}
