package bales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes admin bale management and storefront reads.
type Service interface {
	CreateBale(ctx context.Context, input CreateBaleInput) (*BaleDTO, error)
	UpdateBale(ctx context.Context, baleID uuid.UUID, input UpdateBaleInput) (*BaleDTO, error)
	DeleteBale(ctx context.Context, baleID uuid.UUID) error
	GetBale(ctx context.Context, baleID uuid.UUID) (*BaleDTO, error)
	ListBales(ctx context.Context, input ListBalesInput) (*BaleListResult, error)

	// ReorderBales rewrites display positions to match the supplied ID order.
	ReorderBales(ctx context.Context, orderedIDs []uuid.UUID) error
}

// BaleItemInput is one packed garment line with its captured prices.
type BaleItemInput struct {
	StockItemID  *uuid.UUID
	Label        string
	Quantity     int
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
}

// CreateBaleInput holds the validated payload to create a bale.
type CreateBaleInput struct {
	Name          string
	Description   *string
	CategoryID    *uuid.UUID
	WeightKG      *decimal.Decimal
	ItemCount     *int
	Items         []BaleItemInput
	OverridePrice *decimal.Decimal
	Discount      *decimal.Decimal
	StockQuantity int
	Position      int
	IsPublished   bool
	ImageURL      *string
}

// UpdateBaleInput holds optional mutation values for a bale.
type UpdateBaleInput struct {
	Name          *string
	Description   *string
	CategoryID    *uuid.UUID
	WeightKG      *decimal.Decimal
	ItemCount     *int
	Items         *[]BaleItemInput
	OverridePrice *decimal.Decimal
	ClearOverride bool
	Discount      *decimal.Decimal
	StockQuantity *int
	Position      *int
	IsPublished   *bool
	ImageURL      *string
}

// ListBalesInput narrows and paginates bale listings.
type ListBalesInput struct {
	Limit         int
	Cursor        string
	CategoryID    *uuid.UUID
	PublishedOnly bool
	Search        string
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a bales service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateBale(ctx context.Context, input CreateBaleInput) (*BaleDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bale name required")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bale item quantity must be positive")
		}
		if strings.TrimSpace(item.Label) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bale item label required")
		}
	}
	if input.OverridePrice != nil && input.OverridePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selling price cannot be negative")
	}

	pricing := CalculatePricing(toComponents(input.Items), input.OverridePrice)

	bale := &models.Bale{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		WeightKG:      input.WeightKG,
		ItemCount:     input.ItemCount,
		CostPrice:     pricing.TotalCostPrice,
		SellingPrice:  pricing.RecommendedSalePrice,
		OverridePrice: input.OverridePrice,
		StockQuantity: input.StockQuantity,
		Position:      input.Position,
		IsPublished:   input.IsPublished,
		ImageURL:      input.ImageURL,
	}
	if input.Discount != nil {
		if input.Discount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
		}
		bale.Discount = *input.Discount
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, bale)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bale")
		}
		items := toItemModels(created.ID, input.Items)
		if err := repo.ReplaceItems(ctx, created.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bale items")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetBale(ctx, bale.ID)
}

func (s *service) UpdateBale(ctx context.Context, baleID uuid.UUID, input UpdateBaleInput) (*BaleDTO, error) {
	if baleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bale id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		bale, err := repo.FindByID(ctx, baleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "bale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bale")
		}

		updates := map[string]any{}
		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "bale name required")
			}
			updates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.CategoryID != nil {
			updates["category_id"] = *input.CategoryID
		}
		if input.WeightKG != nil {
			updates["weight_kg"] = *input.WeightKG
		}
		if input.ItemCount != nil {
			updates["item_count"] = *input.ItemCount
		}
		if input.Discount != nil {
			if input.Discount.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
			}
			updates["discount"] = *input.Discount
		}
		if input.StockQuantity != nil {
			if *input.StockQuantity < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
			}
			updates["stock_quantity"] = *input.StockQuantity
		}
		if input.Position != nil {
			updates["position"] = *input.Position
		}
		if input.IsPublished != nil {
			updates["is_published"] = *input.IsPublished
		}
		if input.ImageURL != nil {
			updates["image_url"] = *input.ImageURL
		}

		override := bale.OverridePrice
		switch {
		case input.ClearOverride:
			override = nil
			updates["override_price"] = nil
		case input.OverridePrice != nil:
			if input.OverridePrice.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "selling price cannot be negative")
			}
			override = input.OverridePrice
			updates["override_price"] = *input.OverridePrice
		}

		if input.Items != nil {
			for _, item := range *input.Items {
				if item.Quantity <= 0 {
					return pkgerrors.New(pkgerrors.CodeValidation, "bale item quantity must be positive")
				}
			}
			pricing := CalculatePricing(toComponents(*input.Items), override)
			updates["cost_price"] = pricing.TotalCostPrice
			updates["selling_price"] = pricing.RecommendedSalePrice
			if err := repo.ReplaceItems(ctx, baleID, toItemModels(baleID, *input.Items)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace bale items")
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := repo.Update(ctx, baleID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update bale")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetBale(ctx, baleID)
}

func (s *service) DeleteBale(ctx context.Context, baleID uuid.UUID) error {
	if baleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "bale id required")
	}
	if _, err := s.repo.FindByID(ctx, baleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "bale not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bale")
	}
	if err := s.repo.Delete(ctx, baleID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete bale")
	}
	return nil
}

func (s *service) GetBale(ctx context.Context, baleID uuid.UUID) (*BaleDTO, error) {
	bale, err := s.repo.FindByID(ctx, baleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bale")
	}
	return toBaleDTO(bale), nil
}

func (s *service) ListBales(ctx context.Context, input ListBalesInput) (*BaleListResult, error) {
	list, err := s.repo.List(ctx, pagination.Params{Limit: input.Limit, Cursor: input.Cursor}, ListFilters{
		CategoryID:    input.CategoryID,
		PublishedOnly: input.PublishedOnly,
		Search:        strings.TrimSpace(input.Search),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bales")
	}

	result := &BaleListResult{
		Bales:      make([]BaleDTO, 0, len(list.Bales)),
		NextCursor: list.NextCursor,
	}
	for i := range list.Bales {
		result.Bales = append(result.Bales, *toBaleDTO(&list.Bales[i]))
	}
	return result, nil
}

func (s *service) ReorderBales(ctx context.Context, orderedIDs []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "bale ids required")
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "bale id required")
		}
		if _, dup := seen[id]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate bale id in ordering")
		}
		seen[id] = struct{}{}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for position, id := range orderedIDs {
			if _, err := repo.FindByID(ctx, id); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "bale not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bale")
			}
			if err := repo.Update(ctx, id, map[string]any{"position": position}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reorder bale")
			}
		}
		return nil
	})
}

func toComponents(items []BaleItemInput) []Component {
	components := make([]Component, 0, len(items))
	for _, item := range items {
		components = append(components, Component{
			CostPrice:    item.CostPrice,
			SellingPrice: item.SellingPrice,
			Quantity:     item.Quantity,
		})
	}
	return components
}

func toItemModels(baleID uuid.UUID, items []BaleItemInput) []models.BaleItem {
	rows := make([]models.BaleItem, 0, len(items))
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		rows = append(rows, models.BaleItem{
			BaleID:      baleID,
			StockItemID: item.StockItemID,
			Label:       strings.TrimSpace(item.Label),
			Quantity:    item.Quantity,
			LineCost:    item.CostPrice.Mul(qty),
			LinePrice:   item.SellingPrice.Mul(qty),
		})
	}
	return rows
}
