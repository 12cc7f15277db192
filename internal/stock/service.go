package stock

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
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

const imageFolder = "stock-items"

// Service exposes admin stock item management.
type Service interface {
	CreateStockItem(ctx context.Context, input CreateStockItemInput) (*StockItemDTO, error)
	UpdateStockItem(ctx context.Context, itemID uuid.UUID, input UpdateStockItemInput) (*StockItemDTO, error)
	DeleteStockItem(ctx context.Context, itemID uuid.UUID) error
	GetStockItem(ctx context.Context, itemID uuid.UUID) (*StockItemDTO, error)
	ListStockItems(ctx context.Context, input ListStockItemsInput) (*StockItemListResult, error)

	AddImage(ctx context.Context, itemID uuid.UUID, contentType string, data []byte) (*StockItemDTO, error)
	RemoveImage(ctx context.Context, itemID, imageID uuid.UUID) (*StockItemDTO, error)
	SetPrimaryImage(ctx context.Context, itemID, imageID uuid.UUID) (*StockItemDTO, error)
}

// CreateStockItemInput holds the validated payload to create a stock item.
// Any two of CostPrice, SellingPrice and MarginPercentage must be provided.
type CreateStockItemInput struct {
	Name             string
	Description      *string
	CategoryID       *uuid.UUID
	CostPrice        *decimal.Decimal
	SellingPrice     *decimal.Decimal
	MarginPercentage *decimal.Decimal
	Quantity         int
	IsPublished      bool
}

// UpdateStockItemInput holds optional mutation values for a stock item.
type UpdateStockItemInput struct {
	Name             *string
	Description      *string
	CategoryID       *uuid.UUID
	CostPrice        *decimal.Decimal
	SellingPrice     *decimal.Decimal
	MarginPercentage *decimal.Decimal
	Quantity         *int
	IsPublished      *bool
}

// ListStockItemsInput narrows and paginates stock item listings.
type ListStockItemsInput struct {
	Limit         int
	Cursor        string
	CategoryID    *uuid.UUID
	PublishedOnly bool
	Search        string
}

type service struct {
	repo   Repository
	images ImageStore
	logg   *logger.Logger
}

// NewService builds a stock service with the required dependencies.
func NewService(repo Repository, images ImageStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if images == nil {
		return nil, fmt.Errorf("image store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, images: images, logg: logg}, nil
}

func (s *service) CreateStockItem(ctx context.Context, input CreateStockItemInput) (*StockItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item name required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	cost, sell, err := ResolvePricing(input.CostPrice, input.SellingPrice, input.MarginPercentage)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Create(ctx, &models.StockItem{
		Name:         name,
		Description:  input.Description,
		CategoryID:   input.CategoryID,
		CostPrice:    cost,
		SellingPrice: sell,
		Quantity:     input.Quantity,
		IsPublished:  input.IsPublished,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock item")
	}
	return s.GetStockItem(ctx, item.ID)
}

func (s *service) UpdateStockItem(ctx context.Context, itemID uuid.UUID, input UpdateStockItemInput) (*StockItemDTO, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item id required")
	}
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item name required")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		updates["quantity"] = *input.Quantity
	}
	if input.IsPublished != nil {
		updates["is_published"] = *input.IsPublished
	}

	if input.CostPrice != nil || input.SellingPrice != nil || input.MarginPercentage != nil {
		cost := input.CostPrice
		sell := input.SellingPrice
		// A lone price change keeps the stored counterpart.
		if cost == nil && input.MarginPercentage == nil {
			existing := item.CostPrice
			cost = &existing
		}
		if sell == nil && input.MarginPercentage == nil {
			existing := item.SellingPrice
			sell = &existing
		}
		resolvedCost, resolvedSell, err := ResolvePricing(cost, sell, input.MarginPercentage)
		if err != nil {
			return nil, err
		}
		updates["cost_price"] = resolvedCost
		updates["selling_price"] = resolvedSell
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, itemID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock item")
		}
	}
	return s.GetStockItem(ctx, itemID)
}

func (s *service) DeleteStockItem(ctx context.Context, itemID uuid.UUID) error {
	if itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock item id required")
	}
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stock item")
	}
	for _, image := range item.Images {
		s.deleteStoredObject(ctx, image.URL)
	}
	return nil
}

func (s *service) GetStockItem(ctx context.Context, itemID uuid.UUID) (*StockItemDTO, error) {
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return toStockItemDTO(item), nil
}

func (s *service) ListStockItems(ctx context.Context, input ListStockItemsInput) (*StockItemListResult, error) {
	list, err := s.repo.List(ctx, pagination.Params{Limit: input.Limit, Cursor: input.Cursor}, ListFilters{
		CategoryID:    input.CategoryID,
		PublishedOnly: input.PublishedOnly,
		Search:        strings.TrimSpace(input.Search),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock items")
	}

	result := &StockItemListResult{
		Items:      make([]StockItemDTO, 0, len(list.Items)),
		NextCursor: list.NextCursor,
	}
	for i := range list.Items {
		result.Items = append(result.Items, *toStockItemDTO(&list.Items[i]))
	}
	return result, nil
}

func (s *service) AddImage(ctx context.Context, itemID uuid.UUID, contentType string, data []byte) (*StockItemDTO, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item id required")
	}
	if _, err := s.loadItem(ctx, itemID); err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, imageFolder, contentType, data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload image")
	}

	count, err := s.repo.CountImages(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count images")
	}
	if _, err := s.repo.CreateImage(ctx, &models.StockItemImage{
		StockItemID: itemID,
		URL:         url,
		Position:    int(count),
	}); err != nil {
		s.deleteStoredObject(ctx, url)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record image")
	}
	return s.GetStockItem(ctx, itemID)
}

func (s *service) RemoveImage(ctx context.Context, itemID, imageID uuid.UUID) (*StockItemDTO, error) {
	image, err := s.loadImage(ctx, itemID, imageID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteImage(ctx, imageID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	s.deleteStoredObject(ctx, image.URL)
	return s.GetStockItem(ctx, itemID)
}

func (s *service) SetPrimaryImage(ctx context.Context, itemID, imageID uuid.UUID) (*StockItemDTO, error) {
	if _, err := s.loadImage(ctx, itemID, imageID); err != nil {
		return nil, err
	}
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	position := 1
	for _, image := range item.Images {
		next := 0
		if image.ID != imageID {
			next = position
			position++
		}
		if err := s.repo.UpdateImagePosition(ctx, image.ID, next); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reorder images")
		}
	}
	return s.GetStockItem(ctx, itemID)
}

func (s *service) loadItem(ctx context.Context, itemID uuid.UUID) (*models.StockItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
	}
	return item, nil
}

func (s *service) loadImage(ctx context.Context, itemID, imageID uuid.UUID) (*models.StockItemImage, error) {
	if itemID == uuid.Nil || imageID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock item id and image id required")
	}
	image, err := s.repo.FindImageByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
	}
	if image.StockItemID != itemID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	return image, nil
}

// deleteStoredObject removes the blob behind a public URL. Losing the blob is
// tolerable; losing the DB row is not, so failures only log.
func (s *service) deleteStoredObject(ctx context.Context, url string) {
	objectPath, ok := s.images.ObjectPathFromURL(url)
	if !ok {
		return
	}
	if err := s.images.Delete(ctx, objectPath); err != nil {
		s.logg.Warn(ctx, "failed to delete stored image: "+err.Error())
	}
}
