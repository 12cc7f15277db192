package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

// Repository is the persistence surface for stock items and their images.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.StockItem) (*models.StockItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.StockItem, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*StockItemList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateImage(ctx context.Context, image *models.StockItemImage) (*models.StockItemImage, error)
	FindImageByID(ctx context.Context, id uuid.UUID) (*models.StockItemImage, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
	UpdateImagePosition(ctx context.Context, id uuid.UUID, position int) error
	CountImages(ctx context.Context, itemID uuid.UUID) (int64, error)
}

// ListFilters narrows stock item listings.
type ListFilters struct {
	CategoryID    *uuid.UUID
	PublishedOnly bool
	Search        string
}

// StockItemList is one page of stock items.
type StockItemList struct {
	Items      []models.StockItem
	NextCursor *string
}

// ImageStore is the blob storage surface the stock service depends on.
// Implemented by pkg/storage/bucket.Client.
type ImageStore interface {
	Upload(ctx context.Context, folder, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, objectPath string) error
	ObjectPathFromURL(publicURL string) (string, bool)
}
