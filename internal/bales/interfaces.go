package bales

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

// Repository defines persistence operations for bales and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bale *models.Bale) (*models.Bale, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bale, error)
	FindByNumber(ctx context.Context, baleNumber string) (*models.Bale, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*BaleList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceItems(ctx context.Context, baleID uuid.UUID, items []models.BaleItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

// ListFilters narrows bale listings.
type ListFilters struct {
	CategoryID    *uuid.UUID
	PublishedOnly bool
	Search        string
}

// BaleList is one page of bales plus the cursor for the next page.
type BaleList struct {
	Bales      []models.Bale
	NextCursor *string
}
