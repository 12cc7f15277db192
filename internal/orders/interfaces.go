package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their satellites.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	FindUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListFilters narrows order listings for the admin back office.
type ListFilters struct {
	FulfillmentStatus     *enums.FulfillmentStatus
	PaymentTrackingStatus *enums.PaymentTrackingStatus
	Search                string
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor *string
}
