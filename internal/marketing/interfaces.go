package marketing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

// Recipient is one past customer a campaign can reach.
type Recipient struct {
	Name  string
	Email *string
	Phone *string
}

// Repository is the persistence surface for campaigns and their send records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, params pagination.Params) (*CampaignList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	RecordSend(ctx context.Context, send *models.CampaignSend) error
	FindSends(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignSend, error)

	// ListRecipients returns each distinct customer contact from past orders.
	ListRecipients(ctx context.Context) ([]Recipient, error)
}

// CampaignList is one page of campaigns.
type CampaignList struct {
	Campaigns  []models.Campaign
	NextCursor *string
}
