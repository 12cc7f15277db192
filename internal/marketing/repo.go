package marketing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a marketing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if err := r.db.WithContext(ctx).Omit("Sends").Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) (*CampaignList, error) {
	query := r.db.WithContext(ctx).Model(&models.Campaign{})

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("created_at < ?", cursor.CreatedAt)
	}

	var rows []models.Campaign
	err = query.
		Order("created_at DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &CampaignList{Campaigns: rows}
	if len(rows) > limit {
		list.Campaigns = rows[:limit]
		last := list.Campaigns[len(list.Campaigns)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", id).
		Delete(&models.CampaignSend{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Unscoped().
		Where("id = ?", id).
		Delete(&models.Campaign{}).Error
}

func (r *repository) RecordSend(ctx context.Context, send *models.CampaignSend) error {
	return r.db.WithContext(ctx).Create(send).Error
}

func (r *repository) FindSends(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignSend, error) {
	var sends []models.CampaignSend
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("sent_at ASC").
		Find(&sends).Error
	if err != nil {
		return nil, err
	}
	return sends, nil
}

func (r *repository) ListRecipients(ctx context.Context) ([]Recipient, error) {
	var rows []Recipient
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("DISTINCT customer_name AS name, customer_email AS email, customer_phone AS phone").
		Where("customer_email IS NOT NULL OR customer_phone IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
