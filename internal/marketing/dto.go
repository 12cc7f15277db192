package marketing

import (
	"time"

	"github.com/google/uuid"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

// SendRecordDTO is one recorded delivery attempt.
type SendRecordDTO struct {
	ID        uuid.UUID             `json:"id"`
	Recipient string                `json:"recipient"`
	Channel   enums.CampaignChannel `json:"channel"`
	Succeeded bool                  `json:"succeeded"`
	Error     *string               `json:"error,omitempty"`
	SentAt    time.Time             `json:"sent_at"`
}

// CampaignDTO is the API shape of a campaign.
type CampaignDTO struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Channel     enums.CampaignChannel `json:"channel"`
	Status      enums.CampaignStatus  `json:"status"`
	Subject     *string               `json:"subject,omitempty"`
	Body        string                `json:"body"`
	ScheduledAt *time.Time            `json:"scheduled_at,omitempty"`
	SentAt      *time.Time            `json:"sent_at,omitempty"`
	Sends       []SendRecordDTO       `json:"sends,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// CampaignListResult is one page of campaigns.
type CampaignListResult struct {
	Campaigns  []CampaignDTO `json:"campaigns"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

func toCampaignDTO(campaign *models.Campaign) *CampaignDTO {
	return &CampaignDTO{
		ID:          campaign.ID,
		Name:        campaign.Name,
		Channel:     campaign.Channel,
		Status:      campaign.Status,
		Subject:     campaign.Subject,
		Body:        campaign.Body,
		ScheduledAt: campaign.ScheduledAt,
		SentAt:      campaign.SentAt,
		CreatedAt:   campaign.CreatedAt,
		UpdatedAt:   campaign.UpdatedAt,
	}
}

func toCampaignDTOWithSends(campaign *models.Campaign, sends []models.CampaignSend) *CampaignDTO {
	dto := toCampaignDTO(campaign)
	dto.Sends = make([]SendRecordDTO, 0, len(sends))
	for _, send := range sends {
		dto.Sends = append(dto.Sends, SendRecordDTO{
			ID:        send.ID,
			Recipient: send.Recipient,
			Channel:   send.Channel,
			Succeeded: send.Succeeded,
			Error:     send.Error,
			SentAt:    send.SentAt,
		})
	}
	return dto
}

func paginationParams(limit int, cursor string) pagination.Params {
	return pagination.Params{Limit: limit, Cursor: cursor}
}
