package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
)

// CampaignSend records one delivery attempt to one recipient.
type CampaignSend struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID uuid.UUID             `gorm:"column:campaign_id;type:uuid;not null;index"`
	Recipient  string                `gorm:"column:recipient;not null"`
	Channel    enums.CampaignChannel `gorm:"column:channel;type:text;not null"`
	Succeeded  bool                  `gorm:"column:succeeded;not null;default:false"`
	Error      *string               `gorm:"column:error"`
	SentAt     time.Time             `gorm:"column:sent_at;autoCreateTime"`
}
