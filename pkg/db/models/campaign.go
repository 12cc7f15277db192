package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
)

// Campaign is a marketing blast sent to past customers over one channel.
type Campaign struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	Channel     enums.CampaignChannel `gorm:"column:channel;type:text;not null"`
	Status      enums.CampaignStatus  `gorm:"column:status;type:text;not null;default:'draft'"`
	Subject     *string               `gorm:"column:subject"`
	Body        string                `gorm:"column:body;not null"`
	ScheduledAt *time.Time            `gorm:"column:scheduled_at"`
	SentAt      *time.Time            `gorm:"column:sent_at"`
	Sends       []CampaignSend        `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt        `gorm:"column:deleted_at;index"`
}
