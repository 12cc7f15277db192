package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
)

// Category groups bales or stock items for storefront browsing.
type Category struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string             `gorm:"column:name;not null"`
	Slug      string             `gorm:"column:slug;not null;uniqueIndex"`
	Kind      enums.CategoryKind `gorm:"column:kind;type:text;not null;default:'bale'"`
	Position  int                `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
