package bales

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bale *models.Bale) (*models.Bale, error) {
	if err := r.db.WithContext(ctx).Create(bale).Error; err != nil {
		return nil, err
	}
	return bale, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Bale, error) {
	var bale models.Bale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Category").
		Where("id = ?", id).
		First(&bale).Error
	if err != nil {
		return nil, err
	}
	return &bale, nil
}

func (r *repository) FindByNumber(ctx context.Context, baleNumber string) (*models.Bale, error) {
	var bale models.Bale
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Category").
		Where("bale_number = ?", baleNumber).
		First(&bale).Error
	if err != nil {
		return nil, err
	}
	return &bale, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*BaleList, error) {
	query := r.db.WithContext(ctx).Model(&models.Bale{}).Preload("Items").Preload("Category")

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("created_at < ?", cursor.CreatedAt)
	}

	var rows []models.Bale
	err = query.
		Order("created_at DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &BaleList{Bales: rows}
	if len(rows) > limit {
		list.Bales = rows[:limit]
		last := list.Bales[len(list.Bales)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Bale{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ReplaceItems(ctx context.Context, baleID uuid.UUID, items []models.BaleItem) error {
	if err := r.db.WithContext(ctx).
		Where("bale_id = ?", baleID).
		Delete(&models.BaleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Bale{}).Error
}

func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE bales
		SET stock_quantity = stock_quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_quantity >= ?
	`, qty, id, qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
