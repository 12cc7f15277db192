package stock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
	"github.com/rs/zerolog"
)

type stubStockRepo struct {
	items  map[uuid.UUID]*models.StockItem
	images map[uuid.UUID]*models.StockItemImage
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{
		items:  map[uuid.UUID]*models.StockItem{},
		images: map[uuid.UUID]*models.StockItemImage{},
	}
}

func (s *stubStockRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubStockRepo) Create(ctx context.Context, item *models.StockItem) (*models.StockItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	copied := *item
	s.items[item.ID] = &copied
	return item, nil
}

func (s *stubStockRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	copied.Images = nil
	for _, image := range s.images {
		if image.StockItemID == id {
			copied.Images = append(copied.Images, *image)
		}
	}
	sort.Slice(copied.Images, func(i, j int) bool {
		return copied.Images[i].Position < copied.Images[j].Position
	})
	return &copied, nil
}

func (s *stubStockRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) (*StockItemList, error) {
	list := &StockItemList{}
	for id := range s.items {
		item, _ := s.FindByID(ctx, id)
		if filters.PublishedOnly && !item.IsPublished {
			continue
		}
		list.Items = append(list.Items, *item)
	}
	return list, nil
}

func (s *stubStockRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	item, ok := s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		item.Name = name
	}
	if cost, ok := updates["cost_price"].(decimal.Decimal); ok {
		item.CostPrice = cost
	}
	if sell, ok := updates["selling_price"].(decimal.Decimal); ok {
		item.SellingPrice = sell
	}
	if qty, ok := updates["quantity"].(int); ok {
		item.Quantity = qty
	}
	if published, ok := updates["is_published"].(bool); ok {
		item.IsPublished = published
	}
	return nil
}

func (s *stubStockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.items, id)
	for imageID, image := range s.images {
		if image.StockItemID == id {
			delete(s.images, imageID)
		}
	}
	return nil
}

func (s *stubStockRepo) CreateImage(ctx context.Context, image *models.StockItemImage) (*models.StockItemImage, error) {
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	copied := *image
	s.images[image.ID] = &copied
	return image, nil
}

func (s *stubStockRepo) FindImageByID(ctx context.Context, id uuid.UUID) (*models.StockItemImage, error) {
	image, ok := s.images[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *image
	return &copied, nil
}

func (s *stubStockRepo) DeleteImage(ctx context.Context, id uuid.UUID) error {
	delete(s.images, id)
	return nil
}

func (s *stubStockRepo) UpdateImagePosition(ctx context.Context, id uuid.UUID, position int) error {
	image, ok := s.images[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	image.Position = position
	return nil
}

func (s *stubStockRepo) CountImages(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	for _, image := range s.images {
		if image.StockItemID == itemID {
			count++
		}
	}
	return count, nil
}

type stubImageStore struct {
	uploads   int
	deleted   []string
	uploadErr error
}

func (s *stubImageStore) Upload(ctx context.Context, folder, contentType string, data []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads++
	return fmt.Sprintf("https://cdn.test/object/public/product-images/%s/upload-%d.jpg", folder, s.uploads), nil
}

func (s *stubImageStore) Delete(ctx context.Context, objectPath string) error {
	s.deleted = append(s.deleted, objectPath)
	return nil
}

func (s *stubImageStore) ObjectPathFromURL(publicURL string) (string, bool) {
	prefix := "https://cdn.test/object/public/product-images/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, prefix), true
}

func newTestService(t *testing.T, repo Repository, images ImageStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "stock-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(repo, images, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateStockItemDerivesSellingPrice(t *testing.T) {
	repo := newStubStockRepo()
	svc := newTestService(t, repo, &stubImageStore{})

	margin := decimal.NewFromInt(50)
	cost := decimal.NewFromInt(80)
	item, err := svc.CreateStockItem(context.Background(), CreateStockItemInput{
		Name:             "Denim Jacket",
		CostPrice:        &cost,
		MarginPercentage: &margin,
		Quantity:         3,
	})
	if err != nil {
		t.Fatalf("CreateStockItem: %v", err)
	}
	if !item.SellingPrice.Equal(decimal.NewFromInt(120)) {
		t.Errorf("selling price = %s, want 120", item.SellingPrice)
	}
	if !item.MarginPercentage.Equal(decimal.NewFromInt(50)) {
		t.Errorf("margin = %s, want 50", item.MarginPercentage)
	}
}

func TestCreateStockItemRejectsUnderdeterminedPricing(t *testing.T) {
	repo := newStubStockRepo()
	svc := newTestService(t, repo, &stubImageStore{})

	cost := decimal.NewFromInt(80)
	_, err := svc.CreateStockItem(context.Background(), CreateStockItemInput{
		Name:      "Denim Jacket",
		CostPrice: &cost,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStockItemSinglePriceKeepsCounterpart(t *testing.T) {
	repo := newStubStockRepo()
	svc := newTestService(t, repo, &stubImageStore{})

	cost := decimal.NewFromInt(60)
	sell := decimal.NewFromInt(90)
	created, err := svc.CreateStockItem(context.Background(), CreateStockItemInput{
		Name:         "Hoodie",
		CostPrice:    &cost,
		SellingPrice: &sell,
	})
	if err != nil {
		t.Fatalf("CreateStockItem: %v", err)
	}

	newSell := decimal.NewFromInt(120)
	updated, err := svc.UpdateStockItem(context.Background(), created.ID, UpdateStockItemInput{
		SellingPrice: &newSell,
	})
	if err != nil {
		t.Fatalf("UpdateStockItem: %v", err)
	}
	if !updated.CostPrice.Equal(decimal.NewFromInt(60)) {
		t.Errorf("cost price = %s, want unchanged 60", updated.CostPrice)
	}
	if !updated.MarginPercentage.Equal(decimal.NewFromInt(100)) {
		t.Errorf("margin = %s, want 100", updated.MarginPercentage)
	}
}

func TestAddImageAssignsPositions(t *testing.T) {
	repo := newStubStockRepo()
	images := &stubImageStore{}
	svc := newTestService(t, repo, images)

	cost := decimal.NewFromInt(10)
	sell := decimal.NewFromInt(20)
	created, _ := svc.CreateStockItem(context.Background(), CreateStockItemInput{
		Name: "Scarf", CostPrice: &cost, SellingPrice: &sell,
	})

	item, err := svc.AddImage(context.Background(), created.ID, "image/jpeg", []byte{1})
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	item, err = svc.AddImage(context.Background(), created.ID, "image/jpeg", []byte{2})
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	if len(item.Images) != 2 {
		t.Fatalf("images = %d, want 2", len(item.Images))
	}
	if !item.Images[0].Primary || item.Images[1].Primary {
		t.Error("first image should be the only primary")
	}
	if item.Images[0].Position != 0 || item.Images[1].Position != 1 {
		t.Errorf("positions = %d,%d", item.Images[0].Position, item.Images[1].Position)
	}
}

func TestSetPrimaryImageReorders(t *testing.T) {
	repo := newStubStockRepo()
	svc := newTestService(t, repo, &stubImageStore{})

	cost := decimal.NewFromInt(10)
	sell := decimal.NewFromInt(20)
	created, _ := svc.CreateStockItem(context.Background(), CreateStockItemInput{
		Name: "Beanie", CostPrice: &cost, SellingPrice: &sell,
	})
	item, _ := svc.AddImage(context.Background(), created.ID, "image/png", []byte{1})
	item, _ = svc.AddImage(context.Background(), created.ID, "image/png", []byte{2})
	second := item.Images[1].ID

	item, err := svc.SetPrimaryImage(context.Background(), created.ID, second)
	if err != nil {
		t.Fatalf("SetPrimaryImage: %v", err)
	}
	if item.Images[0].ID != second {
		t.Error("promoted image should lead the set")
	}
	if !item.Images[0].Primary {
		t.Error("promoted image should be primary")
	}
}

func TestRemoveImageDeletesBlob(t *testing.T) {
	repo := newStubStockRepo()
	images := &stubImageStore{}
	svc := newTestService(t, repo, images)

	cost := decimal.NewFromInt(10)
	sell := decimal.NewFromInt(20)
	created, _ := svc.CreateStockItem(context.Background(), CreateStockItemInput{
		Name: "Gloves", CostPrice: &cost, SellingPrice: &sell,
	})
	item, _ := svc.AddImage(context.Background(), created.ID, "image/webp", []byte{1})

	item, err := svc.RemoveImage(context.Background(), created.ID, item.Images[0].ID)
	if err != nil {
		t.Fatalf("RemoveImage: %v", err)
	}
	if len(item.Images) != 0 {
		t.Errorf("images = %d, want 0", len(item.Images))
	}
	if len(images.deleted) != 1 {
		t.Errorf("deleted blobs = %d, want 1", len(images.deleted))
	}
}

func TestAddImageUploadFailure(t *testing.T) {
	repo := newStubStockRepo()
	images := &stubImageStore{uploadErr: errors.New("unsupported image content type")}
	svc := newTestService(t, repo, images)

	cost := decimal.NewFromInt(10)
	sell := decimal.NewFromInt(20)
	created, _ := svc.CreateStockItem(context.Background(), CreateStockItemInput{
		Name: "Socks", CostPrice: &cost, SellingPrice: &sell,
	})

	_, err := svc.AddImage(context.Background(), created.ID, "image/gif", []byte{1})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteStockItemRemovesImages(t *testing.T) {
	repo := newStubStockRepo()
	images := &stubImageStore{}
	svc := newTestService(t, repo, images)

	cost := decimal.NewFromInt(10)
	sell := decimal.NewFromInt(20)
	created, _ := svc.CreateStockItem(context.Background(), CreateStockItemInput{
		Name: "Belt", CostPrice: &cost, SellingPrice: &sell,
	})
	if _, err := svc.AddImage(context.Background(), created.ID, "image/jpeg", []byte{1}); err != nil {
		t.Fatalf("AddImage: %v", err)
	}

	if err := svc.DeleteStockItem(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteStockItem: %v", err)
	}
	if _, err := svc.GetStockItem(context.Background(), created.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(images.deleted) != 1 {
		t.Errorf("deleted blobs = %d, want 1", len(images.deleted))
	}
}
