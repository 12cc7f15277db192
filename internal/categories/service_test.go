package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
)

type stubCategoriesRepo struct {
	categories map[uuid.UUID]*models.Category
}

func newStubCategoriesRepo() *stubCategoriesRepo {
	return &stubCategoriesRepo{categories: map[uuid.UUID]*models.Category{}}
}

func (s *stubCategoriesRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubCategoriesRepo) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	copied := *category
	s.categories[category.ID] = &copied
	return category, nil
}

func (s *stubCategoriesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, ok := s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *category
	return &copied, nil
}

func (s *stubCategoriesRepo) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for _, category := range s.categories {
		if category.Slug == slug {
			copied := *category
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoriesRepo) List(ctx context.Context, kind *enums.CategoryKind) ([]models.Category, error) {
	out := []models.Category{}
	for _, category := range s.categories {
		if kind != nil && category.Kind != *kind {
			continue
		}
		out = append(out, *category)
	}
	return out, nil
}

func (s *stubCategoriesRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	category, ok := s.categories[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		category.Name = name
	}
	if slug, ok := updates["slug"].(string); ok {
		category.Slug = slug
	}
	if position, ok := updates["position"].(int); ok {
		category.Position = position
	}
	return nil
}

func (s *stubCategoriesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.categories, id)
	return nil
}

func TestCreateCategorySlugifiesName(t *testing.T) {
	repo := newStubCategoriesRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	category, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name: "  Winter Jackets & Coats ",
		Kind: enums.CategoryKindProduct,
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if category.Name != "Winter Jackets & Coats" {
		t.Errorf("name = %q", category.Name)
	}
	if category.Slug != "winter-jackets-coats" {
		t.Errorf("slug = %q", category.Slug)
	}
}

func TestCreateCategoryRejectsDuplicateSlug(t *testing.T) {
	repo := newStubCategoriesRepo()
	svc, _ := NewService(repo)

	if _, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name: "Denim",
		Kind: enums.CategoryKindProduct,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name: "denim",
		Kind: enums.CategoryKindProduct,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateCategoryValidatesKind(t *testing.T) {
	repo := newStubCategoriesRepo()
	svc, _ := NewService(repo)

	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name: "Shoes",
		Kind: enums.CategoryKind("warehouse"),
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateCategoryRenames(t *testing.T) {
	repo := newStubCategoriesRepo()
	svc, _ := NewService(repo)

	created, err := svc.CreateCategory(context.Background(), CreateCategoryInput{
		Name: "Kids",
		Kind: enums.CategoryKindStock,
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	name := "Kids Clothing"
	updated, err := svc.UpdateCategory(context.Background(), created.ID, UpdateCategoryInput{Name: &name})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Slug != "kids-clothing" {
		t.Errorf("slug = %q", updated.Slug)
	}
}

func TestDeleteCategoryNotFound(t *testing.T) {
	repo := newStubCategoriesRepo()
	svc, _ := NewService(repo)

	err := svc.DeleteCategory(context.Background(), uuid.New())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
