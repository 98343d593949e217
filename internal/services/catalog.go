package services

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/recipegram/apiserver/types"
)

const maxSlugLength = 200

// CatalogRepository defines persistence operations for the ingredient and
// tag catalog.
type CatalogRepository interface {
	ListIngredients(ctx context.Context, namePrefix string) ([]types.Ingredient, error)
	GetIngredient(ctx context.Context, id int) (types.Ingredient, error)
	CreateIngredient(ctx context.Context, name, unit string) (types.Ingredient, error)
	ExistingIngredientIDs(ctx context.Context, ids []int) ([]int, error)
	ListTags(ctx context.Context) ([]types.Tag, error)
	GetTag(ctx context.Context, id int) (types.Tag, error)
	CreateTag(ctx context.Context, tag types.Tag) (types.Tag, error)
	ExistingTagIDs(ctx context.Context, ids []int) ([]int, error)
}

// CatalogService encapsulates catalog use-cases.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]types.Ingredient, error) {
	return s.repo.ListIngredients(ctx, strings.TrimSpace(namePrefix))
}

func (s *CatalogService) GetIngredient(ctx context.Context, id int) (types.Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}

func (s *CatalogService) CreateIngredient(ctx context.Context, name, unit string) (types.Ingredient, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)

	fieldErrors := FieldErrors{}
	if name == "" {
		fieldErrors["name"] = "must not be empty"
	}
	if unit == "" {
		fieldErrors["measurement_unit"] = "must not be empty"
	}
	if len(fieldErrors) > 0 {
		return types.Ingredient{}, fieldErrors
	}

	return s.repo.CreateIngredient(ctx, name, unit)
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *CatalogService) GetTag(ctx context.Context, id int) (types.Tag, error) {
	return s.repo.GetTag(ctx, id)
}

// CreateTag stores a tag, deriving the slug from the name by
// transliteration when it is not supplied.
func (s *CatalogService) CreateTag(ctx context.Context, tag types.Tag) (types.Tag, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		return types.Tag{}, FieldErrors{"name": "must not be empty"}
	}

	if strings.TrimSpace(tag.Slug) == "" {
		tag.Slug = MakeSlug(tag.Name)
	}
	return s.repo.CreateTag(ctx, tag)
}

// MakeSlug derives a deterministic transliterated slug from a tag name.
func MakeSlug(name string) string {
	derived := slug.Make(name)
	if len(derived) > maxSlugLength {
		derived = derived[:maxSlugLength]
	}
	return derived
}
