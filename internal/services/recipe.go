package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/types"
)

const (
	minCookingTime      = 1
	minIngredientAmount = 1
	maxRecipeNameLength = 200
)

// RecipeRepository defines persistence operations for the recipe aggregate.
type RecipeRepository interface {
	List(ctx context.Context, filter store.RecipeFilter, offset, limit int) ([]types.Recipe, int, error)
	Get(ctx context.Context, id, viewerID int) (types.Recipe, error)
	Create(ctx context.Context, authorID int, input types.RecipeInput, imageKey string) (int, error)
	Update(ctx context.Context, id int, input types.RecipeInput, imageKey string) error
	Delete(ctx context.Context, id int) error
	GetShort(ctx context.Context, id int) (types.RecipeShort, error)
	ListShortByAuthors(ctx context.Context, authorIDs []int) (map[int][]types.RecipeShort, error)
}

// RelationRepository is the membership contract shared by the favorites and
// shopping-cart relations.
type RelationRepository interface {
	Exists(ctx context.Context, userID, recipeID int) (bool, error)
	Create(ctx context.Context, userID, recipeID int) error
	Delete(ctx context.Context, userID, recipeID int) error
}

// ImageStore persists an uploaded image and returns its storage key.
type ImageStore interface {
	Save(ctx context.Context, encoded string) (string, error)
}

// RecipeService encapsulates recipe use-cases, including the favorite and
// shopping-cart toggles.
type RecipeService struct {
	repo      RecipeRepository
	catalog   CatalogRepository
	favorites RelationRepository
	cart      RelationRepository
	images    ImageStore
}

func NewRecipeService(
	repo RecipeRepository,
	catalog CatalogRepository,
	favorites RelationRepository,
	cart RelationRepository,
	images ImageStore,
) *RecipeService {
	return &RecipeService{
		repo:      repo,
		catalog:   catalog,
		favorites: favorites,
		cart:      cart,
		images:    images,
	}
}

func (s *RecipeService) List(ctx context.Context, filter store.RecipeFilter, offset, limit int) ([]types.Recipe, int, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, filter, offset, limit)
}

func (s *RecipeService) Get(ctx context.Context, id, viewerID int) (types.Recipe, error) {
	return s.repo.Get(ctx, id, viewerID)
}

// Create validates the payload, stores the image and persists the aggregate,
// then reads it back through the projection for the response.
func (s *RecipeService) Create(ctx context.Context, authorID int, input types.RecipeInput) (types.Recipe, error) {
	if err := s.validate(ctx, input, true); err != nil {
		return types.Recipe{}, err
	}

	imageKey, err := s.images.Save(ctx, input.Image)
	if err != nil {
		return types.Recipe{}, FieldErrors{"image": "invalid image"}
	}

	id, err := s.repo.Create(ctx, authorID, input, imageKey)
	if err != nil {
		return types.Recipe{}, err
	}
	return s.repo.Get(ctx, id, authorID)
}

// Update replaces the recipe's fields and line sets. Only the author may
// update; an absent image keeps the stored one.
func (s *RecipeService) Update(ctx context.Context, id, userID int, input types.RecipeInput) (types.Recipe, error) {
	existing, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return types.Recipe{}, err
	}
	if existing.Author.ID != userID {
		return types.Recipe{}, ErrForbidden
	}

	if err := s.validate(ctx, input, false); err != nil {
		return types.Recipe{}, err
	}

	imageKey := ""
	if strings.TrimSpace(input.Image) != "" {
		imageKey, err = s.images.Save(ctx, input.Image)
		if err != nil {
			return types.Recipe{}, FieldErrors{"image": "invalid image"}
		}
	}

	if err := s.repo.Update(ctx, id, input, imageKey); err != nil {
		return types.Recipe{}, err
	}
	return s.repo.Get(ctx, id, userID)
}

// Delete removes the recipe. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, id, userID int) error {
	existing, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if existing.Author.ID != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// AddFavorite puts the recipe into the user's favorites.
func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID int) (types.RecipeShort, error) {
	return s.addRelation(ctx, s.favorites, userID, recipeID, "favorites")
}

// RemoveFavorite takes the recipe out of the user's favorites.
func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID int) error {
	return s.removeRelation(ctx, s.favorites, userID, recipeID, "favorites")
}

// AddToShoppingCart puts the recipe into the user's shopping cart.
func (s *RecipeService) AddToShoppingCart(ctx context.Context, userID, recipeID int) (types.RecipeShort, error) {
	return s.addRelation(ctx, s.cart, userID, recipeID, "shopping cart")
}

// RemoveFromShoppingCart takes the recipe out of the user's shopping cart.
func (s *RecipeService) RemoveFromShoppingCart(ctx context.Context, userID, recipeID int) error {
	return s.removeRelation(ctx, s.cart, userID, recipeID, "shopping cart")
}

// addRelation is the shared POST half of the toggle contract: the recipe
// must exist and the row must not. The existence check is an optimization;
// the unique constraint remains the final arbiter.
func (s *RecipeService) addRelation(ctx context.Context, relation RelationRepository, userID, recipeID int, label string) (types.RecipeShort, error) {
	short, err := s.repo.GetShort(ctx, recipeID)
	if err != nil {
		return types.RecipeShort{}, err
	}

	exists, err := relation.Exists(ctx, userID, recipeID)
	if err != nil {
		return types.RecipeShort{}, err
	}
	if exists {
		return types.RecipeShort{}, FieldErrors{"errors": fmt.Sprintf("recipe is already in your %s", label)}
	}

	if err := relation.Create(ctx, userID, recipeID); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return types.RecipeShort{}, FieldErrors{"errors": fmt.Sprintf("recipe is already in your %s", label)}
		}
		return types.RecipeShort{}, err
	}
	return short, nil
}

// removeRelation is the shared DELETE half: the recipe and the row must both
// exist.
func (s *RecipeService) removeRelation(ctx context.Context, relation RelationRepository, userID, recipeID int, label string) error {
	if _, err := s.repo.GetShort(ctx, recipeID); err != nil {
		return err
	}

	if err := relation.Delete(ctx, userID, recipeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return FieldErrors{"errors": fmt.Sprintf("recipe is not in your %s", label)}
		}
		return err
	}
	return nil
}

// validate applies the recipe write rules: non-empty unique ingredient and
// tag sets referencing existing catalog rows, minimum cooking time and
// amounts, and a present image on create.
func (s *RecipeService) validate(ctx context.Context, input types.RecipeInput, requireImage bool) error {
	fieldErrors := FieldErrors{}

	if name := strings.TrimSpace(input.Name); name == "" {
		fieldErrors["name"] = "must not be empty"
	} else if len([]rune(name)) > maxRecipeNameLength {
		fieldErrors["name"] = "must be at most 200 characters"
	}
	if strings.TrimSpace(input.Text) == "" {
		fieldErrors["text"] = "must not be empty"
	}
	if input.CookingTime < minCookingTime {
		fieldErrors["cooking_time"] = fmt.Sprintf("must be %d or greater", minCookingTime)
	}
	if requireImage && strings.TrimSpace(input.Image) == "" {
		fieldErrors["image"] = "must not be empty"
	}

	if len(input.Ingredients) == 0 {
		fieldErrors["ingredients"] = "must not be empty"
	} else {
		ids := make([]int, 0, len(input.Ingredients))
		seen := make(map[int]bool, len(input.Ingredients))
		duplicate := false
		for _, line := range input.Ingredients {
			if seen[line.ID] {
				duplicate = true
			}
			seen[line.ID] = true
			ids = append(ids, line.ID)
			if line.Amount < minIngredientAmount {
				fieldErrors["amount"] = fmt.Sprintf("must be %d or greater", minIngredientAmount)
			}
		}
		if duplicate {
			fieldErrors["ingredients"] = "ingredient ids must be unique"
		} else {
			existing, err := s.catalog.ExistingIngredientIDs(ctx, ids)
			if err != nil {
				return err
			}
			if len(existing) != len(ids) {
				fieldErrors["ingredients"] = "unknown ingredient id"
			}
		}
	}

	if len(input.Tags) == 0 {
		fieldErrors["tags"] = "must not be empty"
	} else {
		seen := make(map[int]bool, len(input.Tags))
		duplicate := false
		for _, tagID := range input.Tags {
			if seen[tagID] {
				duplicate = true
			}
			seen[tagID] = true
		}
		if duplicate {
			fieldErrors["tags"] = "tag ids must be unique"
		} else {
			existing, err := s.catalog.ExistingTagIDs(ctx, input.Tags)
			if err != nil {
				return err
			}
			if len(existing) != len(input.Tags) {
				fieldErrors["tags"] = "unknown tag id"
			}
		}
	}

	if len(fieldErrors) > 0 {
		return fieldErrors
	}
	return nil
}
