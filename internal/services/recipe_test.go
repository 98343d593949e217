package services

import (
	"context"
	"errors"
	"testing"

	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/types"
)

type recipeServiceFixture struct {
	svc       *RecipeService
	repo      *fakeRecipeRepo
	catalog   *fakeCatalogRepo
	favorites *fakeRelationRepo
	cart      *fakeRelationRepo
	images    *fakeImageStore
}

func newRecipeServiceForTest(recipes ...types.Recipe) recipeServiceFixture {
	repo := newFakeRecipeRepo(recipes...)
	catalog := newFakeCatalogRepo()
	catalog.addIngredient("картофель", "г")
	catalog.addIngredient("морковь", "г")
	catalog.addTag("Завтрак", "zavtrak")

	favorites := newFakeRelationRepo()
	cart := newFakeRelationRepo()
	images := &fakeImageStore{}
	return recipeServiceFixture{
		svc:       NewRecipeService(repo, catalog, favorites, cart, images),
		repo:      repo,
		catalog:   catalog,
		favorites: favorites,
		cart:      cart,
		images:    images,
	}
}

func validRecipeInput() types.RecipeInput {
	return types.RecipeInput{
		Name:        "Драники",
		Text:        "Натереть картофель, обжарить.",
		Image:       "iVBORw0KGgo=",
		CookingTime: 30,
		Ingredients: []types.IngredientAmount{{ID: 1, Amount: 500}},
		Tags:        []int{3},
	}
}

func TestCreateRecipe(t *testing.T) {
	fx := newRecipeServiceForTest()

	recipe, err := fx.svc.Create(context.Background(), 7, validRecipeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if recipe.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if recipe.Author.ID != 7 {
		t.Fatalf("expected author 7, got %d", recipe.Author.ID)
	}
	if fx.images.saved != 1 {
		t.Fatalf("expected one image upload, got %d", fx.images.saved)
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*types.RecipeInput)
		wantField string
	}{
		{
			name:      "empty name",
			mutate:    func(in *types.RecipeInput) { in.Name = "  " },
			wantField: "name",
		},
		{
			name:      "empty text",
			mutate:    func(in *types.RecipeInput) { in.Text = "" },
			wantField: "text",
		},
		{
			name:      "zero cooking time",
			mutate:    func(in *types.RecipeInput) { in.CookingTime = 0 },
			wantField: "cooking_time",
		},
		{
			name:      "missing image",
			mutate:    func(in *types.RecipeInput) { in.Image = "" },
			wantField: "image",
		},
		{
			name:      "no ingredients",
			mutate:    func(in *types.RecipeInput) { in.Ingredients = nil },
			wantField: "ingredients",
		},
		{
			name: "duplicate ingredient ids",
			mutate: func(in *types.RecipeInput) {
				in.Ingredients = []types.IngredientAmount{{ID: 1, Amount: 100}, {ID: 1, Amount: 200}}
			},
			wantField: "ingredients",
		},
		{
			name: "unknown ingredient id",
			mutate: func(in *types.RecipeInput) {
				in.Ingredients = []types.IngredientAmount{{ID: 99, Amount: 100}}
			},
			wantField: "ingredients",
		},
		{
			name: "zero amount",
			mutate: func(in *types.RecipeInput) {
				in.Ingredients = []types.IngredientAmount{{ID: 1, Amount: 0}}
			},
			wantField: "amount",
		},
		{
			name:      "no tags",
			mutate:    func(in *types.RecipeInput) { in.Tags = nil },
			wantField: "tags",
		},
		{
			name:      "duplicate tag ids",
			mutate:    func(in *types.RecipeInput) { in.Tags = []int{3, 3} },
			wantField: "tags",
		},
		{
			name:      "unknown tag id",
			mutate:    func(in *types.RecipeInput) { in.Tags = []int{99} },
			wantField: "tags",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newRecipeServiceForTest()
			input := validRecipeInput()
			tt.mutate(&input)

			_, err := fx.svc.Create(context.Background(), 7, input)
			fields, ok := AsFieldErrors(err)
			if !ok {
				t.Fatalf("expected field errors, got %v", err)
			}
			if _, ok := fields[tt.wantField]; !ok {
				t.Fatalf("expected error on %q, got %v", tt.wantField, fields)
			}
			if fx.images.saved != 0 {
				t.Fatalf("invalid payload must not upload images")
			}
		})
	}
}

func TestUpdateRecipeAuthorOnly(t *testing.T) {
	fx := newRecipeServiceForTest(types.Recipe{
		ID:     1,
		Name:   "Борщ",
		Author: types.UserProfile{ID: 7},
	})

	input := validRecipeInput()
	input.Image = ""
	if _, err := fx.svc.Update(context.Background(), 1, 8, input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-author, got %v", err)
	}

	recipe, err := fx.svc.Update(context.Background(), 1, 7, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if recipe.Name != input.Name {
		t.Fatalf("expected updated name %q, got %q", input.Name, recipe.Name)
	}
	if fx.images.saved != 0 {
		t.Fatalf("empty image must keep the stored one, got %d uploads", fx.images.saved)
	}

	if _, err := fx.svc.Update(context.Background(), 99, 7, input); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRecipeAuthorOnly(t *testing.T) {
	fx := newRecipeServiceForTest(types.Recipe{ID: 1, Author: types.UserProfile{ID: 7}})

	if err := fx.svc.Delete(context.Background(), 1, 8); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := fx.svc.Delete(context.Background(), 1, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := fx.svc.Delete(context.Background(), 1, 7); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFavoriteToggle(t *testing.T) {
	fx := newRecipeServiceForTest(types.Recipe{ID: 1, Name: "Борщ", Author: types.UserProfile{ID: 7}})

	short, err := fx.svc.AddFavorite(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	if short.ID != 1 || short.Name != "Борщ" {
		t.Fatalf("unexpected short projection: %+v", short)
	}

	_, err = fx.svc.AddFavorite(context.Background(), 5, 1)
	if fields, ok := AsFieldErrors(err); !ok || fields["errors"] == "" {
		t.Fatalf("expected duplicate favorite error, got %v", err)
	}

	if _, err := fx.svc.AddFavorite(context.Background(), 5, 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing recipe, got %v", err)
	}

	if err := fx.svc.RemoveFavorite(context.Background(), 5, 1); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}

	err = fx.svc.RemoveFavorite(context.Background(), 5, 1)
	if fields, ok := AsFieldErrors(err); !ok || fields["errors"] == "" {
		t.Fatalf("expected missing-relation error, got %v", err)
	}

	if err := fx.svc.RemoveFavorite(context.Background(), 5, 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing recipe, got %v", err)
	}
}

func TestShoppingCartToggleIsIndependent(t *testing.T) {
	fx := newRecipeServiceForTest(types.Recipe{ID: 1, Name: "Борщ", Author: types.UserProfile{ID: 7}})

	if _, err := fx.svc.AddToShoppingCart(context.Background(), 5, 1); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	// The same recipe can still be favorited; the relations do not share rows.
	if _, err := fx.svc.AddFavorite(context.Background(), 5, 1); err != nil {
		t.Fatalf("add favorite: %v", err)
	}

	if err := fx.svc.RemoveFromShoppingCart(context.Background(), 5, 1); err != nil {
		t.Fatalf("remove from cart: %v", err)
	}
	err := fx.svc.RemoveFromShoppingCart(context.Background(), 5, 1)
	if fields, ok := AsFieldErrors(err); !ok || fields["errors"] == "" {
		t.Fatalf("expected missing-relation error, got %v", err)
	}
}
