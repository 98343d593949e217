package services

import (
	"context"
	"testing"

	"github.com/recipegram/apiserver/types"
)

func TestMakeSlug(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Завтрак", want: "zavtrak"},
		{name: "Обед дома", want: "obed-doma"},
		{name: "Dinner Party", want: "dinner-party"},
	}
	for _, tt := range tests {
		if got := MakeSlug(tt.name); got != tt.want {
			t.Fatalf("MakeSlug(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCreateTagDerivesSlug(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogRepo())

	tag, err := svc.CreateTag(context.Background(), types.Tag{Name: "Завтрак"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if tag.Slug != "zavtrak" {
		t.Fatalf("expected derived slug zavtrak, got %q", tag.Slug)
	}

	explicit, err := svc.CreateTag(context.Background(), types.Tag{Name: "Обед", Slug: "lunch"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if explicit.Slug != "lunch" {
		t.Fatalf("explicit slug must be kept, got %q", explicit.Slug)
	}
}

func TestCreateTagEmptyName(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogRepo())

	_, err := svc.CreateTag(context.Background(), types.Tag{Name: "   "})
	fields, ok := AsFieldErrors(err)
	if !ok || fields["name"] == "" {
		t.Fatalf("expected name error, got %v", err)
	}
}

func TestCreateIngredientValidation(t *testing.T) {
	svc := NewCatalogService(newFakeCatalogRepo())

	_, err := svc.CreateIngredient(context.Background(), " ", "")
	fields, ok := AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fields["name"] == "" || fields["measurement_unit"] == "" {
		t.Fatalf("expected both fields flagged, got %v", fields)
	}

	ingredient, err := svc.CreateIngredient(context.Background(), " мука ", " г ")
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	if ingredient.Name != "мука" || ingredient.MeasurementUnit != "г" {
		t.Fatalf("expected trimmed fields, got %+v", ingredient)
	}
}

func TestListIngredientsPrefix(t *testing.T) {
	repo := newFakeCatalogRepo()
	repo.addIngredient("мука", "г")
	repo.addIngredient("молоко", "мл")
	repo.addIngredient("сахар", "г")
	svc := NewCatalogService(repo)

	ingredients, err := svc.ListIngredients(context.Background(), "м")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ingredients) != 2 {
		t.Fatalf("expected 2 matches for prefix, got %d", len(ingredients))
	}
}
