package services

import (
	"context"

	"github.com/recipegram/apiserver/types"
)

// ShoppingListRepository aggregates the cart's ingredient lines.
type ShoppingListRepository interface {
	Aggregate(ctx context.Context, userID int) ([]types.ShoppingListItem, error)
}

// ShoppingListRenderer turns aggregated items into a downloadable document.
type ShoppingListRenderer interface {
	Render(items []types.ShoppingListItem) ([]byte, error)
}

// ShoppingListService produces the shopping-list PDF export.
type ShoppingListService struct {
	repo     ShoppingListRepository
	renderer ShoppingListRenderer
}

func NewShoppingListService(repo ShoppingListRepository, renderer ShoppingListRenderer) *ShoppingListService {
	return &ShoppingListService{repo: repo, renderer: renderer}
}

// Export aggregates the user's cart by (ingredient, unit) and renders the
// PDF document. A missing font resource fails the export fatally.
func (s *ShoppingListService) Export(ctx context.Context, userID int) ([]byte, error) {
	items, err := s.repo.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(items)
}
