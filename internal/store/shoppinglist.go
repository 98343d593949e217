package store

import (
	"context"
	"database/sql"

	"github.com/recipegram/apiserver/types"
)

// ShoppingListRepository aggregates ingredient lines across every recipe in
// a user's shopping cart.
type ShoppingListRepository struct {
	db *sql.DB
}

func NewShoppingListRepository(db *sql.DB) *ShoppingListRepository {
	return &ShoppingListRepository{db: db}
}

// Aggregate groups the cart's ingredient lines by (name, unit) and sums the
// amounts, one row per distinct ingredient.
func (r *ShoppingListRepository) Aggregate(ctx context.Context, userID int) ([]types.ShoppingListItem, error) {
	const query = `
		SELECT i.name, SUM(ri.amount), mu.unit
		FROM shopping_cart sc
		JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
		JOIN ingredients i ON i.id = ri.ingredient_id
		JOIN measurement_units mu ON mu.id = i.measurement_unit_id
		WHERE sc.user_id = $1
		GROUP BY i.name, mu.unit
		ORDER BY i.name, mu.unit`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.ShoppingListItem, 0)
	for rows.Next() {
		var item types.ShoppingListItem
		if err := rows.Scan(&item.Name, &item.Amount, &item.Unit); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
