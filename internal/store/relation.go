package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RelationRepository is the one membership repository behind both
// user↔recipe relations (favorites and shopping cart). The relation is
// identified by its join table; the uniqueness key is always
// (user_id, recipe_id).
type RelationRepository struct {
	db    *sql.DB
	table string
}

// NewFavoriteRepository returns the favorites relation.
func NewFavoriteRepository(db *sql.DB) *RelationRepository {
	return &RelationRepository{db: db, table: "favorites"}
}

// NewShoppingCartRepository returns the shopping-cart relation.
func NewShoppingCartRepository(db *sql.DB) *RelationRepository {
	return &RelationRepository{db: db, table: "shopping_cart"}
}

// Exists reports whether the (user, recipe) row is present.
func (r *RelationRepository) Exists(ctx context.Context, userID, recipeID int) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE user_id = $1 AND recipe_id = $2
		)`, r.table)
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, recipeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts the (user, recipe) row.
// Returns ErrAlreadyExists when the row is already present; the table's
// unique constraint arbitrates concurrent duplicates.
func (r *RelationRepository) Create(ctx context.Context, userID, recipeID int) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, recipe_id, created_at)
		VALUES ($1, $2, $3)`, r.table)
	if _, err := r.db.ExecContext(ctx, query, userID, recipeID, time.Now()); err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// Delete removes the (user, recipe) row.
// Returns ErrNotFound when the row does not exist.
func (r *RelationRepository) Delete(ctx context.Context, userID, recipeID int) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND recipe_id = $2`, r.table)
	result, err := r.db.ExecContext(ctx, query, userID, recipeID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
