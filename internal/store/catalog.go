package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/recipegram/apiserver/types"
)

// likeEscaper neutralizes LIKE metacharacters in user-supplied search text so
// a prefix such as "50%" matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLikePrefix(prefix string) string {
	return likeEscaper.Replace(prefix)
}

// CatalogRepository handles persistence for ingredients, measurement units
// and tags. The catalog is read-mostly reference data.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListIngredients returns all ingredients ordered by id, optionally
// restricted to a case-insensitive name prefix. Unpaginated.
func (r *CatalogRepository) ListIngredients(ctx context.Context, namePrefix string) ([]types.Ingredient, error) {
	const query = `
		SELECT i.id, i.name, mu.unit
		FROM ingredients i
		JOIN measurement_units mu ON mu.id = i.measurement_unit_id
		WHERE $1 = '' OR lower(i.name) LIKE lower($1) || '%' ESCAPE '\'
		ORDER BY i.id`
	rows, err := r.db.QueryContext(ctx, query, escapeLikePrefix(namePrefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ingredients := make([]types.Ingredient, 0)
	for rows.Next() {
		var ingredient types.Ingredient
		if err := rows.Scan(&ingredient.ID, &ingredient.Name, &ingredient.MeasurementUnit); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ingredient)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *CatalogRepository) GetIngredient(ctx context.Context, id int) (types.Ingredient, error) {
	const query = `
		SELECT i.id, i.name, mu.unit
		FROM ingredients i
		JOIN measurement_units mu ON mu.id = i.measurement_unit_id
		WHERE i.id = $1`
	var ingredient types.Ingredient
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ingredient.ID, &ingredient.Name, &ingredient.MeasurementUnit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Ingredient{}, ErrNotFound
		}
		return types.Ingredient{}, err
	}
	return ingredient, nil
}

// CreateIngredient inserts an ingredient, creating its measurement unit when
// the label is new. Returns ErrAlreadyExists for a duplicate
// (name, measurement unit) pair.
func (r *CatalogRepository) CreateIngredient(ctx context.Context, name, unit string) (types.Ingredient, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Ingredient{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Upsert keeps the unit label unique while always yielding its id.
	const unitQuery = `
		INSERT INTO measurement_units (unit)
		VALUES ($1)
		ON CONFLICT (unit) DO UPDATE SET unit = EXCLUDED.unit
		RETURNING id`
	var unitID int
	if err := tx.QueryRowContext(ctx, unitQuery, unit).Scan(&unitID); err != nil {
		return types.Ingredient{}, err
	}

	const query = `
		INSERT INTO ingredients (name, measurement_unit_id)
		VALUES ($1, $2)
		RETURNING id`
	ingredient := types.Ingredient{Name: name, MeasurementUnit: unit}
	if err := tx.QueryRowContext(ctx, query, name, unitID).Scan(&ingredient.ID); err != nil {
		return types.Ingredient{}, mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return types.Ingredient{}, err
	}
	return ingredient, nil
}

// ExistingIngredientIDs filters ids down to those present in the catalog.
func (r *CatalogRepository) ExistingIngredientIDs(ctx context.Context, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id FROM ingredients WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make([]int, 0, len(ids))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing = append(existing, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return existing, nil
}

// ListTags returns all tags ordered by name then creation time. Unpaginated.
func (r *CatalogRepository) ListTags(ctx context.Context) ([]types.Tag, error) {
	const query = `
		SELECT id, name, color, slug, created_at
		FROM tags
		ORDER BY name, created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]types.Tag, 0)
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *CatalogRepository) GetTag(ctx context.Context, id int) (types.Tag, error) {
	const query = `
		SELECT id, name, color, slug, created_at
		FROM tags
		WHERE id = $1`
	var tag types.Tag
	err := r.db.QueryRowContext(ctx, query, id).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.Slug, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Tag{}, ErrNotFound
		}
		return types.Tag{}, err
	}
	return tag, nil
}

// CreateTag inserts a tag. Returns ErrAlreadyExists for a duplicate name or
// slug. The caller is responsible for deriving the slug when absent.
func (r *CatalogRepository) CreateTag(ctx context.Context, tag types.Tag) (types.Tag, error) {
	tag.CreatedAt = time.Now()

	const query = `
		INSERT INTO tags (name, color, slug, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, tag.Name, tag.Color, tag.Slug, tag.CreatedAt).Scan(&tag.ID); err != nil {
		return types.Tag{}, mapUniqueViolation(err)
	}
	return tag, nil
}

// ExistingTagIDs filters ids down to those present in the catalog.
func (r *CatalogRepository) ExistingTagIDs(ctx context.Context, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id FROM tags WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make([]int, 0, len(ids))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing = append(existing, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return existing, nil
}
