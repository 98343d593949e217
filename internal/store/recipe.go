package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/recipegram/apiserver/types"
)

// RecipeRepository handles persistence for the recipe aggregate: the recipe
// row, its ingredient lines and its tag set.
type RecipeRepository struct {
	db *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// RecipeFilter restricts recipe listings. ViewerID scopes the
// favorited/in-cart filters and the projection flags; zero means anonymous.
type RecipeFilter struct {
	AuthorID       int
	TagSlugs       []string
	Favorited      bool
	InShoppingCart bool
	ViewerID       int
}

// recipeSelect projects the recipe row, its author and the viewer-relative
// relation flags as query-time EXISTS annotations ($1 is the viewer id).
const recipeSelect = `
	SELECT r.id, r.name, r.image, r.text, r.cooking_time, r.created_at, r.updated_at,
		u.id, u.email, u.username, u.first_name, u.last_name,
		EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = $1) AS is_favorited,
		EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = r.id AND sc.user_id = $1) AS is_in_shopping_cart,
		EXISTS (SELECT 1 FROM subscriptions s WHERE s.user_id = $1 AND s.subscription_id = u.id) AS author_subscribed
	FROM recipes r
	JOIN users u ON u.id = r.author_id`

func scanRecipe(row interface{ Scan(...any) error }) (types.Recipe, error) {
	var recipe types.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.Name,
		&recipe.Image,
		&recipe.Text,
		&recipe.CookingTime,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
		&recipe.Author.ID,
		&recipe.Author.Email,
		&recipe.Author.Username,
		&recipe.Author.FirstName,
		&recipe.Author.LastName,
		&recipe.IsFavorited,
		&recipe.IsInShoppingCart,
		&recipe.Author.IsSubscribed,
	)
	return recipe, err
}

func buildRecipeWhere(filter RecipeFilter, args *[]any) string {
	var conds []string
	if filter.AuthorID > 0 {
		*args = append(*args, filter.AuthorID)
		conds = append(conds, fmt.Sprintf("r.author_id = $%d", len(*args)))
	}
	if len(filter.TagSlugs) > 0 {
		*args = append(*args, pq.Array(filter.TagSlugs))
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE rt.recipe_id = r.id AND t.slug = ANY($%d))",
			len(*args)))
	}
	// Relation filters are requester-scoped; $1 is always the viewer id.
	if filter.Favorited && filter.ViewerID > 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = $1)")
	}
	if filter.InShoppingCart && filter.ViewerID > 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = r.id AND sc.user_id = $1)")
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// List returns a page of recipes matching the filter, newest first, with the
// total matching count. Ingredient lines and tags are loaded for the page.
func (r *RecipeRepository) List(ctx context.Context, filter RecipeFilter, offset, limit int) ([]types.Recipe, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	args := []any{filter.ViewerID}
	where := buildRecipeWhere(filter, &args)

	// Count over the same projection so the parameter set matches exactly.
	countQuery := "SELECT COUNT(1) FROM (" + recipeSelect + where + ") AS matched"
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, offset, limit)
	listQuery := fmt.Sprintf(
		"%s%s ORDER BY r.created_at DESC, r.id OFFSET $%d LIMIT $%d",
		recipeSelect, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	recipes := make([]types.Recipe, 0, limit)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, err
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachLinesAndTags(ctx, recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// Get returns one recipe with its lines, tags and viewer-relative flags.
func (r *RecipeRepository) Get(ctx context.Context, id, viewerID int) (types.Recipe, error) {
	query := recipeSelect + ` WHERE r.id = $2`
	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, query, viewerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Recipe{}, ErrNotFound
		}
		return types.Recipe{}, err
	}

	recipes := []types.Recipe{recipe}
	if err := r.attachLinesAndTags(ctx, recipes); err != nil {
		return types.Recipe{}, err
	}
	return recipes[0], nil
}

func (r *RecipeRepository) attachLinesAndTags(ctx context.Context, recipes []types.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]int, len(recipes))
	index := make(map[int]*types.Recipe, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		index[recipes[i].ID] = &recipes[i]
		recipes[i].Ingredients = []types.RecipeIngredient{}
		recipes[i].Tags = []types.Tag{}
	}

	const linesQuery = `
		SELECT ri.recipe_id, i.id, i.name, mu.unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		JOIN measurement_units mu ON mu.id = i.measurement_unit_id
		WHERE ri.recipe_id = ANY($1)
		ORDER BY ri.id`
	rows, err := r.db.QueryContext(ctx, linesQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	for rows.Next() {
		var recipeID int
		var line types.RecipeIngredient
		if err := rows.Scan(&recipeID, &line.ID, &line.Name, &line.MeasurementUnit, &line.Amount); err != nil {
			rows.Close()
			return err
		}
		if recipe, ok := index[recipeID]; ok {
			recipe.Ingredients = append(recipe.Ingredients, line)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	const tagsQuery = `
		SELECT rt.recipe_id, t.id, t.name, t.color, t.slug, t.created_at
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1)
		ORDER BY rt.id`
	rows, err = r.db.QueryContext(ctx, tagsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var recipeID int
		var tag types.Tag
		if err := rows.Scan(&recipeID, &tag.ID, &tag.Name, &tag.Color, &tag.Slug, &tag.CreatedAt); err != nil {
			return err
		}
		if recipe, ok := index[recipeID]; ok {
			recipe.Tags = append(recipe.Tags, tag)
		}
	}
	return rows.Err()
}

// Create persists the recipe row and its line sets in one transaction.
// Partial writes are never observable.
func (r *RecipeRepository) Create(ctx context.Context, authorID int, input types.RecipeInput, imageKey string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	const query = `
		INSERT INTO recipes (author_id, name, image, text, cooking_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var id int
	if err := tx.QueryRowContext(
		ctx,
		query,
		authorID,
		input.Name,
		imageKey,
		input.Text,
		input.CookingTime,
		now,
		now,
	).Scan(&id); err != nil {
		return 0, err
	}

	if err := insertRecipeLines(ctx, tx, id, input.Ingredients, input.Tags); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Update replaces the scalar fields and fully re-creates the ingredient and
// tag line sets, all inside one transaction. An empty imageKey keeps the
// stored image.
func (r *RecipeRepository) Update(ctx context.Context, id int, input types.RecipeInput, imageKey string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
		UPDATE recipes
		SET name = $1,
			image = CASE WHEN $2 = '' THEN image ELSE $2 END,
			text = $3,
			cooking_time = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := tx.ExecContext(ctx, query, input.Name, imageKey, input.Text, input.CookingTime, time.Now(), id)
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, id); err != nil {
		return err
	}
	if err := insertRecipeLines(ctx, tx, id, input.Ingredients, input.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

func insertRecipeLines(ctx context.Context, tx *sql.Tx, recipeID int, lines []types.IngredientAmount, tagIDs []int) error {
	const lineQuery = `
		INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount)
		VALUES ($1, $2, $3)`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, lineQuery, recipeID, line.ID, line.Amount); err != nil {
			return mapUniqueViolation(err)
		}
	}

	const tagQuery = `
		INSERT INTO recipe_tags (recipe_id, tag_id)
		VALUES ($1, $2)`
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, tagQuery, recipeID, tagID); err != nil {
			return mapUniqueViolation(err)
		}
	}
	return nil
}

// Delete removes the recipe. Ingredient lines, tag lines, favorites and cart
// entries go with it through the cascading foreign keys.
func (r *RecipeRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM recipes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
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

// GetShort returns the minimal projection of a recipe.
func (r *RecipeRepository) GetShort(ctx context.Context, id int) (types.RecipeShort, error) {
	const query = `
		SELECT id, name, image, cooking_time
		FROM recipes
		WHERE id = $1`
	var short types.RecipeShort
	err := r.db.QueryRowContext(ctx, query, id).Scan(&short.ID, &short.Name, &short.Image, &short.CookingTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.RecipeShort{}, ErrNotFound
		}
		return types.RecipeShort{}, err
	}
	return short, nil
}

// ListShortByAuthors returns every author's recipes as short projections,
// newest first, keyed by author id.
func (r *RecipeRepository) ListShortByAuthors(ctx context.Context, authorIDs []int) (map[int][]types.RecipeShort, error) {
	result := make(map[int][]types.RecipeShort, len(authorIDs))
	if len(authorIDs) == 0 {
		return result, nil
	}

	const query = `
		SELECT author_id, id, name, image, cooking_time
		FROM recipes
		WHERE author_id = ANY($1)
		ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(authorIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var authorID int
		var short types.RecipeShort
		if err := rows.Scan(&authorID, &short.ID, &short.Name, &short.Image, &short.CookingTime); err != nil {
			return nil, err
		}
		result[authorID] = append(result[authorID], short)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
