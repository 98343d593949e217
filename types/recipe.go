package types

import "time"

// Recipe is the central aggregate: a recipe row plus its ingredient-amount
// lines and tag set, projected with viewer-relative relation flags.
type Recipe struct {
	// ID is the unique identifier of the recipe.
	ID int `json:"id" db:"id"`

	// Author is the account that created the recipe. Only the author may
	// update or delete it.
	Author UserProfile `json:"author"`

	// Name is the recipe title.
	Name string `json:"name" db:"name"`

	// Image is the storage key of the recipe picture, set from a base64
	// upload on create/update.
	Image string `json:"image" db:"image"`

	// Text is the free-form cooking instructions.
	Text string `json:"text" db:"text"`

	// CookingTime is the preparation time in minutes. Always >= 1.
	CookingTime int `json:"cooking_time" db:"cooking_time"`

	// Ingredients are the (ingredient, amount) lines with names and units
	// resolved. Each ingredient appears at most once per recipe.
	Ingredients []RecipeIngredient `json:"ingredients"`

	// Tags is the recipe's tag set. Each tag appears at most once.
	Tags []Tag `json:"tags"`

	// IsFavorited reports whether the requesting account has the recipe in
	// its favorites. Always false for anonymous requests.
	IsFavorited bool `json:"is_favorited"`

	// IsInShoppingCart reports whether the requesting account has the recipe
	// in its shopping cart. Always false for anonymous requests.
	IsInShoppingCart bool `json:"is_in_shopping_cart"`

	// CreatedAt orders recipe listings (newest first, then id).
	CreatedAt time.Time `json:"-" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// RecipeIngredient is one resolved ingredient line of a recipe.
type RecipeIngredient struct {
	ID              int    `json:"id" db:"ingredient_id"`
	Name            string `json:"name" db:"name"`
	MeasurementUnit string `json:"measurement_unit" db:"measurement_unit"`
	Amount          int    `json:"amount" db:"amount"`
}

// RecipeShort is the minimal recipe representation returned by the
// favorite/cart toggles and embedded into subscription responses.
type RecipeShort struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Short projects the recipe into its minimal representation.
func (r Recipe) Short() RecipeShort {
	return RecipeShort{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// IngredientAmount is one (ingredient id, amount) pair of a recipe write
// request.
type IngredientAmount struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// RecipeInput is the recipe write payload. Image carries a base64 data URL;
// on update an empty image keeps the stored one.
type RecipeInput struct {
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	Image       string             `json:"image"`
	CookingTime int                `json:"cooking_time"`
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []int              `json:"tags"`
}

// ShoppingListItem is one aggregated line of the shopping-list export:
// the summed amount of an ingredient across every recipe in the cart.
type ShoppingListItem struct {
	Name   string `json:"name" db:"name"`
	Amount int    `json:"amount" db:"amount"`
	Unit   string `json:"measurement_unit" db:"unit"`
}
