package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/recipegram/apiserver/internal/services"
	"github.com/recipegram/apiserver/internal/shoppinglist"
	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/internal/validation"
	"github.com/recipegram/apiserver/types"
)

// RecipeHandler serves recipe CRUD, the favorite and shopping-cart toggles
// and the shopping-list export.
type RecipeHandler struct {
	recipeService       *services.RecipeService
	shoppingListService *services.ShoppingListService
}

// NewRecipeHandler constructs a RecipeHandler with the provided dependencies.
func NewRecipeHandler(recipeService *services.RecipeService, shoppingListService *services.ShoppingListService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService, shoppingListService: shoppingListService}
}

// RecipeRouter registers recipe routes on the given router.
func RecipeRouter(r chi.Router, recipeService *services.RecipeService, shoppingListService *services.ShoppingListService, jwtSecret string) {
	handler := NewRecipeHandler(recipeService, shoppingListService)
	auth := RequireAuth(jwtSecret)
	optional := OptionalAuth(jwtSecret)

	r.With(optional).Get("/", handler.List)
	r.With(auth).Post("/", handler.Create)
	r.With(auth).Get("/download_shopping_cart", handler.DownloadShoppingCart)
	r.With(optional).Get("/{recipeID}", handler.Get)
	r.With(auth).Patch("/{recipeID}", handler.Update)
	r.With(auth).Delete("/{recipeID}", handler.Delete)
	r.With(auth).Post("/{recipeID}/favorite", handler.AddFavorite)
	r.With(auth).Delete("/{recipeID}/favorite", handler.RemoveFavorite)
	r.With(auth).Post("/{recipeID}/shopping_cart", handler.AddToShoppingCart)
	r.With(auth).Delete("/{recipeID}/shopping_cart", handler.RemoveFromShoppingCart)
}

type RecipeRequest struct {
	Name        string                   `json:"name" validate:"required,max=200"`
	Text        string                   `json:"text" validate:"required"`
	Image       string                   `json:"image"`
	CookingTime int                      `json:"cooking_time" validate:"required,min=1"`
	Ingredients []types.IngredientAmount `json:"ingredients" validate:"required"`
	Tags        []int                    `json:"tags" validate:"required"`
}

type RecipeListResponse struct {
	Items []types.Recipe `json:"items"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
}

// List returns a page of recipes filtered by author, tag slugs and the
// viewer-relative favorite and shopping-cart flags.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parseRecipeFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.ViewerID = viewerIDFromContext(r.Context())

	recipes, total, err := h.recipeService.List(r.Context(), filter, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}

	writeJSON(w, http.StatusOK, RecipeListResponse{
		Items: recipes,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Get returns one recipe with viewer-relative flags.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "recipeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipe, err := h.recipeService.Get(r.Context(), id, viewerIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "recipe not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load recipe")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Create stores a new recipe authored by the authenticated user.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeRecipeRequest(w, r)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Create(r.Context(), userID, req.input())
	if err != nil {
		if fields, ok := services.AsFieldErrors(err); ok {
			writeFieldErrors(w, fields)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

// Update replaces the recipe's fields. Author only.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "recipeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, ok := decodeRecipeRequest(w, r)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Update(r.Context(), id, userID, req.input())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "recipe not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "only the author can edit this recipe")
		default:
			if fields, ok := services.AsFieldErrors(err); ok {
				writeFieldErrors(w, fields)
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to update recipe")
		}
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// Delete removes the recipe. Author only.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "recipeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.recipeService.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "recipe not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "only the author can delete this recipe")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddFavorite puts the recipe into the user's favorites. A missing recipe is
// a validation failure on this path, not a 404.
func (h *RecipeHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, h.recipeService.AddFavorite)
}

// RemoveFavorite takes the recipe out of the user's favorites.
func (h *RecipeHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, h.recipeService.RemoveFavorite)
}

// AddToShoppingCart puts the recipe into the user's shopping cart.
func (h *RecipeHandler) AddToShoppingCart(w http.ResponseWriter, r *http.Request) {
	h.addRelation(w, r, h.recipeService.AddToShoppingCart)
}

// RemoveFromShoppingCart takes the recipe out of the user's shopping cart.
func (h *RecipeHandler) RemoveFromShoppingCart(w http.ResponseWriter, r *http.Request) {
	h.removeRelation(w, r, h.recipeService.RemoveFromShoppingCart)
}

// DownloadShoppingCart aggregates the cart and streams the PDF attachment.
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	document, err := h.shoppingListService.Export(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export shopping list")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", shoppinglist.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(document)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document)
}

func (h *RecipeHandler) addRelation(w http.ResponseWriter, r *http.Request, add func(ctx context.Context, userID, recipeID int) (types.RecipeShort, error)) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipeID, err := parseIDParam(r, "recipeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	short, err := add(r.Context(), userID, recipeID)
	if err != nil {
		if fields, ok := services.AsFieldErrors(err); ok {
			writeFieldErrors(w, fields)
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			writeFieldErrors(w, map[string]string{"recipe": "recipe does not exist"})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to add recipe")
		return
	}
	writeJSON(w, http.StatusCreated, short)
}

func (h *RecipeHandler) removeRelation(w http.ResponseWriter, r *http.Request, remove func(ctx context.Context, userID, recipeID int) error) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipeID, err := parseIDParam(r, "recipeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := remove(r.Context(), userID, recipeID); err != nil {
		if fields, ok := services.AsFieldErrors(err); ok {
			writeFieldErrors(w, fields)
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "recipe not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeRecipeRequest(w http.ResponseWriter, r *http.Request) (RecipeRequest, bool) {
	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return RecipeRequest{}, false
	}
	if fields := validation.ValidateStruct(req); fields != nil {
		writeFieldErrors(w, fields)
		return RecipeRequest{}, false
	}
	return req, true
}

func (req RecipeRequest) input() types.RecipeInput {
	return types.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		Image:       req.Image,
		CookingTime: req.CookingTime,
		Ingredients: req.Ingredients,
		Tags:        req.Tags,
	}
}

// parseRecipeFilter reads the list filters: author, repeated tag slugs and
// the boolean viewer-relative flags (accepted as "1").
func parseRecipeFilter(r *http.Request) (store.RecipeFilter, error) {
	filter := store.RecipeFilter{}
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("author")); raw != "" {
		authorID, err := strconv.Atoi(raw)
		if err != nil || authorID < 1 {
			return store.RecipeFilter{}, errors.New("invalid author")
		}
		filter.AuthorID = authorID
	}

	for _, slug := range query["tags"] {
		if slug = strings.TrimSpace(slug); slug != "" {
			filter.TagSlugs = append(filter.TagSlugs, slug)
		}
	}

	filter.Favorited = query.Get("is_favorited") == "1"
	filter.InShoppingCart = query.Get("is_in_shopping_cart") == "1"
	return filter, nil
}
