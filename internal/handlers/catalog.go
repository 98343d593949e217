package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/recipegram/apiserver/internal/services"
	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/internal/validation"
	"github.com/recipegram/apiserver/types"
)

// CatalogHandler serves the ingredient and tag reference data.
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler constructs a CatalogHandler with the provided dependencies.
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// IngredientRouter registers ingredient routes on the given router.
func IngredientRouter(r chi.Router, catalogService *services.CatalogService, userService *services.UserService, jwtSecret string) {
	handler := NewCatalogHandler(catalogService)

	r.Get("/", handler.ListIngredients)
	r.Get("/{ingredientID}", handler.GetIngredient)
	r.With(RequireAuth(jwtSecret), requireAdmin(userService)).Post("/", handler.CreateIngredient)
}

// TagRouter registers tag routes on the given router.
func TagRouter(r chi.Router, catalogService *services.CatalogService, userService *services.UserService, jwtSecret string) {
	handler := NewCatalogHandler(catalogService)

	r.Get("/", handler.ListTags)
	r.Get("/{tagID}", handler.GetTag)
	r.With(RequireAuth(jwtSecret), requireAdmin(userService)).Post("/", handler.CreateTag)
}

type CreateIngredientRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
}

type CreateTagRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Color *string `json:"color" validate:"omitempty,max=7"`
	Slug  string  `json:"slug" validate:"omitempty,max=200"`
}

// ListIngredients returns ingredients, optionally filtered by a
// case-insensitive name prefix.
func (h *CatalogHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalogService.ListIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list ingredients")
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

// GetIngredient returns one ingredient by id.
func (h *CatalogHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "ingredientID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ingredient, err := h.catalogService.GetIngredient(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ingredient not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

// CreateIngredient adds one catalog ingredient. Admin only.
func (h *CatalogHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req CreateIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if fields := validation.ValidateStruct(req); fields != nil {
		writeFieldErrors(w, fields)
		return
	}

	ingredient, err := h.catalogService.CreateIngredient(r.Context(), req.Name, req.MeasurementUnit)
	if err != nil {
		if fields, ok := services.AsFieldErrors(err); ok {
			writeFieldErrors(w, fields)
			return
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "ingredient already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create ingredient")
		return
	}
	writeJSON(w, http.StatusCreated, ingredient)
}

// ListTags returns all tags.
func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalogService.ListTags(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// GetTag returns one tag by id.
func (h *CatalogHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "tagID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tag, err := h.catalogService.GetTag(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tag not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load tag")
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// CreateTag adds one tag. Admin only.
func (h *CatalogHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if fields := validation.ValidateStruct(req); fields != nil {
		writeFieldErrors(w, fields)
		return
	}

	tag, err := h.catalogService.CreateTag(r.Context(), types.Tag{
		Name:  req.Name,
		Color: req.Color,
		Slug:  req.Slug,
	})
	if err != nil {
		if fields, ok := services.AsFieldErrors(err); ok {
			writeFieldErrors(w, fields)
			return
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "tag already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create tag")
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}
