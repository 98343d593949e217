package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/recipegram/apiserver/internal/services"
	"github.com/recipegram/apiserver/internal/store"
	"github.com/recipegram/apiserver/internal/validation"
	"github.com/recipegram/apiserver/types"
)

// UserHandler serves account, profile and subscription endpoints.
type UserHandler struct {
	userService *services.UserService
	subService  *services.SubscriptionService
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(userService *services.UserService, subService *services.SubscriptionService) *UserHandler {
	return &UserHandler{userService: userService, subService: subService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, subService *services.SubscriptionService, jwtSecret string) {
	handler := NewUserHandler(userService, subService)
	auth := RequireAuth(jwtSecret)
	optional := OptionalAuth(jwtSecret)

	r.Post("/", handler.Register)
	r.With(optional).Get("/", handler.List)
	r.With(auth).Get("/me", handler.Me)
	r.With(auth).Post("/set_password", handler.SetPassword)
	r.With(auth).Get("/subscriptions", handler.ListSubscriptions)
	r.With(optional).Get("/{userID}", handler.GetProfile)
	r.With(auth).Post("/{userID}/subscribe", handler.Subscribe)
	r.With(auth).Delete("/{userID}/subscribe", handler.Unsubscribe)
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type UserListResponse struct {
	Items []types.UserProfile `json:"items"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
	Total int                 `json:"total"`
}

type SubscriptionListResponse struct {
	Items []types.UserWithRecipes `json:"items"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
	Total int                     `json:"total"`
}

// Register creates a new user account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if fields := validation.ValidateStruct(req); fields != nil {
		writeFieldErrors(w, fields)
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Password:  req.Password,
	})
	if err != nil {
		if fields, ok := services.AsFieldErrors(err); ok {
			writeFieldErrors(w, fields)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user.Profile(false))
}

// List returns a page of user profiles.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	viewerID := viewerIDFromContext(r.Context())
	profiles, total, err := h.userService.List(r.Context(), viewerID, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		Items: profiles,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user.Profile(false))
}

// GetProfile returns one user profile with a viewer-relative subscription flag.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	viewerID := viewerIDFromContext(r.Context())
	profile, err := h.userService.GetProfile(r.Context(), id, viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// SetPassword replaces the authenticated user's password.
func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if fields := validation.ValidateStruct(req); fields != nil {
		writeFieldErrors(w, fields)
		return
	}

	if err := h.userService.SetPassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		if fields, ok := services.AsFieldErrors(err); ok {
			writeFieldErrors(w, fields)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to set password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions returns the authenticated user's followees with their
// recipes, optionally truncated via recipes_limit.
func (h *UserHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipesLimit, err := parseRecipesLimit(r)
	if err != nil {
		writeFieldErrors(w, map[string]string{"recipes_limit": "must be an integer"})
		return
	}

	followees, total, err := h.subService.List(r.Context(), userID, recipesLimit, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}

	writeJSON(w, http.StatusOK, SubscriptionListResponse{
		Items: followees,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Subscribe follows the target user.
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	followeeID, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipesLimit, err := parseRecipesLimit(r)
	if err != nil {
		writeFieldErrors(w, map[string]string{"recipes_limit": "must be an integer"})
		return
	}

	followee, err := h.subService.Subscribe(r.Context(), userID, followeeID, recipesLimit)
	if err != nil {
		if fields, ok := services.AsFieldErrors(err); ok {
			writeFieldErrors(w, fields)
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	writeJSON(w, http.StatusCreated, followee)
}

// Unsubscribe unfollows the target user.
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	followeeID, err := parseIDParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.subService.Unsubscribe(r.Context(), userID, followeeID); err != nil {
		if fields, ok := services.AsFieldErrors(err); ok {
			writeFieldErrors(w, fields)
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseRecipesLimit reads the optional recipes_limit query parameter.
func parseRecipesLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("recipes_limit"))
	if raw == "" {
		return services.NoRecipesLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("invalid recipes_limit")
	}
	return limit, nil
}
