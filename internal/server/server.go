package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/recipegram/apiserver/config"
	"github.com/recipegram/apiserver/internal/db"
	"github.com/recipegram/apiserver/internal/handlers"
	"github.com/recipegram/apiserver/internal/logging"
	"github.com/recipegram/apiserver/internal/media"
	"github.com/recipegram/apiserver/internal/services"
	"github.com/recipegram/apiserver/internal/shoppinglist"
	"github.com/recipegram/apiserver/internal/storage"
	"github.com/recipegram/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New opens the database and object storage, wires the repositories,
// services and routers, and returns a ready-to-start Server.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	subRepo := store.NewSubscriptionRepository(dbConn)
	catalogRepo := store.NewCatalogRepository(dbConn)
	recipeRepo := store.NewRecipeRepository(dbConn)
	favoriteRepo := store.NewFavoriteRepository(dbConn)
	cartRepo := store.NewShoppingCartRepository(dbConn)
	shoppingListRepo := store.NewShoppingListRepository(dbConn)

	imageStore := media.NewStore(objects)
	renderer := shoppinglist.NewRenderer(cfg.PDF)

	userService := services.NewUserService(userRepo, subRepo)
	subService := services.NewSubscriptionService(subRepo, userRepo, recipeRepo)
	catalogService := services.NewCatalogService(catalogRepo)
	recipeService := services.NewRecipeService(recipeRepo, catalogRepo, favoriteRepo, cartRepo, imageStore)
	shoppingListService := services.NewShoppingListService(shoppingListRepo, renderer)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.StripSlashes,
		requestLogger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, userService, jwtSecret, cfg.JWTTTL)
		})
		api.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, userService, subService, jwtSecret)
		})
		api.Route("/ingredients", func(r chi.Router) {
			handlers.IngredientRouter(r, catalogService, userService, jwtSecret)
		})
		api.Route("/tags", func(r chi.Router) {
			handlers.TagRouter(r, catalogService, userService, jwtSecret)
		})
		api.Route("/recipes", func(r chi.Router) {
			handlers.RecipeRouter(r, recipeService, shoppingListService, jwtSecret)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// requestLogger logs one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)

		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", wrapped.Status()).
			Int("bytes", wrapped.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
