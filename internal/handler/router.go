package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-api/internal/handler/api"
	"storefront-api/internal/handler/middleware"
	"storefront-api/internal/infra/edgecache"
	"storefront-api/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	catalogHandler *api.CatalogHandler,
	cartHandler *api.CartHandler,
	authMiddleware *middleware.AuthMiddleware,
	edgeStore edgecache.Store,
	logger *slog.Logger,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cfg, catalogHandler, cartHandler, authMiddleware, edgeStore, logger)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cfg config.Config,
	catalogHandler *api.CatalogHandler,
	cartHandler *api.CartHandler,
	authMiddleware *middleware.AuthMiddleware,
	edgeStore edgecache.Store,
	logger *slog.Logger,
) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	listCache := middleware.EdgeCache(edgeStore, cfg.Cache.ListTTL, logger)
	metaCache := middleware.EdgeCache(edgeStore, cfg.Cache.MetaTTL, logger)

	apiGroup := engine.Group("/api")
	{
		products := apiGroup.Group("/product")
		{
			addRoutes(products, []route{
				{Method: http.MethodGet, Path: "/list", Handler: catalogHandler.ListProducts, Mw: []gin.HandlerFunc{listCache}},
				{Method: http.MethodPost, Path: "/single", Handler: catalogHandler.GetSingleProduct},
				{Method: http.MethodGet, Path: "/meta", Handler: catalogHandler.ProductMeta, Mw: []gin.HandlerFunc{metaCache}},
			})
		}

		categories := apiGroup.Group("/categories")
		{
			addRoutes(categories, []route{
				{Method: http.MethodGet, Path: "", Handler: catalogHandler.ListCategories, Mw: []gin.HandlerFunc{listCache}},
				{Method: http.MethodGet, Path: "/meta", Handler: catalogHandler.CategoryMeta, Mw: []gin.HandlerFunc{metaCache}},
			})
		}

		carts := apiGroup.Group("/cart")
		carts.Use(authMiddleware.RequireAuth())
		{
			addRoutes(carts, []route{
				{Method: http.MethodGet, Path: "/get", Handler: cartHandler.GetCart},
				{Method: http.MethodPost, Path: "/add", Handler: cartHandler.AddItem},
				{Method: http.MethodPost, Path: "/update", Handler: cartHandler.UpdateItem},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		// Per-route middleware must go through gin's own chain: middleware
		// like the edge cache relies on c.Next() running the route handler
		// before control returns.
		hs := append(append([]gin.HandlerFunc{}, r.Mw...), r.Handler)
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, hs...)
		case http.MethodPost:
			g.POST(r.Path, hs...)
		case http.MethodPut:
			g.PUT(r.Path, hs...)
		case http.MethodDelete:
			g.DELETE(r.Path, hs...)
		default:
			g.Any(r.Path, hs...)
		}
	}
}
