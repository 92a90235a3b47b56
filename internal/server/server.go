package server

import (
	"net/http"
	"net/url"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shinyyama/pharmacy-admin-backend/internal/config"
	"github.com/shinyyama/pharmacy-admin-backend/internal/files"
	"github.com/shinyyama/pharmacy-admin-backend/internal/handler"
	"github.com/shinyyama/pharmacy-admin-backend/internal/identity"
	appmw "github.com/shinyyama/pharmacy-admin-backend/internal/middleware"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
	"github.com/shinyyama/pharmacy-admin-backend/internal/session"
	"gorm.io/gorm"
)

// Deps are the external clients the server is built on.
type Deps struct {
	Firestore *firestore.Client
	Identity  identity.Provider
	Sessions  session.Store
	Files     files.Resolver
}

type Server struct {
	e            *echo.Echo
	activityRepo repository.ActivityRepository
}

func New(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
		RequestIDHandler: func(c echo.Context, rid string) {
			c.SetRequest(c.Request().WithContext(reqctx.WithRID(c.Request().Context(), rid)))
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			return originAllowed(origin, cfg.AllowedOriginSuffix), nil
		},
	}))

	activityRepo := repository.NewActivityRepository(nil)
	activitySvc := service.NewActivityService(activityRepo)

	sellerRepo := repository.NewSellerRepository(deps.Firestore)
	orderSvc := service.NewOrderService(repository.NewOrderRepository(deps.Firestore), activitySvc)
	prescriptionSvc := service.NewPrescriptionService(repository.NewPrescriptionRepository(deps.Firestore), sellerRepo, deps.Files, activitySvc)
	sellerSvc := service.NewSellerService(sellerRepo, activitySvc)
	productSvc := service.NewProductService(repository.NewProductRepository(deps.Firestore), sellerRepo, activitySvc)
	adminSvc := service.NewAdminService(repository.NewAdminRepository(deps.Firestore), deps.Identity, deps.Sessions, cfg.SessionTTL, activitySvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    cfg.GitSHA,
			"build_time": cfg.BuildTime,
		})
	})

	api := e.Group("/api")
	register(api, appmw.NewAuthMiddleware(adminSvc).RequireAuth, handlers{
		auth:          handler.NewAuthHandler(adminSvc),
		orders:        handler.NewOrderHandler(orderSvc),
		prescriptions: handler.NewPrescriptionHandler(prescriptionSvc),
		sellers:       handler.NewSellerHandler(sellerSvc),
		products:      handler.NewProductHandler(productSvc),
		activities:    handler.NewActivityHandler(activitySvc),
		feeds: handler.NewFeedHandler(orderSvc, prescriptionSvc, sellerSvc, func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(origin, cfg.AllowedOriginSuffix)
		}),
	})

	return &Server{e: e, activityRepo: activityRepo}
}

type handlers struct {
	auth          *handler.AuthHandler
	orders        *handler.OrderHandler
	prescriptions *handler.PrescriptionHandler
	sellers       *handler.SellerHandler
	products      *handler.ProductHandler
	activities    *handler.ActivityHandler
	feeds         *handler.FeedHandler
}

func register(api *echo.Group, requireAuth echo.MiddlewareFunc, h handlers) {
	api.POST("/auth/register", h.auth.Register)
	api.POST("/auth/login", h.auth.Login)

	g := api.Group("", requireAuth)
	g.POST("/auth/logout", h.auth.Logout)
	g.GET("/me", h.auth.Me)
	g.PATCH("/me/location", h.auth.UpdateLocation)

	g.GET("/orders", h.orders.List)
	g.GET("/orders/labels", h.orders.Labels)
	g.GET("/orders/mine-location", h.orders.ListMineLocation)
	g.POST("/orders", h.orders.Create)
	g.GET("/orders/:id", h.orders.Get)
	g.DELETE("/orders/:id", h.orders.Delete)
	g.PUT("/orders/:id/status", h.orders.UpdateStatus)
	g.PUT("/orders/:id/tracking", h.orders.UpdateTracking)

	g.GET("/prescriptions", h.prescriptions.List)
	g.GET("/prescriptions/mine-location", h.prescriptions.ListMineLocation)
	g.POST("/prescriptions", h.prescriptions.Create)
	g.GET("/prescriptions/:id", h.prescriptions.Get)
	g.DELETE("/prescriptions/:id", h.prescriptions.Delete)
	g.GET("/prescriptions/:id/file", h.prescriptions.File)
	g.POST("/prescriptions/:id/verify", h.prescriptions.Verify)
	g.POST("/prescriptions/:id/reject", h.prescriptions.Reject)
	g.POST("/prescriptions/:id/assign", h.prescriptions.Assign)
	g.POST("/prescriptions/:id/auto-assign", h.prescriptions.AutoAssign)
	g.PUT("/prescriptions/:id/status", h.prescriptions.UpdateStatus)

	g.GET("/sellers", h.sellers.List)
	g.POST("/sellers", h.sellers.Create)
	g.GET("/sellers/:id", h.sellers.Get)
	g.PUT("/sellers/:id", h.sellers.Update)
	g.DELETE("/sellers/:id", h.sellers.Delete)
	g.PUT("/sellers/:id/active", h.sellers.SetActive)
	g.GET("/sellers/:id/prescriptions", h.prescriptions.ListBySeller)

	g.GET("/products", h.products.List)
	g.POST("/products", h.products.Create)
	g.GET("/products/export", h.products.Export)
	g.GET("/products/:id", h.products.Get)
	g.PUT("/products/:id", h.products.Update)
	g.DELETE("/products/:id", h.products.Delete)
	g.PUT("/products/:id/stock", h.products.UpdateStock)

	g.GET("/activities", h.activities.List)

	g.GET("/feed/orders", h.feeds.Orders)
	g.GET("/feed/prescriptions", h.feeds.Prescriptions)
	g.GET("/feed/sellers", h.feeds.Sellers)
}

// originAllowed accepts localhost for development and any host under suffix.
func originAllowed(origin, suffix string) bool {
	low := strings.ToLower(origin)
	if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
		strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return suffix != "" && strings.HasSuffix(u.Hostname(), suffix)
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB attaches the activity log database once it is reachable.
func (s *Server) SetDB(db *gorm.DB) {
	s.activityRepo.SetDB(db)
}
