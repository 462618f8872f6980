package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/libraryhub/circulation/internal/api/handler"
	"github.com/libraryhub/circulation/internal/api/middleware"
	"github.com/libraryhub/circulation/internal/core/ports"
)

// Dependencies are the use cases and health checks the router exposes.
type Dependencies struct {
	Circulation ports.CirculationService
	Catalog     ports.CatalogService
	Dashboards  ports.DashboardService
	Returns     handler.ReturnQueue
	// Checks are pinged by the readiness check, keyed by dependency name.
	Checks map[string]handler.Pinger
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(middleware.Metrics())

	// --- Health, metrics and docs ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	books := handler.NewBookHandler(deps.Catalog)
	circulation := handler.NewCirculationHandler(deps.Circulation)
	returns := handler.NewReturnHandler(deps.Returns)
	dashboards := handler.NewDashboardHandler(deps.Dashboards)

	v1 := e.Group("/v1")

	v1.GET("/books", books.Search)
	v1.GET("/books/:id", books.Get)

	v1.POST("/checkouts", circulation.Checkout)
	v1.GET("/transactions", circulation.ListIssued)
	v1.POST("/transactions/:id/return", circulation.Return)
	v1.POST("/transactions/:id/fine/payment", circulation.PayFine)
	v1.POST("/returns/batch", returns.ReceiveBatch)

	v1.GET("/users/:id/borrowings", circulation.Borrowings)
	v1.GET("/users/:id/dashboard", dashboards.Student)
	v1.GET("/dashboard/librarian", dashboards.Librarian)

	return e
}
