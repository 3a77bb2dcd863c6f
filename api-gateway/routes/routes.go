package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/orderflow/api-gateway/config"
	"github.com/tair/orderflow/api-gateway/health"
	"github.com/tair/orderflow/api-gateway/middleware"
	"github.com/tair/orderflow/api-gateway/proxy"
)

// RouteDefinition defines a route mapping
type RouteDefinition struct {
	Prefix       string
	Upstream     string
	Description  string
	RequireAuth  bool
	RequireAdmin bool
}

// Routes holds all route definitions
var Routes = []RouteDefinition{
	{
		Prefix:      "/auth",
		Upstream:    "commerce",
		Description: "Authentication endpoints (login, register)",
	},
	{
		Prefix:      "/api/users",
		Upstream:    "commerce",
		Description: "User profile",
		RequireAuth: true,
	},
	{
		Prefix:      "/api/stock",
		Upstream:    "commerce",
		Description: "Stock ledger (mutations need admin, enforced by backend)",
		RequireAuth: true,
	},
	{
		Prefix:      "/api/orders",
		Upstream:    "commerce",
		Description: "Order placement, confirmation and history",
		RequireAuth: true,
	},
	{
		Prefix:       "/api/admin",
		Upstream:     "commerce",
		Description:  "Administrative order management",
		RequireAuth:  true,
		RequireAdmin: true,
	},
	{
		Prefix:      "/api/catalog",
		Upstream:    "catalog",
		Description: "Product catalog lookups",
	},
}

// SetupRoutes configures all routes in the gateway
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig) {
	forwarder := proxy.NewForwarder(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway quick health check (no downstream probes)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	// Liveness probe
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "alive",
		})
	})

	// Readiness probe (checks upstream backends)
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		status := healthChecker.CheckAll(ctx)

		statusCode := fiber.StatusOK
		if status.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(status)
	})

	// Routes overview
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "API Gateway",
			"routes":  Routes,
		})
	})

	for _, route := range Routes {
		registerRoute(app, route, forwarder)
	}
}

func registerRoute(app *fiber.App, route RouteDefinition, forwarder *proxy.Forwarder) {
	handler := func(c *fiber.Ctx) error {
		return forwarder.Forward(c, route.Upstream)
	}

	var middlewares []fiber.Handler
	if route.RequireAdmin {
		middlewares = append(middlewares, middleware.AuthMiddleware(), middleware.AdminMiddleware())
	} else if route.RequireAuth {
		middlewares = append(middlewares, middleware.AuthMiddleware())
	}

	group := app.Group(route.Prefix, middlewares...)
	group.All("/*", handler)

	if len(middlewares) > 0 {
		app.All(route.Prefix, append(middlewares, handler)...)
	} else {
		app.All(route.Prefix, handler)
	}
}
