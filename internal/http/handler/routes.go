package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/http/middleware"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/service"
)

// Services bundles what the routes dispatch to.
type Services struct {
	Auth      service.AuthService
	Franchise service.FranchiseService
	Order     service.OrderService
}

// RegisterRoutes attaches the health probes and the /api routes.
func RegisterRoutes(app *fiber.App, db *sql.DB, ready ReadinessChecker, svc Services, version string) {
	app.Get("/", Welcome(version))
	app.Get("/health", HealthCheck(db, ready))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api", middleware.Principal(svc.Auth))
	authed := middleware.RequireAuth()

	auth := api.Group("/auth")
	auth.Post("/", Register(svc.Auth))
	auth.Put("/", Login(svc.Auth))
	auth.Delete("/", authed, Logout(svc.Auth))
	auth.Put("/:userId", authed, UpdateUser(svc.Auth))

	franchise := api.Group("/franchise")
	franchise.Get("/", ListFranchises(svc.Franchise))
	franchise.Get("/:userId", authed, ListUserFranchises(svc.Franchise))
	franchise.Post("/", authed, CreateFranchise(svc.Franchise))
	franchise.Delete("/:franchiseId", authed, DeleteFranchise(svc.Franchise))
	franchise.Post("/:franchiseId/store", authed, CreateStore(svc.Franchise))
	franchise.Delete("/:franchiseId/store/:storeId", authed, DeleteStore(svc.Franchise))

	order := api.Group("/order")
	order.Get("/menu", GetMenu(svc.Order))
	order.Put("/menu", authed, AddMenuItem(svc.Order))
	order.Put("/menu/image", authed, AddMenuItemWithImage(svc.Order))
	order.Get("/", authed, GetOrders(svc.Order))
	order.Post("/", authed, CreateOrder(svc.Order))
}
