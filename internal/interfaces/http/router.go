package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       authService
	UserUC       userService
	IngredientUC ingredientService
	BlendUC      blendService
	CustomerUC   customerService
	QuoteUC      quoteService
	DashboardUC  dashboardService
	DB           pinger // nil = /health sin chequeo de base
	Metrics      fiber.Handler
	ServiceName  string
	JWTSecret    string
	Log          zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	health := NewHealthHandler(deps.ServiceName, deps.DB)
	app.Get("/health", health.Health)
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics)
	}

	api := app.Group("/api", ContextLogger(deps.Log))

	// Auth: login público; register libre solo para el primer admin
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", OptionalAuth(deps.JWTSecret), authHandler.Register)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(entity.RoleAdmin, entity.RoleSalesRep)
	admins := RequireRole(entity.RoleAdmin)

	ingredients := protected.Group("/ingredients")
	ingredientHandler := NewIngredientHandler(deps.IngredientUC)
	ingredients.Get("/", ingredientHandler.List)
	ingredients.Post("/", writers, ingredientHandler.Create)
	ingredients.Get("/:id", ingredientHandler.GetByID)
	ingredients.Put("/:id", writers, ingredientHandler.Update)
	ingredients.Delete("/:id", admins, ingredientHandler.Delete)
	ingredients.Put("/:id/price", admins, ingredientHandler.ChangePrice)
	ingredients.Get("/:id/price-history", ingredientHandler.PriceHistory)

	blends := protected.Group("/blends")
	blendHandler := NewBlendHandler(deps.BlendUC)
	blends.Post("/preview", blendHandler.Preview)
	blends.Get("/", blendHandler.List)
	blends.Post("/", writers, blendHandler.Create)
	blends.Get("/:id", blendHandler.GetByID)
	blends.Put("/:id", writers, blendHandler.Update)
	blends.Delete("/:id", writers, blendHandler.Delete)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Get("/", customerHandler.List)
	customers.Post("/", writers, customerHandler.Create)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Patch("/:id/active", admins, customerHandler.SetActive)

	quotes := protected.Group("/quotes")
	quoteHandler := NewQuoteHandler(deps.QuoteUC)
	quotes.Get("/", quoteHandler.List)
	quotes.Post("/", writers, quoteHandler.Create)
	quotes.Get("/:id", quoteHandler.GetByID)
	quotes.Put("/:id", writers, quoteHandler.Update)
	quotes.Post("/:id/send", writers, quoteHandler.Send)
	quotes.Post("/:id/accept", writers, quoteHandler.Accept)
	quotes.Post("/:id/reject", writers, quoteHandler.Reject)
	// el vencimiento lo hace el barrido del scheduler; la ruta queda como mantenimiento
	quotes.Post("/:id/expire", admins, quoteHandler.Expire)

	analytics := protected.Group("/analytics")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	analytics.Get("/dashboard", dashboardHandler.GetStats)
}
