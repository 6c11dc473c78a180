package api

import (
	"bizbooks/docs"
	"bizbooks/internal/api/handlers"
	"bizbooks/pkg/auth"
	"bizbooks/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	statementHandler *handlers.StatementHandler,
	billHandler *handlers.BillHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo // importing docs registers the documentation via init()
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	protected.Get("/profile", authHandler.Profile)

	// Statement pipeline
	statements := protected.Group("/statements")
	statements.Post("/extract", statementHandler.Extract)
	statements.Get("", statementHandler.List)

	drafts := statements.Group("/drafts")
	drafts.Get("/:id", statementHandler.GetDraft)
	drafts.Patch("/:id", statementHandler.UpdateDraft)
	drafts.Delete("/:id", statementHandler.DiscardDraft)
	drafts.Post("/:id/commit", statementHandler.Commit)
	drafts.Post("/:id/transactions", statementHandler.AddTransaction)
	drafts.Patch("/:id/transactions/:index", statementHandler.UpdateTransaction)
	drafts.Delete("/:id/transactions/:index", statementHandler.RemoveTransaction)

	statements.Get("/:id", statementHandler.Get)

	protected.Get("/ledger", statementHandler.Ledger)

	// Bills
	bills := protected.Group("/bills")
	bills.Post("", billHandler.Create)
	bills.Get("", billHandler.List)
	bills.Patch("/:id/status", billHandler.UpdateStatus)

	return app
}
