package routes

import (
	"lendflow-api/internal/adapters/http/handlers"
	"lendflow-api/internal/adapters/http/middleware"
	"lendflow-api/internal/adapters/persistence/repositories"
	"lendflow-api/internal/config"
	"lendflow-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.CronService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	grantRepo := repositories.NewRoleGrantRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	loanTypeRepo := repositories.NewLoanTypeRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	methodRepo := repositories.NewPaymentMethodRepository(db)
	codeRepo := repositories.NewVerificationCodeRepository(db)

	// Initialize services
	notifyService := services.NewNotificationService(cfg.Notification.WebhookURL)
	verificationService := services.NewVerificationService(codeRepo, notifyService)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, verificationService, cfg)
	roleService := services.NewRoleService(grantRepo, userRepo)
	userService := services.NewUserService(userRepo, verificationService, roleService)
	loanService := services.NewLoanService(loanRepo, loanTypeRepo, notifyService)
	paymentService := services.NewPaymentService(paymentRepo, methodRepo, verificationService)
	dashboardService := services.NewDashboardService(loanRepo, paymentRepo, userRepo, grantRepo, verificationService)
	cronService := services.NewCronService(refreshTokenRepo, verificationService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, verificationService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	loanHandler := handlers.NewLoanHandler(loanService, roleService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, roleService)
	roleHandler := handlers.NewRoleHandler(roleService)
	adminHandler := handlers.NewAdminHandler(loanService, paymentService, dashboardService)
	superadminHandler := handlers.NewSuperadminHandler(roleService, dashboardService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, with stricter limits)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Loan type catalog (public, cacheable)
	apiV1.Get("/loan-types", middleware.CatalogCache(), loanHandler.ListLoanTypes)

	// Profile routes (authenticated)
	userRoutes := apiV1.Group("/users", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	userRoutes.Get("/me", userHandler.Me)
	userRoutes.Put("/me", userHandler.UpdateProfile)
	userRoutes.Put("/me/password", userHandler.ChangePassword)

	// Loan routes (authenticated)
	loanRoutes := apiV1.Group("/loans", middleware.AuthMiddleware(cfg))
	loanRoutes.Post("/", loanHandler.Submit)
	loanRoutes.Get("/", loanHandler.ListMine)
	loanRoutes.Get("/:id", loanHandler.Get)

	// Payment routes (authenticated)
	paymentRoutes := apiV1.Group("/payments", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	paymentRoutes.Post("/", paymentHandler.Submit)
	paymentRoutes.Get("/", paymentHandler.ListMine)
	paymentRoutes.Get("/:id", paymentHandler.Get)

	// Payment method routes (authenticated)
	methodRoutes := apiV1.Group("/payment-methods", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	methodRoutes.Post("/", paymentHandler.AddMethod)
	methodRoutes.Get("/", paymentHandler.ListMethods)
	methodRoutes.Put("/:id/default", paymentHandler.SetDefaultMethod)
	methodRoutes.Delete("/:id", paymentHandler.DeleteMethod)

	// Role routes (authenticated)
	roleRoutes := apiV1.Group("/roles", middleware.AuthMiddleware(cfg))
	roleRoutes.Get("/me", roleHandler.MyRole)
	roleRoutes.Post("/admin-request", roleHandler.RequestAdminAccess)
	roleRoutes.Get("/admin-request", roleHandler.MyGrantStatus)

	// Dashboard route (authenticated)
	apiV1.Get("/dashboard", middleware.AuthMiddleware(cfg), dashboardHandler.Me)

	// Admin routes (approved admin grant required, checked per request)
	adminRoutes := apiV1.Group("/admin",
		middleware.AuthMiddleware(cfg),
		middleware.RequireAdmin(roleService),
		middleware.NoCacheHeaders(),
	)
	adminRoutes.Get("/loans", adminHandler.ListLoans)
	adminRoutes.Put("/loans/:id/approve", adminHandler.ApproveLoan)
	adminRoutes.Put("/loans/:id/reject", adminHandler.RejectLoan)
	adminRoutes.Get("/payments", adminHandler.ListPayments)
	adminRoutes.Put("/payments/:id/complete", adminHandler.CompletePayment)
	adminRoutes.Put("/payments/:id/fail", adminHandler.FailPayment)
	adminRoutes.Get("/dashboard", adminHandler.Dashboard)

	// Superadmin routes (approved superadmin grant required)
	superadminRoutes := apiV1.Group("/superadmin",
		middleware.AuthMiddleware(cfg),
		middleware.RequireSuperadmin(roleService),
		middleware.NoCacheHeaders(),
	)
	superadminRoutes.Get("/grants", superadminHandler.ListGrants)
	superadminRoutes.Put("/grants/:id/approve", superadminHandler.ApproveGrant)
	superadminRoutes.Put("/grants/:id/reject", superadminHandler.RejectGrant)
	superadminRoutes.Get("/users", superadminHandler.ListUsers)
	superadminRoutes.Get("/dashboard", superadminHandler.Dashboard)

	return cronService
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (rate limited against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
	router.Post("/verify-email", middleware.AuthMiddleware(cfg), middleware.StrictRateLimiter(), handler.VerifyEmail)
	router.Post("/resend-code", middleware.AuthMiddleware(cfg), middleware.StrictRateLimiter(), handler.ResendCode)
}
