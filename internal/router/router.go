package router

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"venue_ops_backend/internal/handlers"
	"venue_ops_backend/internal/middleware"
	"venue_ops_backend/internal/repositories"
	"venue_ops_backend/internal/services"
)

// Config carries the runtime knobs the services need.
type Config struct {
	TipRateLimit services.TipRateLimitConfig
	GuestPage    services.GuestPageConfig
	Availability services.AvailabilityConfig
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, rdb *redis.Client, cfg Config) {
	// Repositories
	authRepo := repositories.NewAuthRepository(db)
	guestPageRepo := repositories.NewGuestPageRepository(db)
	tipRepo := repositories.NewTipRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	checklistRepo := repositories.NewChecklistRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	announcementRepo := repositories.NewAnnouncementRepository(db)

	// Services
	authService := services.NewAuthService(authRepo, db)
	guestPageService := services.NewGuestPageService(guestPageRepo, authRepo, db, cfg.GuestPage)
	tipService := services.NewTipService(tipRepo, guestPageRepo, db, cfg.TipRateLimit, cfg.GuestPage)
	checklistService := services.NewChecklistService(checklistRepo, reservationRepo, db)
	reservationService := services.NewReservationService(reservationRepo, authRepo, checklistService, db)
	attendanceService := services.NewAttendanceService(attendanceRepo, authRepo, db)
	inventoryService := services.NewInventoryService(inventoryRepo, db)
	announcementService := services.NewAnnouncementService(announcementRepo, db)
	availabilityService := services.NewAvailabilityService(rdb, cfg.Availability)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	guestPageHandler := handlers.NewGuestPageHandler(guestPageService)
	tipHandler := handlers.NewTipHandler(tipService)
	reservationHandler := handlers.NewReservationHandler(reservationService)
	checklistHandler := handlers.NewChecklistHandler(checklistService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)

	apiV1 := engine.Group("/api/v1")

	// Guest-facing routes: no authentication, addressed by page token.
	SetupPublicGuestRoutes(apiV1, guestPageHandler, tipHandler)
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupUserRoutes(authenticated, authHandler)
		SetupGuestPageRoutes(authenticated, guestPageHandler)
		SetupWalletRoutes(authenticated, guestPageHandler)
		SetupTipRoutes(authenticated, tipHandler)
		SetupStayRoutes(authenticated, reservationHandler)
		SetupMealRoutes(authenticated, reservationHandler)
		SetupChecklistRoutes(authenticated, checklistHandler)
		SetupAttendanceRoutes(authenticated, attendanceHandler)
		SetupInventoryRoutes(authenticated, inventoryHandler)
		SetupAnnouncementRoutes(authenticated, announcementHandler)
		SetupAvailabilityRoutes(authenticated, availabilityHandler)
	}
}

// SetupPublicAuthRoutes registers the unauthenticated auth endpoints.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.Login)
	group.POST("/refresh-token", authHandler.Refresh)
}

// SetupAuthenticatedAuthRoutes registers the token-guarded auth endpoints.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.Me)
}
