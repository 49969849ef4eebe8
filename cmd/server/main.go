package main

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"venue_ops_backend/internal/database"
	"venue_ops_backend/internal/router"
	"venue_ops_backend/internal/services"
	"venue_ops_backend/pkg/utils"
)

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(utils.Getenv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(utils.Getenv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func main() {
	if err := godotenv.Load(); err != nil {
		// No .env in production deployments; environment variables rule.
		utils.LogWarn(nil, "No .env file loaded")
	}
	utils.InitLogger()

	err := database.InitDB(
		utils.Getenv("DB_HOST", "localhost"),
		utils.Getenv("DB_PORT", "5432"),
		utils.Getenv("DB_USER", "postgres"),
		utils.Getenv("DB_PASSWORD", "postgres"),
		utils.Getenv("DB_NAME", "venue_ops"),
		utils.Getenv("DB_SSLMODE", "disable"),
		utils.Getenv("DB_SCHEMA_PATH", ""),
	)
	if err != nil {
		utils.LogError(err, "Failed to initialize database")
		return
	}
	db := database.GetDB()
	defer db.Close()

	var rdb *redis.Client
	if addr := utils.Getenv("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: utils.Getenv("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		})
	}

	cfg := router.Config{
		TipRateLimit: services.TipRateLimitConfig{
			Limit:  envInt("TIP_RATE_LIMIT", 3),
			Window: envDuration("TIP_RATE_WINDOW", time.Hour),
		},
		GuestPage: services.GuestPageConfig{
			ExpiryGrace: envDuration("GUEST_PAGE_EXPIRY_GRACE", 12*time.Hour),
		},
		Availability: services.AvailabilityConfig{
			FeedURL:  utils.Getenv("AVAILABILITY_FEED_URL", ""),
			CacheTTL: envDuration("AVAILABILITY_CACHE_TTL", 10*time.Minute),
			Timeout:  envDuration("AVAILABILITY_TIMEOUT", 5*time.Second),
		},
	}

	gin.SetMode(utils.Getenv("GIN_MODE", gin.ReleaseMode))
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{utils.Getenv("CORS_ALLOW_ORIGIN", "http://localhost:3000")}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, db, rdb, cfg)

	addr := ":" + utils.Getenv("PORT", "8080")
	utils.LogInfo("Starting server", map[string]interface{}{"addr": addr})
	if err := engine.Run(addr); err != nil {
		utils.LogError(err, "Server exited")
	}
}
