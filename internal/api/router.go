package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/identikit/user-service/internal/api/handler"
	"github.com/identikit/user-service/internal/api/middleware"
	"github.com/identikit/user-service/internal/core/service"
	"github.com/identikit/user-service/internal/infrastructure/config"
	"github.com/identikit/user-service/internal/infrastructure/crypto"
	mongostore "github.com/identikit/user-service/internal/infrastructure/db/mongo"
	redisstore "github.com/identikit/user-service/internal/infrastructure/db/redis"
	"github.com/identikit/user-service/internal/infrastructure/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("users"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	hasher := crypto.NewBcryptHasher(cfg.BcryptCost)
	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	revoker := redisstore.NewRevocationList(rdb)
	userService := service.NewUserService(userRepo, hasher, issuer, revoker)
	userHandler := handler.NewUserHandler(userService)
	bearer := middleware.Bearer(issuer, revoker)

	// --- User routes ---
	e.POST("/users/login", userHandler.Login)
	e.POST("/users", userHandler.Create)
	e.POST("/users/logout", userHandler.Logout, bearer)
	e.GET("/users/count", userHandler.Count, bearer)
	e.GET("/users", userHandler.List, bearer)
	e.PATCH("/users", userHandler.UpdateAll, bearer)
	e.GET("/users/:id", userHandler.Get, bearer)
	e.PATCH("/users/:id", userHandler.Update, bearer)
	e.PUT("/users/:id", userHandler.Replace, bearer)
	e.DELETE("/users/:id", userHandler.Delete, bearer)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
