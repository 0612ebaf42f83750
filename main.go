package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/utils"
	"go.uber.org/zap"

	"collegefee_backend/internals/bootstrap"
	"collegefee_backend/internals/configs"
	database "collegefee_backend/internals/databases"
	helper "collegefee_backend/internals/helpers"
	middlewares "collegefee_backend/internals/middlewares"
	reqLogger "collegefee_backend/internals/middlewares/logger"
	routes "collegefee_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	cfg := configs.Load()
	logger := configs.NewLogger(cfg.LogLevel, cfg.Env)
	defer func() { _ = logger.Sync() }()

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ErrorHandler:            errorHandler(logger),
	})

	app.Use(middlewares.RecoveryMiddleware(logger))
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: utils.UUID,
	}))
	app.Use(reqLogger.LoggerMiddleware(logger))
	app.Use(middlewares.CorsMiddleware(cfg.FrontendURL))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(middlewares.GlobalRateLimiter())

	db, err := database.ConnectDB(cfg.DB, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	database.TunePool(db)
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	svc, err := bootstrap.Build(cfg, db, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}

	routes.SetupRoutes(app, routes.Deps{
		DB:         db,
		Log:        logger,
		JWTSecret:  cfg.JWTSecret,
		Env:        cfg.Env,
		Reconciler: svc.Reconciler,
		Receipts:   svc.Receipts,
		Notifier:   svc.Notifier,
	})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// errorHandler renders errors that escape handlers (auth failures, 404s,
// panics) in the same envelope as the helpers.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) && helper.KindOf(err) == helper.KindInternal {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		return helper.JsonFromError(c, err)
	}
}
