package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"irigasi/internal/authz"
	"irigasi/internal/database"
	"irigasi/internal/router"
	"irigasi/internal/services"
	"irigasi/pkg/config"
	"irigasi/pkg/jwt"
	"irigasi/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger := logger.GetLogger()
	appLogger.Info("Starting irrigation content backend...")

	if err := database.Initialize(cfg); err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			appLogger.Error("Failed to close database:", err)
		}
		if err := database.CloseSessionRegistry(); err != nil {
			appLogger.Error("Failed to close Redis:", err)
		}
	}()

	if err := database.Migrate(); err != nil {
		appLogger.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	db := database.GetDB()
	store := services.NewGormIdentityStore(db)

	if err := seedData(ctx, db, store, cfg); err != nil {
		appLogger.Fatalf("Failed to initialize seed data: %v", err)
	}

	// the route guard fails closed without the registry, so refuse to start
	sessions := database.GetSessionRegistry()
	if err := sessions.Ping(ctx); err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)

	audit := services.NewAuditService(db)
	auditScheduler := services.NewAuditCleanupScheduler(audit, cfg.Audit.CleanupCron, cfg.Audit.RetentionDays)
	if err := auditScheduler.Start(); err != nil {
		appLogger.Errorf("Failed to start audit cleanup scheduler: %v", err)
	}
	defer auditScheduler.Stop()

	r := router.SetupRouter(router.Deps{
		Config:   cfg,
		DB:       db,
		Sessions: sessions,
		Tokens:   jwt.NewJWTManager(cfg.JWT.SecretKey, cfg.TokenDuration(), cfg.JWT.Issuer),
		Engine:   authz.NewDefaultEngine(),
		Store:    store,
		Issuer:   services.NewClaimsIssuer(store, cfg.Auth.RefreshTimeout),
		Audit:    audit,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	appLogger.Infof("Server started on port %s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown:", err)
	}
	appLogger.Info("Server exited")
}
