package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulltechlicense/config"
	"fulltechlicense/database"
	_ "fulltechlicense/docs" // documentación Swagger
	"fulltechlicense/handlers"
	"fulltechlicense/logger"
	"fulltechlicense/middleware"
	"fulltechlicense/models"
	"fulltechlicense/scheduler"
	"fulltechlicense/services"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title FULLTECH License Server API
// @version 1.0
// @description Servidor de licencias: activación online, licencias offline firmadas y canje de vouchers
// @termsOfService http://swagger.io/terms/

// @contact.name Soporte FULLTECH
// @contact.email soporte@fulltech.local

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Token JWT. Formato: Bearer {token}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logConfig := logger.Config{
		Level:    logger.ParseLevel(cfg.LogLevel),
		LogDir:   cfg.LogDir,
		MaxAge:   7,
		UseColor: true,
	}
	if err := logger.Initialize(logConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Info("FULLTECH License Server starting")

	if err := database.Initialize(cfg.DBType, cfg.DBDSN, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer database.Close()

	middleware.SetAccessTokenSecret(cfg.AuthJWTSecret)

	// capa de servicios
	sqlExecutor := services.NewSQLExecutor(database.DB)
	licenseService := services.NewLicenseService(sqlExecutor)
	deviceService := services.NewDeviceService(sqlExecutor)
	settingsService := services.NewSettingsService(sqlExecutor)
	attemptService := services.NewAttemptService(sqlExecutor)
	productService := services.NewProductService(sqlExecutor)
	authService := services.NewAuthService(sqlExecutor, services.AuthConfig{
		JWTSecret:      cfg.AuthJWTSecret,
		AccessTokenTTL: time.Duration(cfg.AccessTokenTTLMin) * time.Minute,
	})
	activationService := services.NewActivationService(licenseService, deviceService, settingsService, attemptService,
		services.ActivationConfig{
			TokenSecret:        cfg.ActivationJWTSecret,
			DefaultOfflineDays: cfg.OfflineDays,
		})
	offlineService := services.NewOfflineService(sqlExecutor, licenseService, productService,
		services.OfflineConfig{Ed25519PrivateKeyB64: cfg.OfflineEd25519PrivateKeyB64})
	voucherService := services.NewVoucherService(sqlExecutor, productService)
	dashboardService := services.NewDashboardService(sqlExecutor)

	// handlers
	authHandler := handlers.NewAuthHandler(authService)
	activationHandler := handlers.NewActivationHandler(activationService)
	offlineHandler := handlers.NewOfflineHandler(offlineService)
	voucherHandler := handlers.NewVoucherHandler(voucherService)
	licenseHandler := handlers.NewLicenseAdminHandler(licenseService, deviceService, productService)
	productHandler := handlers.NewProductHandler(productService)
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	scheduler.StartScheduler()

	mux := http.NewServeMux()

	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	mux.HandleFunc("/", homeHandler)
	mux.HandleFunc("/health", healthHandler)

	// middlewares comunes
	public := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.ChainMiddleware(h,
			middleware.LoggingMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		)
	}
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.ChainMiddleware(h,
			middleware.LoggingMiddleware,
			middleware.AuthMiddleware,
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		)
	}
	superOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.ChainMiddleware(h,
			middleware.LoggingMiddleware,
			middleware.AuthMiddleware,
			middleware.RequireRoles(models.RoleSuperAdmin),
			middleware.CORSMiddleware,
			middleware.SetJSONHeader,
		)
	}

	// protocolo de clientes
	mux.HandleFunc("/api/activation/online", public(activationHandler.ActivateOnline))
	mux.HandleFunc("/api/activation/revalidate", public(activationHandler.Revalidate))
	mux.HandleFunc("/api/activation/offline/request/validate", public(offlineHandler.ValidateRequest))
	mux.HandleFunc("/api/public/redeem", public(voucherHandler.Redeem))

	// backoffice
	mux.HandleFunc("/api/admin/login", public(authHandler.Login))
	mux.HandleFunc("/api/admin/me", authed(authHandler.Me))

	mux.HandleFunc("/api/admin/licenses", authed(licenseHandler.Collection))
	mux.HandleFunc("/api/admin/licenses/", authed(licenseHandler.Detail))
	mux.HandleFunc("/api/admin/devices/revoke", authed(licenseHandler.RevokeDevice))
	mux.HandleFunc("/api/admin/devices/reactivate", authed(licenseHandler.ReactivateDevice))

	mux.HandleFunc("/api/admin/products", authed(productHandler.Collection))
	mux.HandleFunc("/api/admin/products/", authed(productHandler.Detail))

	mux.HandleFunc("/api/admin/vouchers", superOnly(voucherHandler.Batch))
	mux.HandleFunc("/api/admin/vouchers/", superOnly(voucherHandler.Cancel))

	mux.HandleFunc("/api/admin/offline/license/generate", superOnly(offlineHandler.GenerateLicenseFile))
	mux.HandleFunc("/api/admin/offline/requests", authed(offlineHandler.ListRequests))
	mux.HandleFunc("/api/admin/offline/files", authed(offlineHandler.ListFiles))
	mux.HandleFunc("/api/admin/offline/files/", authed(offlineHandler.Download))
	mux.HandleFunc("/api/admin/offline/public-key", public(offlineHandler.PublicKey))

	mux.HandleFunc("/api/admin/attempts", authed(attemptHandler.List))
	mux.HandleFunc("/api/admin/dashboard", authed(dashboardHandler.Summary))
	mux.HandleFunc("/api/admin/settings", authed(settingsHandler.List))
	mux.HandleFunc("/api/admin/settings/", authed(settingsHandler.Detail))

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Warn("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error: %v", err)
		}
		database.Close()
	}()

	logger.Info("Server listening on http://localhost%s", addr)
	logger.Info("Swagger UI: http://localhost%s/swagger/index.html", addr)
	logger.Info("Database: %s (%s)", cfg.DBType, cfg.DBDSN)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server failed to start: %v", err)
	}
}

// homeHandler raíz informativa
func homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"success","message":"FULLTECH License Server","version":"1.0.0"}`))
}

// healthHandler healthcheck
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"success","message":"Server is healthy"}`))
}
