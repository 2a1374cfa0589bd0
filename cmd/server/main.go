package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
	"github.com/smarttoll/backend/docs"
	"github.com/smarttoll/backend/internal/audit"
	"github.com/smarttoll/backend/internal/config"
	"github.com/smarttoll/backend/internal/database"
	"github.com/smarttoll/backend/internal/handlers"
	mW "github.com/smarttoll/backend/internal/middleware"
	"github.com/smarttoll/backend/internal/models"
	"github.com/smarttoll/backend/internal/services"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Smart Toll Backend API
// @version 1.0
// @description Toll processing, wallet settlement and plaza traffic API
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	config.Load(".env")
	config.ConfigureLogging()

	port := viper.GetString("server.port")
	docs.SwaggerInfo.Host = "localhost:" + port

	db := database.InitDatabase()
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancelMigrate()
		log.Fatalf("Failed to migrate database: %v", err)
	}
	cancelMigrate()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	tollCfg := config.LoadTollConfig()
	loc := tollCfg.Location()
	auditLogger := audit.NewLogger(nil)

	rates := services.NewCachedRateTable(services.NewSQLRateTable(db), redisClient, tollCfg.RateCacheTTL)
	pricing := services.NewPricingEngine(rates, loc)
	ledger := services.NewWalletLedger(db, services.LedgerOptions{Audit: auditLogger})
	tollService := services.NewTollService(db, services.NewSQLVehicleDirectory(db), pricing, ledger,
		services.TollServiceOptions{Audit: auditLogger})
	aggregator := services.NewTrafficAggregator(db, services.NewSQLTrafficSink(db), services.AggregatorOptions{
		Policy: services.TrafficPolicy{
			High:   tollCfg.TrafficHighThreshold,
			Normal: tollCfg.TrafficNormalThreshold,
		},
		Location:    loc,
		Concurrency: tollCfg.AggregationConcurrency,
	})
	qrService := services.NewQRService(tollService)

	tollHandler := handlers.NewTollHandler(tollService)
	walletHandler := handlers.NewWalletHandler(tollService)
	trafficHandler := handlers.NewTrafficHandler(aggregator)
	qrHandler := handlers.NewQRHandler(qrService)
	plazaHandler := handlers.NewPlazaHandler(rates)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		if err := db.PingContext(r.Context()); err != nil {
			status, code = "database unavailable", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:"+port+"/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mW.AuthMiddleware)

		// Lane operations
		r.Group(func(r chi.Router) {
			r.Use(mW.RequireRole(models.RoleOperator))

			r.Post("/tolls", tollHandler.ProcessToll)
			r.Get("/tolls/{txnId}", tollHandler.GetReceipt)
			r.Get("/tolls/{txnId}/qr", qrHandler.ReceiptQR)
			r.Get("/vehicles/lookup", tollHandler.LookupVehicle)
			r.Get("/vehicles/{vehicleId}/history", tollHandler.VehicleHistory)
		})

		// Back office
		r.Group(func(r chi.Router) {
			r.Use(mW.RequireRole(models.RoleAdmin))

			r.Post("/tolls/{txnId}/refund", tollHandler.RefundToll)
			r.Post("/plazas/{plazaId}/traffic/aggregate", trafficHandler.Aggregate)
			r.Post("/plazas/{plazaId}/rates/invalidate", plazaHandler.InvalidateRates)
		})

		// Wallet holders
		r.Group(func(r chi.Router) {
			r.Use(mW.RequireRole(models.RoleUser, models.RoleOperator))

			r.Get("/wallets/{accountId}", walletHandler.GetWallet)
			r.Post("/wallets/{accountId}/recharge", walletHandler.Recharge)
			r.Get("/accounts/{accountId}/summary", walletHandler.AccountSummary)
		})
	})

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Infof("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Info("Server stopped")
}
