// server/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"facility-ops-api-server/config"
	"facility-ops-api-server/internal/api/routes"
	"facility-ops-api-server/internal/auth"
	"facility-ops-api-server/internal/cache"
	"facility-ops-api-server/internal/database"
	"facility-ops-api-server/internal/logger"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/s3"
	"facility-ops-api-server/internal/services"
	"facility-ops-api-server/internal/socket"
	"facility-ops-api-server/internal/webhook"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "facility-ops-api")
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. MongoDB
	client, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	if err := database.EnsureIndexes(ctx, db); err != nil {
		zlog.Fatal("index creation failed", zap.Error(err))
	}
	users := database.NewUserRepository(db)
	if err := database.SeedSuperAdmin(ctx, users, cfg.Seed, zlog); err != nil {
		zlog.Fatal("super admin seed failed", zap.Error(err))
	}

	// 3. Optional side channels
	deps := services.Deps{
		Tokens:           auth.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration()),
		CredentialWindow: cfg.Onboarding.CredentialWindow,
	}

	if cfg.Redis.Addr != "" {
		rdb := cache.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		if err := cache.Ping(ctx, rdb); err != nil {
			zlog.Warn("redis unreachable, QR lookups will hit MongoDB only", zap.Error(err))
		}
		deps.Cache = cache.NewLocationCache(rdb, cfg.Redis.TTL)
	}

	if cfg.S3.Bucket != "" {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			zlog.Fatal("s3 client setup failed", zap.Error(err))
		}
		deps.Files = uploader
	} else if !cfg.IsProduction() {
		zlog.Warn("s3 bucket not configured, checklist templates are kept in memory")
		deps.Files = s3.NewMockStore()
	}

	if cfg.Webhook.ChecklistURL != "" {
		deps.Notifier = webhook.NewNotifier(cfg.Webhook.ChecklistURL, cfg.Webhook.Timeout, zlog)
	}

	hub := socket.NewHub(zlog)
	deps.Events = hub

	// 4. Repositories and services
	svc := services.New(services.Stores{
		Tx:                database.NewTransactor(client),
		Facilities:        database.NewFacilityRepository(db),
		Users:             users,
		Catalogs:          database.NewCatalogRepository(db, models.CatalogRegular),
		IoTCatalogs:       database.NewCatalogRepository(db, models.CatalogIoT),
		FloorLocations:    database.NewFloorLocationRepository(db),
		DailyChecklists:   database.NewDailyChecklistRepository(db),
		HygieneSections:   database.NewScopedRepository[models.HygieneSection](db, database.HygieneSectionsCollection),
		HygieneChecklists: database.NewScopedRepository[models.HygieneChecklist](db, database.HygieneChecklistsCollection),
		Rosters:           database.NewScopedRepository[models.Roster](db, database.RostersCollection),
		LeavePlanners:     database.NewScopedRepository[models.LeavePlanner](db, database.LeavePlannersCollection),
		ShiftSchedules:    database.NewScopedRepository[models.ShiftSchedule](db, database.ShiftSchedulesCollection),
		WeekoffPlanners:   database.NewScopedRepository[models.WeekoffPlanner](db, database.WeekoffPlannersCollection),
		ServiceProviders:  database.NewScopedRepository[models.ServiceProvider](db, database.ServiceProvidersCollection),
	}, deps, zlog)

	router := routes.SetupRouter(routes.Dependencies{
		Services:       svc,
		Hub:            hub,
		Ping:           func(ctx context.Context) error { return database.Ping(ctx, db) },
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         zlog,
	})

	// 5. Start server
	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: router}
	go func() {
		zlog.Info("starting API server", zap.String("port", cfg.Server.Port), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
