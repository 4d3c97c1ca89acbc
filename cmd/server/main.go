package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/openpace/activity-backend-go/internal/api"
	"github.com/openpace/activity-backend-go/internal/config"
	"github.com/openpace/activity-backend-go/internal/database"
	"github.com/openpace/activity-backend-go/internal/decode"
	"github.com/openpace/activity-backend-go/internal/geocode"
	"github.com/openpace/activity-backend-go/internal/handler"
	"github.com/openpace/activity-backend-go/internal/matcher"
	"github.com/openpace/activity-backend-go/internal/repository"
	"github.com/openpace/activity-backend-go/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	if err := database.NewMigrationManager(db).RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Offline timezone lookup; loading the embedded polygon data takes a
	// moment, so do it once at startup.
	tz, err := geocode.NewTimezoneFinder()
	if err != nil {
		log.Fatal("Failed to initialize timezone finder:", err)
	}

	resolver := geocode.NewResolver(nil, nil, tz, cfg.DefaultTimezone)
	if cfg.GeocodeEnabled {
		client := geocode.NewClient(cfg.GeocodeURL, cfg.GeocodeUserAgent,
			time.Duration(cfg.GeocodeTimeoutS)*time.Second)
		resolver = geocode.NewResolver(client,
			geocode.NewRateLimiter(cfg.GeocodeRPS), tz, cfg.DefaultTimezone)
	}

	activities := repository.NewActivityRepository(db)
	segments := repository.NewSegmentRepository(db)
	gear := repository.NewGearRepository(db)

	matcherCfg := matcher.Config{
		ToleranceM:  cfg.MatchToleranceM,
		MinCoverage: cfg.MatchMinCoverage,
	}
	decoders := decode.NewRegistry(decode.Config{MaxDroppedFraction: cfg.MaxDroppedFraction})

	ingestSvc := service.NewIngestService(decoders, activities, segments, gear, resolver, matcherCfg)
	segmentSvc := service.NewSegmentService(activities, segments, matcherCfg)
	defer ingestSvc.Wait()
	defer segmentSvc.Wait()

	router := api.SetupRouter(cfg,
		handler.NewActivityHandler(ingestSvc, activities, cfg.MaxUploadBytes, cfg.MaxBatchFiles),
		handler.NewSegmentHandler(segmentSvc),
	)

	log.Printf("Server starting on %s", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
