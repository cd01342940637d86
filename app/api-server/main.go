package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jobmatcher/backend/config"
	"github.com/jobmatcher/backend/internal/api/handlers"
	"github.com/jobmatcher/backend/internal/api/routes"
	"github.com/jobmatcher/backend/internal/cache"
	"github.com/jobmatcher/backend/internal/logger"
	"github.com/jobmatcher/backend/internal/providers/ai"
	pgrepo "github.com/jobmatcher/backend/internal/repositories/postgres"
	"github.com/jobmatcher/backend/internal/services"
	"github.com/jobmatcher/backend/internal/storage"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := config.InitPostgres(cfg.PostgresURI)
	if err != nil {
		log.WithError(err).Fatal("postgres connection failed")
	}

	var feedCache cache.Cache
	if cfg.RedisAddr != "" {
		rdb, err := config.InitRedis(cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Fatal("redis connection failed")
		}
		feedCache = cache.NewRedisCache(rdb)
	}

	store, err := buildStorage(cfg)
	if err != nil {
		log.WithError(err).Fatal("storage init failed")
	}

	aiClient := ai.NewHTTPClient(cfg.AIBaseURL, cfg.AITimeout)

	users := pgrepo.NewUserRepo(db)
	cvs := pgrepo.NewCvFileRepo(db)
	jobs := pgrepo.NewJobRepo(db)
	swipes := pgrepo.NewSwipeRepo(db)
	candidates := pgrepo.NewCandidateProfileRepo(db)
	companies := pgrepo.NewCompanyProfileRepo(db)

	candidateProfiles := services.NewCandidateProfileService(candidates)
	companyProfiles := services.NewCompanyProfileService(companies)
	authSvc := services.NewAuthService(users, cfg.JWTSecret, cfg.JWTTTL, cfg.DevUsername, cfg.DevPassword)
	cvSvc := services.NewCvService(cvs, candidateProfiles, store, aiClient, cfg.CvMaxSizeBytes, cfg.CvAllowedContentTypes, log)
	jobSvc := services.NewJobService(jobs, aiClient, feedCache, log)
	swipeSvc := services.NewSwipeService(jobs, swipes, feedCache, cfg.FeedCacheTTL, log)
	candidateMatches := services.NewCandidateMatchService(cvs, candidates, jobs, swipes, log)
	companyMatches := services.NewCompanyMatchService(cvs, jobs, swipes, log)

	r := gin.New()
	routes.Register(r, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authSvc, log),
		Cv:      handlers.NewCvHandler(cvSvc, log),
		Job:     handlers.NewJobHandler(jobSvc, log),
		Match:   handlers.NewMatchHandler(candidateMatches, companyMatches, log),
		Swipe:   handlers.NewSwipeHandler(swipeSvc, log),
		Profile: handlers.NewProfileHandler(candidateProfiles, companyProfiles, log),
	}, cfg.JWTSecret, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("api server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("api server stopped")
}

func buildStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "local", "":
		return storage.NewLocal(cfg.StorageRootDir)
	case "gcs":
		return storage.NewGCS(context.Background(), cfg.GCSBucket, cfg.GCSPrefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
