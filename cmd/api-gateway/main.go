package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gradetrack-api/api/swagger"
	"github.com/noah-isme/gradetrack-api/internal/handler"
	"github.com/noah-isme/gradetrack-api/internal/middleware"
	"github.com/noah-isme/gradetrack-api/internal/repository"
	"github.com/noah-isme/gradetrack-api/internal/routes"
	"github.com/noah-isme/gradetrack-api/internal/service"
	"github.com/noah-isme/gradetrack-api/pkg/cache"
	"github.com/noah-isme/gradetrack-api/pkg/config"
	"github.com/noah-isme/gradetrack-api/pkg/database"
	"github.com/noah-isme/gradetrack-api/pkg/jobs"
	"github.com/noah-isme/gradetrack-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gradetrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gradetrack-api/pkg/middleware/requestid"
	"github.com/noah-isme/gradetrack-api/pkg/storage"
)

// @title GradeTrack API
// @version 1.0.0
// @description Course grade tracking, what-if simulation and GPA service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.Name); err != nil {
			logr.Fatal("migrations failed", zap.Error(err))
		}
	}

	var redisClient redis.UniversalClient
	if client, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Warn("redis unavailable, grade cache disabled", zap.Error(err))
	} else {
		redisClient = client
		defer client.Close()
	}

	store, err := newStore(cfg.Transcripts)
	if err != nil {
		logr.Fatal("transcript storage unavailable", zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	pastGradeRepo := repository.NewPastGradeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gradetrack-api",
	})
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Grades.CacheTTL, logr, cfg.Grades.CacheEnabled && redisClient != nil)
	gradeSvc := service.NewGradeService(enrollmentRepo, courseRepo, gradeRepo, cacheSvc, metrics, cfg.Grades.CacheTTL, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, gradeSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, gradeRepo, gradeSvc, validate, logr)
	pastGradeSvc := service.NewPastGradeService(pastGradeRepo, enrollmentRepo, validate, logr)
	signer := storage.NewSigner(cfg.Transcripts.SignedURLSecret, cfg.Transcripts.SignedURLTTL)
	transcriptSvc := service.NewTranscriptService(pastGradeSvc, store, signer, cfg.APIPrefix+"/transcripts", logr)
	analyticsSvc := service.NewAnalyticsService(enrollmentRepo, courseRepo)

	recalc := jobs.NewQueue("grade-recalc", gradeSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Grades.RecalcWorkers,
		MaxRetries: cfg.Grades.RecalcRetries,
		RetryDelay: time.Second,
		Logger:     logr,
	})
	recalc.Start(ctx)
	gradeSvc.UseQueue(recalc)
	metrics.TrackPending(recalc.Pending)

	if local, ok := store.(*storage.LocalStore); ok && cfg.Transcripts.Enabled {
		go cleanupTranscripts(ctx, local, cfg.Transcripts.SignedURLTTL, cfg.Transcripts.CleanupInterval, logr)
	}

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	routes.Register(r, routes.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Courses:     handler.NewCourseHandler(courseSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Grades:      handler.NewGradeHandler(gradeSvc),
		PastGrades:  handler.NewPastGradeHandler(pastGradeSvc, transcriptSvc),
		Transcripts: handler.NewTranscriptHandler(transcriptSvc),
		Analytics:   handler.NewAnalyticsHandler(analyticsSvc),
		Users:       handler.NewUserHandler(userSvc),
		Metrics:     handler.NewMetricsHandler(metrics, checks),
	}, routes.Options{
		APIPrefix:         cfg.APIPrefix,
		EnableDocs:        cfg.Env != config.EnvProduction,
		EnableTranscripts: cfg.Transcripts.Enabled,
		EnableAnalytics:   cfg.Analytics.Enabled,
		TokenValidator:    authSvc,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	recalc.Stop()
}

func newStore(cfg config.TranscriptsConfig) (storage.Store, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3Store(storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		})
	}
	return storage.NewLocalStore(cfg.StorageDir)
}

// cleanupTranscripts removes local transcripts whose download links can no longer be valid.
func cleanupTranscripts(ctx context.Context, store *storage.LocalStore, ttl, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.CleanupOlderThan(ttl)
			if err != nil {
				logr.Warn("transcript cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("transcripts cleaned up", zap.Int("removed", len(removed)))
			}
		}
	}
}
