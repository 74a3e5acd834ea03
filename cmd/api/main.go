package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/campthai/campthai-backend/internal/config"
	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/logging"
	"github.com/campthai/campthai-backend/internal/media"
	"github.com/campthai/campthai-backend/internal/observability"
	miniostore "github.com/campthai/campthai-backend/internal/repository/minio"
	"github.com/campthai/campthai-backend/internal/repository/ports"
	"github.com/campthai/campthai-backend/internal/repository/postgres"
	redisstore "github.com/campthai/campthai-backend/internal/repository/redis"
	"github.com/campthai/campthai-backend/internal/service"
	transport "github.com/campthai/campthai-backend/internal/transport/http"
	"github.com/campthai/campthai-backend/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash writer disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()

	cache := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		log.Printf("redis unreachable, caching degraded: %v", err)
	}
	cancelPing()

	minioClient, err := miniostore.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect to minio: %v", err)
	}
	storage := miniostore.NewStorage(minioClient, cfg.MinIOEndpoint, cfg.MinIOUseSSL, cfg.MinIOPublicURL)

	campsiteRepo := postgres.NewCampsiteRepo(db)
	provinceRepo := postgres.NewProvinceRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)
	reviewPhotoRepo := postgres.NewReviewPhotoRepo(db)
	wishlistRepo := postgres.NewWishlistRepo(db)
	userRepo := postgres.NewUserRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)
	viewStatsRepo := postgres.NewViewStatsRepo(db)

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(userRepo, sessionRepo, jwtManager, cfg.GoogleAudience)

	if cfg.AdminEmail != "" {
		roleRepo := postgres.NewRoleRepo(db)
		bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
		if err := grantAdminRole(bootCtx, userRepo, roleRepo, cfg.AdminEmail); err != nil {
			log.Printf("admin role bootstrap skipped: %v", err)
		}
		cancelBoot()
	}

	campsiteService := service.NewCampsiteService(campsiteRepo, viewStatsRepo, cache, service.CampsiteServiceConfig{
		MapMarkerLimit:  cfg.MapMarkerLimit,
		MapCacheTTL:     cfg.MapCacheTTL,
		SearchCacheTTL:  cfg.SearchCacheTTL,
		PopularCacheTTL: cfg.PopularCacheTTL,
		PopularLimit:    cfg.PopularLimit,
	})
	provinceService := service.NewProvinceService(provinceRepo)
	reviewService := service.NewReviewService(reviewRepo, reviewPhotoRepo, campsiteRepo, storage,
		media.NewImageProcessor(cfg.ReviewMaxDim), service.ReviewServiceConfig{
			PhotoBucket:   cfg.MinIOBucketReview,
			MaxPhotos:     cfg.ReviewPhotoMax,
			MaxPhotoBytes: cfg.ReviewPhotoBytes,
			MaxPhotoDim:   cfg.ReviewMaxDim,
		})
	wishlistService := service.NewWishlistService(wishlistRepo, campsiteRepo)
	popularityService := service.NewPopularityService(campsiteRepo, viewStatsRepo)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.PopularityCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := popularityService.RecomputeAll(ctx); err != nil {
			log.Printf("popularity recompute failed: %v", err)
			return
		}
		campsiteService.InvalidatePopular(ctx)
	}); err != nil {
		log.Fatalf("schedule popularity recompute: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	registry := observability.InitRegistry()

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterMetrics(e, registry)
	transport.RegisterSwagger(e)

	generalLimiter := transport.RateLimit(transport.RateLimitConfig{
		Policy: "general", Max: cfg.RateLimitGeneral, Window: cfg.RateLimitWindow,
	})
	reviewLimiter := transport.RateLimit(transport.RateLimitConfig{
		Policy: "reviews", Max: cfg.RateLimitReviews, Window: cfg.RateLimitWindow,
	})
	wishlistLimiter := transport.RateLimit(transport.RateLimitConfig{
		Policy: "wishlist", Max: cfg.RateLimitWishlist, Window: cfg.RateLimitWindow,
	})

	transport.RegisterAuth(e, authService, generalLimiter)
	transport.RegisterCampsites(e, authService, campsiteService, provinceService, generalLimiter)
	transport.RegisterReviews(e, authService, reviewService, generalLimiter, reviewLimiter)
	transport.RegisterWishlist(e, authService, wishlistService, wishlistLimiter)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// grantAdminRole promotes the configured account on startup. The inserts are
// idempotent, so rerunning on every boot is safe.
func grantAdminRole(ctx context.Context, users ports.UserRepository, roles ports.RoleRepository, email string) error {
	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user %s: %w", email, err)
	}
	role, err := roles.GetOrCreateRole(ctx, domain.RoleAdmin, "moderation access")
	if err != nil {
		return fmt.Errorf("ensure admin role: %w", err)
	}
	return roles.AssignUserRole(ctx, user.ID, role.ID)
}
