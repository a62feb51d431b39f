package container

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"podcast-catalog/internal/config"
	infraCache "podcast-catalog/internal/infrastructure/cache"
	"podcast-catalog/internal/infrastructure/database"
	"podcast-catalog/internal/infrastructure/storage"
	"podcast-catalog/internal/shared/middleware"
	"podcast-catalog/pkg/cache"
	"podcast-catalog/pkg/jwt"

	"podcast-catalog/internal/domains/user"
	userHandler "podcast-catalog/internal/domains/user/handler"
	userRepo "podcast-catalog/internal/domains/user/repository"
	userService "podcast-catalog/internal/domains/user/service"

	podcastHandler "podcast-catalog/internal/domains/podcast/handler"
	podcastRepo "podcast-catalog/internal/domains/podcast/repository"
	podcastService "podcast-catalog/internal/domains/podcast/service"

	uploadHandler "podcast-catalog/internal/domains/upload/handler"
	uploadService "podcast-catalog/internal/domains/upload/service"

	catalogHandler "podcast-catalog/internal/domains/catalog/handler"
	catalogService "podcast-catalog/internal/domains/catalog/service"
)

// HealthChecker dùng cho GET /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependency graph của API
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB // nil khi build từ Infrastructure giả (tests)
	Health      HealthChecker
	Cache       cache.Cache
	Store       storage.ObjectStore
	JWTManager  *jwt.Manager
	RateLimiter *middleware.RateLimiter

	// Repositories
	UserRepo    user.Repository
	PodcastRepo podcastRepo.RepositoryInterface

	// Services
	UserService    user.Service
	PodcastService podcastService.ServiceInterface
	UploadService  *uploadService.UploadService
	CatalogService catalogService.ServiceInterface

	// Handlers
	UserHandler    *userHandler.UserHandler
	PodcastHandler *podcastHandler.PodcastHandler
	UploadHandler  *uploadHandler.UploadHandler
	CatalogHandler *catalogHandler.CatalogHandler
}

// Infrastructure là phần phụ thuộc bên ngoài, inject được để test router
type Infrastructure struct {
	DB          *database.PostgresDB
	Health      HealthChecker
	Cache       cache.Cache
	Store       storage.ObjectStore
	UserRepo    user.Repository
	PodcastRepo podcastRepo.RepositoryInterface
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer kết nối Postgres, Redis, object storage rồi wire các domain.
// Thứ tự: infrastructure -> repositories -> services -> handlers
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Msg("[CONTAINER] Initializing dependencies...")

	// STEP 1: DATABASE
	dbConfig, err := config.LoadDatabaseConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		applied, err := db.Migrate(connectCtx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Strs("applied", applied).Msg("[CONTAINER] Migrations up to date")
	}

	// STEP 2: REDIS
	// Redis down không chặn startup: cache bỏ qua lỗi, rate limiter fallback in-process
	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("[CONTAINER] Redis unavailable, continuing without it")
	}

	// STEP 3: OBJECT STORAGE
	store, err := storage.New(ctx, cfg)
	if err != nil {
		db.Close()
		_ = redisCache.Close()
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	c := Build(cfg, Infrastructure{
		DB:          db,
		Health:      db,
		Cache:       redisCache,
		Store:       store,
		UserRepo:    userRepo.NewPostgresRepository(db.Pool),
		PodcastRepo: podcastRepo.NewPostgresRepository(db.Pool),
	})

	log.Info().
		Str("env", cfg.App.Environment).
		Str("storage", cfg.Storage.Driver).
		Msg("[CONTAINER] Dependencies initialized")
	return c, nil
}

// Build wire services và handlers trên infrastructure đã có
func Build(cfg *config.Config, infra Infrastructure) *Container {
	c := &Container{
		Config:      cfg,
		DB:          infra.DB,
		Health:      infra.Health,
		Cache:       infra.Cache,
		Store:       infra.Store,
		UserRepo:    infra.UserRepo,
		PodcastRepo: infra.PodcastRepo,
		JWTManager:  jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry),
		RateLimiter: middleware.NewRateLimiter(infra.Cache, cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}

	c.initServices()
	c.initHandlers()
	return c
}

func (c *Container) initServices() {
	limits := uploadService.Limits{
		MaxAudioBytes: c.Config.Storage.MaxAudioBytes,
		MaxImageBytes: c.Config.Storage.MaxImageBytes,
	}

	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.PodcastService = podcastService.NewPodcastService(c.PodcastRepo, c.Cache)
	c.UploadService = uploadService.NewUploadService(c.Store, limits)
	c.CatalogService = catalogService.NewCatalogService(
		c.Config.Catalog.FeedURL,
		c.Config.Catalog.CacheTTL,
		c.Config.Catalog.Timeout,
		c.Cache,
	)
}

func (c *Container) initHandlers() {
	limits := uploadService.Limits{
		MaxAudioBytes: c.Config.Storage.MaxAudioBytes,
		MaxImageBytes: c.Config.Storage.MaxImageBytes,
	}

	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.PodcastHandler = podcastHandler.NewPodcastHandler(c.PodcastService)
	c.UploadHandler = uploadHandler.NewUploadHandler(c.UploadService, limits)
	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.CatalogService)
}

// AuthMiddleware dùng chung cho mọi route cần token
func (c *Container) AuthMiddleware() gin.HandlerFunc {
	return middleware.AuthMiddleware(c.JWTManager)
}

// Cleanup đóng pool và Redis khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] Cleaning up resources...")

	if c.DB != nil {
		c.DB.Close()
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close Redis")
		}
	}
}
