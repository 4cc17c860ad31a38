package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/config"
	infraCache "classifieds-backend/internal/infrastructure/cache"
	"classifieds-backend/internal/infrastructure/database"
	"classifieds-backend/internal/infrastructure/queue"
	"classifieds-backend/internal/infrastructure/storage"
	"classifieds-backend/internal/shared/pagination"
	"classifieds-backend/pkg/cache"

	"classifieds-backend/internal/domains/ad"
	adHandler "classifieds-backend/internal/domains/ad/handler"
	adRepo "classifieds-backend/internal/domains/ad/repository"
	adService "classifieds-backend/internal/domains/ad/service"

	"classifieds-backend/internal/domains/category"
	categoryHandler "classifieds-backend/internal/domains/category/handler"
	categoryRepo "classifieds-backend/internal/domains/category/repository"
	categoryService "classifieds-backend/internal/domains/category/service"

	"classifieds-backend/internal/domains/user"
	userRepo "classifieds-backend/internal/domains/user/repository"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependencies của API process.
// Thứ tự khởi tạo: Config -> Infrastructure -> Repositories -> Services -> Handlers
type Container struct {
	// INFRASTRUCTURE
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache // nil khi Redis không kết nối được
	Storage     *storage.MinIOStorage
	Processor   *storage.ImageProcessor
	QueueClient *queue.Client // nil khi QUEUE_ENABLED=false
	Paginator   pagination.Paginator

	// REPOSITORIES
	UserRepo     user.Repository
	CategoryRepo category.Repository
	AdRepo       ad.Repository

	// SERVICES
	CategoryService category.Service
	AdService       ad.Service

	// HANDLERS
	CategoryHandler *categoryHandler.CategoryHandler
	AdHandler       *adHandler.AdHandler

	redis       *infraCache.RedisCache
	stopMonitor context.CancelFunc
}

// ========================================
// CONSTRUCTOR
// ========================================

func NewContainer() (*Container, error) {
	log.Info().Msg("[CONTAINER] Initializing...")

	c := &Container{}

	// STEP 1: CONFIG
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	c.Paginator = pagination.New(cfg.Pagination.PageSize)
	log.Info().Str("env", cfg.App.Environment).Int("page_size", cfg.Pagination.PageSize).Msg("[CONTAINER] Config loaded")

	// STEP 2: INFRASTRUCTURE
	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	// STEP 3-5
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("[CONTAINER] Initialized")
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	// ----------------------------------------
	// DATABASE
	// ----------------------------------------
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	monitorCtx, stop := context.WithCancel(context.Background())
	c.stopMonitor = stop
	go db.MonitorPoolHealth(monitorCtx, cfg.Database.PoolMonitorInterval)

	// ----------------------------------------
	// CACHE
	// ----------------------------------------
	// Redis lỗi không critical: repositories chạy thẳng xuống DB
	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("[CONTAINER] Redis unavailable, cache disabled")
		_ = redisCache.Close()
	} else {
		c.redis = redisCache
		c.Cache = redisCache
	}

	// ----------------------------------------
	// OBJECT STORAGE
	// ----------------------------------------
	store, err := storage.NewMinIOStorage(ctx, cfg.MinIO, cfg.Storage.PublicURL)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	c.Storage = store
	c.Processor = storage.NewImageProcessor(cfg.Storage.MaxUploadBytes)

	// ----------------------------------------
	// QUEUE
	// ----------------------------------------
	if cfg.Queue.Enabled {
		c.QueueClient = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	} else {
		log.Warn().Msg("[CONTAINER] Queue disabled, image cleanup runs inline")
	}

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache)
	c.CategoryRepo = categoryRepo.NewPostgresRepository(pool, c.Cache)
	c.AdRepo = adRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.CategoryService = categoryService.NewCategoryService(c.CategoryRepo)

	// interface nil thật sự, không phải (*queue.Client)(nil)
	var cleanupQueue ad.CleanupQueue
	if c.QueueClient != nil {
		cleanupQueue = c.QueueClient
	}

	c.AdService = adService.NewAdService(
		c.AdRepo,
		c.UserRepo,
		c.CategoryRepo,
		c.Storage,
		c.Processor,
		cleanupQueue,
	)
}

func (c *Container) initHandlers() {
	c.CategoryHandler = categoryHandler.NewCategoryHandler(c.CategoryService, c.Paginator)
	c.AdHandler = adHandler.NewAdHandler(c.AdService, c.Paginator, c.Config.Storage.MaxUploadBytes)
}

// ========================================
// HEALTH & CLEANUP
// ========================================

// HealthCheck trả về trạng thái từng dependency; Redis không bắt buộc.
func (c *Container) HealthCheck(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{}
	healthy := true

	if err := c.DB.HealthCheck(ctx); err != nil {
		status["database"] = err.Error()
		healthy = false
	} else {
		status["database"] = "ok"
	}

	if err := c.Storage.Ping(ctx); err != nil {
		status["storage"] = err.Error()
		healthy = false
	} else {
		status["storage"] = "ok"
	}

	switch {
	case c.Cache == nil:
		status["redis"] = "disabled"
	case c.Cache.Ping(ctx) != nil:
		status["redis"] = "unreachable"
	default:
		status["redis"] = "ok"
	}

	return status, healthy
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] Cleaning up resources...")

	if c.stopMonitor != nil {
		c.stopMonitor()
	}

	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close queue client")
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close Redis")
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Info().Msg("[CONTAINER] Cleanup completed")
}
