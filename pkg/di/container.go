package di

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskhub/application/serviceimpl"
	"taskhub/domain/ports"
	"taskhub/domain/repositories"
	"taskhub/domain/services"
	"taskhub/infrastructure/events"
	"taskhub/infrastructure/postgres"
	redispkg "taskhub/infrastructure/redis"
	"taskhub/infrastructure/storage"
	"taskhub/interfaces/api/handlers"
	"taskhub/pkg/config"
	"taskhub/pkg/logger"
	"taskhub/pkg/scheduler"
)

type Container struct {
	Config *config.Config

	// Infrastructure
	DB             *gorm.DB
	RedisClient    *redispkg.Client // optional principal cache
	Events         ports.EventPublisher
	Blobs          ports.BlobStore
	EventScheduler scheduler.EventScheduler

	// Repositories
	UserRepository repositories.UserRepository
	TaskRepository repositories.TaskRepository

	// Services
	AuthService       services.AuthService
	TaskService       services.TaskService
	AdminService      services.AdminService
	PrincipalResolver services.PrincipalResolver
	BlobSweeper       *serviceimpl.BlobSweeper
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initLogger(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initSweeper(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Info("Configuration loaded")
	return nil
}

func (c *Container) initLogger() error {
	logConfig := logger.Config{
		Level:      c.Config.Log.Level,
		Format:     c.Config.Log.Format,
		Output:     c.Config.Log.Output,
		FilePath:   c.Config.Log.FilePath,
		MaxSize:    c.Config.Log.MaxSize,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAge:     c.Config.Log.MaxAge,
		Compress:   c.Config.Log.Compress,
	}

	if err := logger.Init(logConfig); err != nil {
		return err
	}

	logger.Info("Logger initialized",
		"level", c.Config.Log.Level,
		"format", c.Config.Log.Format,
		"output", c.Config.Log.Output,
	)
	return nil
}

func (c *Container) initInfrastructure() error {
	dbConfig := postgres.DatabaseConfig{
		Host:     c.Config.Database.Host,
		Port:     c.Config.Database.Port,
		User:     c.Config.Database.User,
		Password: c.Config.Database.Password,
		DBName:   c.Config.Database.DBName,
		SSLMode:  c.Config.Database.SSLMode,
	}

	db, err := postgres.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Info("Database connected", "host", c.Config.Database.Host, "db", c.Config.Database.DBName)

	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Info("Database migrated")

	// Redis is optional. Without it the principal resolver hits the
	// database on every request.
	if c.Config.Redis.URL != "" {
		redisClient, err := redispkg.NewClient(&c.Config.Redis)
		if err != nil {
			logger.Warn("Redis client initialization failed (principal cache disabled)", "error", err)
		} else {
			c.RedisClient = redisClient
		}
	}

	// NATS is optional too. Lifecycle events fall back to a noop publisher.
	if c.Config.NATS.URL != "" {
		publisher, err := events.NewNATSPublisher(c.Config.NATS.URL)
		if err != nil {
			logger.Warn("NATS publisher initialization failed (events disabled)", "error", err)
			c.Events = events.NewNoopPublisher()
		} else {
			c.Events = publisher
		}
	} else {
		c.Events = events.NewNoopPublisher()
	}

	return c.initStorage()
}

func (c *Container) initStorage() error {
	switch c.Config.Storage.Type {
	case "s3":
		s3Config := storage.S3BlobStoreConfig{
			Endpoint:  c.Config.Storage.S3.Endpoint,
			AccessKey: c.Config.Storage.S3.AccessKey,
			SecretKey: c.Config.Storage.S3.SecretKey,
			Bucket:    c.Config.Storage.S3.Bucket,
			UseSSL:    c.Config.Storage.S3.UseSSL,
			Region:    c.Config.Storage.S3.Region,
		}
		blobs, err := storage.NewS3BlobStore(s3Config)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 blob store: %w", err)
		}
		c.Blobs = blobs

	default:
		localConfig := storage.LocalBlobStoreConfig{
			BasePath: c.Config.Storage.BasePath,
		}
		blobs, err := storage.NewLocalBlobStore(localConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize local blob store: %w", err)
		}
		c.Blobs = blobs
		logger.Info("Local blob store initialized", "path", c.Config.Storage.BasePath)
	}

	return nil
}

func (c *Container) initRepositories() error {
	c.UserRepository = postgres.NewUserRepository(c.DB)
	c.TaskRepository = postgres.NewTaskRepository(c.DB)
	logger.Info("Repositories initialized")
	return nil
}

func (c *Container) initServices() error {
	c.PrincipalResolver = serviceimpl.NewPrincipalResolver(c.UserRepository, c.RedisClient)

	c.AuthService = serviceimpl.NewAuthService(c.UserRepository, c.Config.JWT)
	c.TaskService = serviceimpl.NewTaskService(
		c.TaskRepository,
		c.UserRepository,
		c.Blobs,
		c.Events,
		c.Config.Storage.MaxUploadSize,
	)
	c.AdminService = serviceimpl.NewAdminService(
		c.UserRepository,
		c.TaskRepository,
		c.PrincipalResolver,
		c.Events,
	)

	logger.Info("Services initialized", "cache", c.RedisClient != nil)
	return nil
}

func (c *Container) initSweeper() error {
	if !c.Config.Sweeper.Enabled {
		logger.Info("Blob sweeper disabled")
		return nil
	}

	c.EventScheduler = scheduler.NewEventScheduler()
	c.EventScheduler.Start()

	grace := time.Duration(c.Config.Sweeper.GraceMinutes) * time.Minute
	c.BlobSweeper = serviceimpl.NewBlobSweeper(c.TaskRepository, c.Blobs, grace)

	if err := c.BlobSweeper.Register(c.EventScheduler, c.Config.Sweeper.Cron); err != nil {
		logger.Warn("Failed to register blob sweeper job", "error", err)
		return nil
	}

	logger.Info("Blob sweeper registered",
		"cron", c.Config.Sweeper.Cron,
		"grace_minutes", c.Config.Sweeper.GraceMinutes,
	)
	return nil
}

func (c *Container) Cleanup() error {
	logger.Info("Starting cleanup...")

	if c.EventScheduler != nil && c.EventScheduler.IsRunning() {
		c.EventScheduler.Stop()
	}

	if c.Events != nil {
		c.Events.Close()
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close database connection", "error", err)
			}
		}
	}

	logger.Info("Cleanup completed")
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		AuthService:       c.AuthService,
		TaskService:       c.TaskService,
		AdminService:      c.AdminService,
		PrincipalResolver: c.PrincipalResolver,
		JWTSecret:         c.Config.JWT.Secret,
	}
}
