package provider

import (
	"errors"
	"time"

	"github.com/catalog-next/internal/authz"
	"github.com/catalog-next/internal/cache"
	"github.com/catalog-next/internal/config"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/metrics"
	"github.com/catalog-next/internal/models"
	"github.com/catalog-next/internal/queue"
	"github.com/catalog-next/internal/repository"
	"github.com/catalog-next/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// Container wires repositories and services for the HTTP server and the
// worker.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	MailQueue   service.MailTaskQueue
	Mailer      service.Mailer
	Metrics     *metrics.Metrics

	// Repositories
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	OrderRepo        repository.OrderRepository
	ProductRepo      repository.ProductRepository
	CategoryRepo     repository.CategoryRepository
	UserLoginLogRepo repository.UserLoginLogRepository
	AuthzAuditRepo   repository.AuthzAuditLogRepository

	// Services
	AuthzService        *authz.Service
	AuthzAuditService   *service.AuthzAuditService
	TokenService        *service.TokenService
	AuthService         *service.AuthService
	UserLoginLogService *service.UserLoginLogService
	OrderService        *service.OrderService
	ProductService      *service.ProductService
	CategoryService     *service.CategoryService
	CaptchaService      *service.CaptchaService
	UploadService       *service.UploadService
}

// Options overrides the collaborators NewContainer would build itself.
// Zero fields fall back to the defaults.
type Options struct {
	DB       *gorm.DB
	Mailer   service.Mailer
	Queue    service.MailTaskQueue
	Registry *prometheus.Registry
}

// NewContainer connects redis and the task queue, then builds the
// container on models.DB.
func NewContainer(cfg *config.Config) (*Container, error) {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := Options{DB: models.DB, Registry: registry}
	if queueClient != nil {
		opts.Queue = queueClient
	}
	c, err := Build(cfg, opts)
	if err != nil {
		return nil, err
	}
	c.QueueClient = queueClient
	return c, nil
}

// Build assembles the container from opts.
func Build(cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if opts.DB == nil {
		return nil, errors.New("database is not initialized")
	}
	if opts.Mailer == nil {
		opts.Mailer = service.NewMailer(&cfg.Email)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	c := &Container{
		Config:    cfg,
		MailQueue: opts.Queue,
		Mailer:    opts.Mailer,
		Metrics:   metrics.New(opts.Registry),
	}
	c.initRepositories(opts.DB)
	if err := c.initServices(opts.DB); err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the queue connection and the redis client.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.QueueClient != nil {
		errs = append(errs, c.QueueClient.Close())
	}
	errs = append(errs, cache.Close())
	return errors.Join(errs...)
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.UserRepo = repository.NewUserRepository(db)
	c.RefreshTokenRepo = repository.NewRefreshTokenRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.AuthzAuditRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices(db *gorm.DB) error {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditRepo)

	c.TokenService = service.NewTokenService(c.Config.JWT)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo, c.RefreshTokenRepo, c.TokenService, c.Mailer, c.MailQueue)
	c.UserLoginLogService = service.NewUserLoginLogService(c.UserLoginLogRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.MailQueue, time.Duration(c.Config.Order.TxTimeoutSeconds)*time.Second)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.UploadService = service.NewUploadService(c.Config.Upload)
	return nil
}
