package provider

import (
	"time"

	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/metrics"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Metrics

	// Repositories
	AdminRepo       repository.AdminRepository
	UserRepo        repository.UserRepository
	OrderRepo       repository.OrderRepository
	ProductRepo     repository.ProductRepository
	CartRepo        repository.CartRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository
	UserCouponRepo  repository.UserCouponRepository
	StoreCreditRepo repository.StoreCreditRepository
	CounterRepo     repository.CounterRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	EmailService        *service.EmailService
	OrderMailer         *service.OrderMailer
	NotificationService *service.NotificationService
	ProductService      *service.ProductService
	CartService         *service.CartService
	CouponService       *service.CouponService
	CouponAdminService  *service.CouponAdminService
	StoreCreditService  *service.StoreCreditService
	InventoryService    *service.InventoryService
	OrderService        *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	namespace := cfg.Metrics.Namespace
	if namespace == "" {
		namespace = "storefront"
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Metrics:     metrics.New(namespace),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.UserCouponRepo = repository.NewUserCouponRepository(db)
	c.StoreCreditRepo = repository.NewStoreCreditRepository(db)
	c.CounterRepo = repository.NewCounterRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	store := c.Config.Store
	pricing := cart.Pricing{
		FreeShippingThreshold: store.FreeShippingThresholdDecimal(),
		FlatShippingRate:      store.FlatShippingRateDecimal(),
		TaxRate:               store.TaxRateDecimal(),
	}

	c.AuthService = service.NewAuthService(c.Config.JWT, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config.UserJWT, c.UserRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.OrderMailer = service.NewOrderMailer(c.OrderRepo, c.EmailService, store.OperatorEmail, c.Metrics)
	c.NotificationService = service.NewNotificationService(c.QueueClient, c.OrderMailer)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, pricing, hoursOr(store.CartTTLHours, 72), c.Metrics)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo, c.UserCouponRepo, c.OrderRepo, c.Metrics)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo, c.UserCouponRepo, c.UserRepo)
	c.StoreCreditService = service.NewStoreCreditService(c.StoreCreditRepo)
	c.InventoryService = service.NewInventoryService(c.ProductRepo, c.Metrics)
	c.OrderService = service.NewOrderService(service.OrderServiceDeps{
		OrderRepo:   c.OrderRepo,
		ProductRepo: c.ProductRepo,
		UserRepo:    c.UserRepo,
		Coupons:     c.CouponService,
		StoreCredit: c.StoreCreditService,
		Invoices:    service.NewInvoiceSequencer(c.CounterRepo, c.OrderRepo, store.InvoiceFloor),
		Inventory:   c.InventoryService,
		Notifier:    c.NotificationService,
		Carts:       c.CartService,
		Metrics:     c.Metrics,
		Options: service.OrderOptions{
			Currency:          store.Currency,
			Pricing:           pricing,
			LoyaltyRate:       store.LoyaltyRateDecimal(),
			SideEffectTimeout: time.Duration(store.SideEffectTimeoutSecs) * time.Second,
		},
	})
}

func hoursOr(hours, fallback int) time.Duration {
	if hours <= 0 {
		hours = fallback
	}
	return time.Duration(hours) * time.Hour
}
