package provider

import (
	"github.com/grabhealth-next/internal/authz"
	"github.com/grabhealth-next/internal/cache"
	"github.com/grabhealth-next/internal/config"
	"github.com/grabhealth-next/internal/logger"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/queue"
	"github.com/grabhealth-next/internal/repository"
	"github.com/grabhealth-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo       repository.UserRepository
	NetworkRepo    repository.NetworkRepository
	CategoryRepo   repository.CategoryRepository
	ProductRepo    repository.ProductRepository
	CartRepo       repository.CartRepository
	OrderRepo      repository.OrderRepository
	CommissionRepo repository.CommissionRepository
	TemplateRepo   repository.CommissionTemplateRepository
	MembershipRepo repository.MembershipRepository
	PartnerRepo    repository.PartnerRepository
	BookingRepo    repository.BookingRepository
	SettingRepo    repository.SettingRepository
	DashboardRepo  repository.DashboardRepository

	// Services
	AuthzService              *authz.Service
	UserAuthService           *service.UserAuthService
	UserAdminService          *service.UserAdminService
	CaptchaService            *service.CaptchaService
	ReferralService           *service.ReferralService
	CategoryService           *service.CategoryService
	ProductService            *service.ProductService
	CartService               *service.CartService
	MembershipService         *service.MembershipService
	CommissionService         *service.CommissionService
	CommissionTemplateService *service.CommissionTemplateService
	OrderService              *service.OrderService
	PartnerService            *service.PartnerService
	BookingService            *service.BookingService
	SettingService            *service.SettingService
	DashboardService          *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.NetworkRepo = repository.NewNetworkRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.TemplateRepo = repository.NewCommissionTemplateRepository(db)
	c.MembershipRepo = repository.NewMembershipRepository(db)
	c.PartnerRepo = repository.NewPartnerRepository(db)
	c.BookingRepo = repository.NewBookingRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
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

	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.CaptchaService = service.NewCaptchaService(c.SettingService, c.Config.Captcha)

	c.ReferralService = service.NewReferralService(c.UserRepo, c.NetworkRepo, c.Config.Referral.MaxUplineHops)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.ReferralService)
	c.UserAdminService = service.NewUserAdminService(c.UserRepo, c.ReferralService)

	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.MembershipService = service.NewMembershipService(c.MembershipRepo, c.OrderRepo)
	c.CommissionService = service.NewCommissionService(
		c.CommissionRepo,
		c.OrderRepo,
		c.UserRepo,
		c.NetworkRepo,
		c.ProductRepo,
		c.TemplateRepo,
		c.SettingService,
	)
	c.CommissionTemplateService = service.NewCommissionTemplateService(c.TemplateRepo, c.ProductRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.CartRepo,
		c.MembershipService,
		c.CommissionService,
		c.SettingService,
		c.QueueClient,
		c.Config.Order.PaymentExpireMinutes,
	)
	c.PartnerService = service.NewPartnerService(c.PartnerRepo, c.UserRepo)
	c.BookingService = service.NewBookingService(c.BookingRepo, c.PartnerRepo, c.QueueClient, c.Config.Booking.ReminderLeadMinutes)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.SettingService)
}
