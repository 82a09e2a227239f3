package provider

import (
	"github.com/jessmaeeGit/kimklesordering-api/internal/cache"
	"github.com/jessmaeeGit/kimklesordering-api/internal/config"
	"github.com/jessmaeeGit/kimklesordering-api/internal/logger"
	"github.com/jessmaeeGit/kimklesordering-api/internal/models"
	"github.com/jessmaeeGit/kimklesordering-api/internal/notify/movider"
	"github.com/jessmaeeGit/kimklesordering-api/internal/notify/notificationapi"
	"github.com/jessmaeeGit/kimklesordering-api/internal/queue"
	"github.com/jessmaeeGit/kimklesordering-api/internal/repository"
	"github.com/jessmaeeGit/kimklesordering-api/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo   repository.AdminRepository
	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository
	CartRepo    repository.CartRepository
	OrderRepo   repository.OrderRepository

	// Services
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	ProductService      *service.ProductService
	CartService         *service.CartService
	OrderService        *service.OrderService
	CheckoutService     *service.CheckoutService
	NotificationService *service.NotificationService
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
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, &c.Config.Cart)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CartRepo, c.UserRepo, c.QueueClient, &c.Config.Order)
	c.CheckoutService = service.NewCheckoutService(c.CartService, c.OrderService, &c.Config.Paypal)

	emailClient := notificationapi.NewClient(c.Config.Notify.NotificationAPI)
	smsClient := movider.NewClient(c.Config.Notify.Movider)
	c.NotificationService = service.NewNotificationService(c.Config.Notify, emailClient, smsClient)
}
