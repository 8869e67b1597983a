package provider

import (
	"time"

	"github.com/scanpesa/internal/cache"
	"github.com/scanpesa/internal/config"
	"github.com/scanpesa/internal/logger"
	"github.com/scanpesa/internal/models"
	"github.com/scanpesa/internal/payment/mpesa"
	"github.com/scanpesa/internal/queue"
	"github.com/scanpesa/internal/repository"
	"github.com/scanpesa/internal/service"
)

// Container dependency container
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Gateway     service.PaymentGateway

	// Repositories
	AdminRepo              repository.AdminRepository
	CampaignRepo           repository.CampaignRepository
	ProductRepo            repository.ProductRepository
	RedemptionTokenRepo    repository.RedemptionTokenRepository
	FeedbackRepo           repository.FeedbackRepository
	RewardRepo             repository.RewardRepository
	PaymentTransactionRepo repository.PaymentTransactionRepository

	// Services
	AuthService       *service.AuthService
	FeedbackValidator *service.FeedbackValidator
	QRService         *service.QRService
	RedemptionService *service.RedemptionService
	FeedbackService   *service.FeedbackService
	RewardService     *service.RewardService
	AnalyticsService  *service.AnalyticsService
}

// NewContainer wires repositories and services
func NewContainer(cfg *config.Config) *Container {
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

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initGateway()
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initGateway() {
	mc := c.Config.Mpesa
	if !mc.Enabled {
		logger.Infow("provider_mpesa_disabled")
		return
	}
	baseURL := mc.BaseURL
	if baseURL == "" {
		baseURL = mpesa.BaseURLFor(mc.Environment)
	}
	client, err := mpesa.NewClient(mpesa.Config{
		BaseURL:            baseURL,
		ConsumerKey:        mc.ConsumerKey,
		ConsumerSecret:     mc.ConsumerSecret,
		InitiatorName:      mc.InitiatorName,
		SecurityCredential: mc.SecurityCredential,
		ShortCode:          mc.ShortCode,
		CommandID:          mc.CommandID,
		CallbackBaseURL:    mc.CallbackBaseURL,
		Timeout:            time.Duration(mc.RequestTimeoutSeconds) * time.Second,
	}, nil)
	if err != nil {
		logger.Errorw("provider_init_mpesa_failed", "error", err)
		return
	}
	c.Gateway = client
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.RedemptionTokenRepo = repository.NewRedemptionTokenRepository(db)
	c.FeedbackRepo = repository.NewFeedbackRepository(db)
	c.RewardRepo = repository.NewRewardRepository(db)
	c.PaymentTransactionRepo = repository.NewPaymentTransactionRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config.JWT, c.AdminRepo)
	c.FeedbackValidator = service.NewFeedbackValidator(c.Config.Geofence)
	c.QRService = service.NewQRService(c.RedemptionTokenRepo, c.CampaignRepo, c.Config.QR)
	c.RedemptionService = service.NewRedemptionService(
		c.FeedbackValidator,
		c.RedemptionTokenRepo,
		c.CampaignRepo,
		c.ProductRepo,
		c.FeedbackRepo,
		c.RewardRepo,
	)
	c.FeedbackService = service.NewFeedbackService(c.FeedbackRepo)
	c.RewardService = service.NewRewardService(
		c.RewardRepo,
		c.PaymentTransactionRepo,
		c.FeedbackRepo,
		c.Gateway,
		c.QueueClient,
		time.Duration(c.Config.Mpesa.PaymentTimeoutMinutes)*time.Minute,
	)
	c.AnalyticsService = service.NewAnalyticsService(c.FeedbackRepo, c.RewardRepo)
}
