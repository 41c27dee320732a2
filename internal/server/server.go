package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	analyticsdomain "github.com/givebridge/givebridge/internal/analytics/domain"
	campaigndomain "github.com/givebridge/givebridge/internal/campaign/domain"
	"github.com/givebridge/givebridge/internal/config"
	donationdomain "github.com/givebridge/givebridge/internal/donation/domain"
	"github.com/givebridge/givebridge/internal/donation/webhook"
	donordomain "github.com/givebridge/givebridge/internal/donor/domain"
	"github.com/givebridge/givebridge/internal/notifier"
	"github.com/givebridge/givebridge/internal/observability"
	obsmiddleware "github.com/givebridge/givebridge/internal/observability/logger"
	obsmetrics "github.com/givebridge/givebridge/internal/observability/metrics"
	obstracing "github.com/givebridge/givebridge/internal/observability/tracing"
	"github.com/givebridge/givebridge/internal/ratelimit"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	campaignSvc   campaigndomain.Service
	donationSvc   donationdomain.Service
	donorSvc      donordomain.Service
	analyticsSvc  analyticsdomain.Service
	webhookSvc    *webhook.Service
	notifier      *notifier.Notifier
	intentLimiter *ratelimit.DonationIntentLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	CampaignSvc  campaigndomain.Service
	DonationSvc  donationdomain.Service
	DonorSvc     donordomain.Service
	AnalyticsSvc analyticsdomain.Service
	WebhookSvc   *webhook.Service

	Notifier      *notifier.Notifier               `optional:"true"`
	IntentLimiter *ratelimit.DonationIntentLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		campaignSvc:   p.CampaignSvc,
		donationSvc:   p.DonationSvc,
		donorSvc:      p.DonorSvc,
		analyticsSvc:  p.AnalyticsSvc,
		webhookSvc:    p.WebhookSvc,
		notifier:      p.Notifier,
		intentLimiter: p.IntentLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()
	svc.registerOpsRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Donations --------
	api.POST("/donations/intent", s.IntentRateLimit(), s.CreateDonationIntent)
	api.POST("/donations/confirm", s.ConfirmDonation)
	api.GET("/donations/recent", s.ListRecentDonations)
	api.GET("/donations/analytics/summary", s.GetAnalyticsSummary)
	api.GET("/donations/:id", s.GetDonationByID)
	api.POST("/donations/:id/refund", s.RefundDonation)

	// -------- Campaigns --------
	api.GET("/campaigns", s.ListCampaigns)
	api.POST("/campaigns", s.CreateCampaign)
	api.GET("/campaigns/:id", s.GetCampaignByID)
	api.GET("/campaigns/slug/:slug", s.GetCampaignBySlug)
	api.POST("/campaigns/:id/status", s.UpdateCampaignStatus)

	// -------- Donors --------
	api.GET("/donors", s.ListDonors)
	api.GET("/donors/lookup", s.LookupDonor)
	api.GET("/donors/:id", s.GetDonorByID)

	if s.cfg.Environment != "production" {
		api.POST("/test/cleanup", s.TestCleanup)
	}
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/gateway/:provider", s.HandleGatewayWebhook)
}

func (s *Server) registerOpsRoutes() {
	s.engine.GET("/health/notifier", s.NotifierHealth)
}
