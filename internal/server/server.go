package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activitydomain "github.com/RonanBeelen/InvoiceStudio/internal/activity/domain"
	automationdomain "github.com/RonanBeelen/InvoiceStudio/internal/automation/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/config"
	customerdomain "github.com/RonanBeelen/InvoiceStudio/internal/customer/domain"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	eventdomain "github.com/RonanBeelen/InvoiceStudio/internal/emailevent/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/observability/logger"
	"github.com/RonanBeelen/InvoiceStudio/internal/observability/tracing"
	priceitemdomain "github.com/RonanBeelen/InvoiceStudio/internal/priceitem/domain"
	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
	settingsdomain "github.com/RonanBeelen/InvoiceStudio/internal/settings/domain"
	templatedomain "github.com/RonanBeelen/InvoiceStudio/internal/template/domain"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	DB     *gorm.DB

	DocumentSvc   documentdomain.Service
	AutomationSvc automationdomain.Service
	CustomerSvc   customerdomain.Service
	PriceItemSvc  priceitemdomain.Service
	SettingsSvc   settingsdomain.Service
	SendSvc       senddomain.Service
	EmailEventSvc eventdomain.Service
	ActivitySvc   activitydomain.Service
	TemplateSvc   templatedomain.Service
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB

	documentSvc   documentdomain.Service
	automationSvc automationdomain.Service
	customerSvc   customerdomain.Service
	priceItemSvc  priceitemdomain.Service
	settingsSvc   settingsdomain.Service
	sendSvc       senddomain.Service
	emailEventSvc eventdomain.Service
	activitySvc   activitydomain.Service
	templateSvc   templatedomain.Service

	webhookLimiter *rateLimiter
}

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(tracing.GinMiddleware())
	return engine
}

func NewServer(engine *gin.Engine, p Params) *Server {
	return &Server{
		engine:         engine,
		cfg:            p.Config,
		log:            p.Log.Named("server"),
		db:             p.DB,
		documentSvc:    p.DocumentSvc,
		automationSvc:  p.AutomationSvc,
		customerSvc:    p.CustomerSvc,
		priceItemSvc:   p.PriceItemSvc,
		settingsSvc:    p.SettingsSvc,
		sendSvc:        p.SendSvc,
		emailEventSvc:  p.EmailEventSvc,
		activitySvc:    p.ActivitySvc,
		templateSvc:    p.TemplateSvc,
		webhookLimiter: newRateLimiter(120, time.Minute),
	}
}

func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Health)

	// Webhooks authenticate via signature, not API key.
	s.engine.POST("/api/webhooks/email/resend", s.webhookRateLimit(), s.HandleEmailWebhook)

	api := s.engine.Group("/api", s.APIKeyRequired())
	{
		api.GET("/documents", s.ListDocuments)
		api.POST("/documents", s.CreateDocument)
		api.GET("/documents/:id", s.GetDocument)
		api.PATCH("/documents/:id", s.UpdateDocument)
		api.DELETE("/documents/:id", s.DeleteDocument)
		api.POST("/documents/:id/status", s.TransitionDocument)
		api.POST("/documents/:id/send", s.SendDocument)
		api.POST("/documents/:id/remind", s.SendReminder)
		api.POST("/documents/:id/mark-sent", s.MarkDocumentSent)
		api.GET("/documents/:id/activity", s.ListDocumentActivity)
		api.GET("/documents/:id/sends", s.ListDocumentSends)

		api.GET("/automation/rules", s.ListAutomationRules)
		api.POST("/automation/rules", s.CreateAutomationRule)
		api.GET("/automation/rules/:id", s.GetAutomationRule)
		api.PATCH("/automation/rules/:id", s.UpdateAutomationRule)
		api.DELETE("/automation/rules/:id", s.DeleteAutomationRule)
		api.POST("/automation/rules/:id/pause", s.PauseAutomationRule)
		api.POST("/automation/rules/:id/resume", s.ResumeAutomationRule)
		api.POST("/automation/rules/:id/trigger", s.TriggerAutomationRule)
		api.GET("/automation/rules/:id/runs", s.ListAutomationRuns)

		api.GET("/customers", s.ListCustomers)
		api.POST("/customers", s.CreateCustomer)
		api.GET("/customers/:id", s.GetCustomer)
		api.PATCH("/customers/:id", s.UpdateCustomer)
		api.DELETE("/customers/:id", s.DeleteCustomer)

		api.GET("/price-items", s.ListPriceItems)
		api.POST("/price-items", s.CreatePriceItem)
		api.GET("/price-items/categories", s.ListPriceItemCategories)
		api.GET("/price-items/:id", s.GetPriceItem)
		api.PATCH("/price-items/:id", s.UpdatePriceItem)
		api.DELETE("/price-items/:id", s.DeletePriceItem)

		api.GET("/templates", s.ListTemplates)
		api.POST("/templates", s.CreateTemplate)
		api.GET("/templates/:id", s.GetTemplate)
		api.PATCH("/templates/:id", s.UpdateTemplate)
		api.DELETE("/templates/:id", s.DeleteTemplate)

		api.GET("/settings", s.GetSettings)
		api.PATCH("/settings", s.UpdateSettings)

		api.GET("/activity", s.ListActivityFeed)

		api.GET("/email-events", s.ListEmailEvents)
		api.GET("/email-events/unread-count", s.EmailEventUnreadCount)
		api.POST("/email-events/:id/dismiss", s.DismissEmailEvent)
		api.POST("/email-events/dismiss-all", s.DismissAllEmailEvents)

		api.GET("/statistics", s.GetStatistics)
	}
}

func RunHTTP(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func (s *Server) webhookRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.webhookLimiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
