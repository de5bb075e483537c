package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VML-Technologies/VML.Perito-sub005/docs"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/api/handlers"
	mw "github.com/VML-Technologies/VML.Perito-sub005/internal/app/api/middleware"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/apitoken"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/ratelimit"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statistics"
	webhookhandler "github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/webhook_handler"
	cfgpkg "github.com/VML-Technologies/VML.Perito-sub005/pkg/config"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/logctx"
	"github.com/VML-Technologies/VML.Perito-sub005/pkg/metrics"
)

func newEngine(cfg *cfgpkg.Config) *gin.Engine {
	if cfg != nil && cfg.Env == cfgpkg.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	var origins []string
	if cfg != nil {
		origins = cfg.CORS.AllowedOrigins
	}
	r.Use(mw.CORS(origins))
	return r
}

type routeParams struct {
	fx.In

	Lc        fx.Lifecycle
	Engine    *gin.Engine
	Log       *zap.SugaredLogger
	Cfg       *cfgpkg.Config
	DB        *gorm.DB
	Limiter   *ratelimit.Limiter
	Validator apitoken.TokenValidator
	Tokens    apitoken.TokenRegistry `optional:"true"`
	Recorder  statechange.Recorder
	Stats     *statistics.Service
	Webhooks  *webhookhandler.WebhookHandler
}

func registerRoutes(p routeParams) {
	r, log, cfg := p.Engine, p.Log, p.Cfg

	metrics.RegisterBusinessMetrics(log)
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return "unmatched"
			},
			SourceLabelFn: func(c *gin.Context) string {
				return c.GetString(logctx.KeyAPISource)
			},
			Logger: log,
		})
		prom.SetListenAddress(cfg.MetricsAddr)
		prom.Use(r)
		if p.Lc != nil {
			p.Lc.Append(fx.Hook{OnStop: prom.Shutdown})
		}

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub, p.DB)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Gated groups: rate limit first, then token
	gate := []gin.HandlerFunc{
		mw.RequestLoggerMiddleware(log),
		mw.AccessLogMiddleware(),
		mw.RateLimit(p.Limiter, log),
		mw.APITokenAuth(p.Validator, log),
	}

	integration := r.Group("/api/v1/integration")
	integration.Use(gate...)
	handlers.RegisterStateChangeRoutes(integration, p.Recorder, log)
	handlers.RegisterWebhookRoutes(integration, p.Webhooks, log)

	admin := r.Group("/api/v1/admin")
	admin.Use(gate...)
	handlers.RegisterAdminRoutes(admin, p.Recorder, p.Stats, log)
	// Token management only exists in registry mode
	if p.Tokens != nil {
		handlers.RegisterAPITokenRoutes(admin, p.Tokens, log)
	}
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
