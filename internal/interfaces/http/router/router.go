// Package router 提供 HTTP 路由配置
package router

import (
	"roleplay-tutor-api/internal/config"
	"roleplay-tutor-api/internal/interfaces/http/handler"
	"roleplay-tutor-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterHandlers 路由依赖的全部处理器
type RouterHandlers struct {
	Health   *handler.HealthHandler
	Chat     *handler.ChatHandler
	Scenario *handler.ScenarioHandler
	Locale   *handler.LocaleHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers RouterHandlers
	limiter  middleware.RateLimiter
}

// New 创建路由器；limiter 为 nil 时不限流
func New(cfg *config.Config, handlers RouterHandlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.metricsPath()))
	}
}

func (r *Router) setupRoutes() {
	h := r.handlers

	// 系统端点
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	identity := middleware.Identity(middleware.IdentityConfig{
		Secret:   r.cfg.Security.JWT.Secret,
		Issuer:   r.cfg.Security.JWT.Issuer,
		Required: r.cfg.Features.Auth.RequireIdentity,
	})
	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:   r.cfg.Security.RateLimit.Enabled,
		Requests:  r.cfg.Security.RateLimit.Requests,
		Window:    r.cfg.Security.RateLimit.Window,
		KeyPrefix: r.cfg.Security.RateLimit.KeyPrefix,
	}, r.limiter)

	// /api 与 /v1 指向同一组处理器
	for _, g := range []*gin.RouterGroup{r.engine.Group("/api"), r.engine.Group("/v1")} {
		g.GET("/health", h.Health.ServiceHealth)
		g.GET("/locales", h.Locale.List)
		r.registerTutorRoutes(g.Group("", identity, rateLimit))
	}
}

func (r *Router) metricsPath() string {
	if p := r.cfg.Observability.Metrics.Path; p != "" {
		return p
	}
	return "/metrics"
}

func (r *Router) registerTutorRoutes(g *gin.RouterGroup) {
	h := r.handlers

	g.POST("/chat", h.Chat.Chat)

	scenario := g.Group("/scenario")
	{
		scenario.POST("/generate", h.Scenario.Generate)
		scenario.POST("/modify", h.Scenario.Modify)
	}
}
