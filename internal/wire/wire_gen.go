//go:build !wireinject
// +build !wireinject

// 与 wire.go 中 InitializeApp 的 Build 集合保持一致；
// 修改 sets.go 后执行 go generate ./internal/wire 以 wire 生成结果覆盖本文件。

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

package wire

import (
	"context"

	"roleplay-tutor-api/internal/application/dialogue"
	"roleplay-tutor-api/internal/application/scenario"
	"roleplay-tutor-api/internal/config"
	"roleplay-tutor-api/internal/domain/service"
	"roleplay-tutor-api/internal/interfaces/http/handler"
	"roleplay-tutor-api/internal/interfaces/http/router"
	"roleplay-tutor-api/internal/workflow/prompt"
)

// Injectors from wire.go:

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	client, cleanup, err := ProvideRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	healthHandler := ProvideHealthHandler(cfg, client)
	chatModelFactory := ProvideLLMFactory(cfg)
	completer := ProvideCompleter(cfg, chatModelFactory)
	registry := prompt.NewRegistry()
	builder := prompt.NewBuilder(registry)
	localeRegistry := service.NewLocaleRegistry()
	orchestrator := dialogue.NewOrchestrator(completer, builder, localeRegistry)
	chatHandler := handler.NewChatHandler(orchestrator)
	lifecycle := scenario.NewLifecycle(completer, builder, localeRegistry)
	scenarioHandler := handler.NewScenarioHandler(lifecycle)
	localeHandler := handler.NewLocaleHandler(localeRegistry)
	routerHandlers := router.RouterHandlers{
		Health:   healthHandler,
		Chat:     chatHandler,
		Scenario: scenarioHandler,
		Locale:   localeHandler,
	}
	rateLimiter := ProvideRateLimiter(client)
	routerRouter := router.New(cfg, routerHandlers, rateLimiter)
	return routerRouter, func() {
		cleanup()
	}, nil
}
