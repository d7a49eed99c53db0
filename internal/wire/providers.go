package wire

import (
	"context"

	"roleplay-tutor-api/internal/config"
	"roleplay-tutor-api/internal/infrastructure/llm"
	"roleplay-tutor-api/internal/infrastructure/persistence/redis"
	"roleplay-tutor-api/internal/interfaces/http/handler"
	"roleplay-tutor-api/internal/interfaces/http/middleware"
	workflowport "roleplay-tutor-api/internal/workflow/port"
	"roleplay-tutor-api/pkg/logger"
)

// ProvideRedisClient 仅在启用限流时连接 Redis，否则返回 nil
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Security.RateLimit.Enabled {
		logger.Info(ctx, "rate limiting disabled, skipping redis")
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRateLimiter 没有 Redis 时返回 nil 接口
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideLLMFactory 提供 LLM 模型工厂
func ProvideLLMFactory(cfg *config.Config) workflowport.ChatModelFactory {
	return llm.NewEinoFactory(cfg)
}

// ProvideCompleter 提供补全客户端
func ProvideCompleter(cfg *config.Config, factory workflowport.ChatModelFactory) workflowport.Completer {
	return llm.NewEinoCompleter(factory, &cfg.LLM)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, client *redis.Client) *handler.HealthHandler {
	if client == nil {
		return handler.NewHealthHandler(cfg.App.Version, nil)
	}
	return handler.NewHealthHandler(cfg.App.Version, client)
}
