// Package wire 提供依赖注入配置
package wire

import (
	"github.com/google/wire"

	"roleplay-tutor-api/internal/application/dialogue"
	"roleplay-tutor-api/internal/application/scenario"
	"roleplay-tutor-api/internal/domain/service"
	"roleplay-tutor-api/internal/interfaces/http/handler"
	"roleplay-tutor-api/internal/interfaces/http/router"
	workflowprompt "roleplay-tutor-api/internal/workflow/prompt"
)

// RedisSet Redis 提供者集合，限流关闭时不连接
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideRateLimiter,
)

// LLMSet 模型与补全客户端
var LLMSet = wire.NewSet(
	ProvideLLMFactory,
	ProvideCompleter,
)

// TutorSet 领域服务与编排
var TutorSet = wire.NewSet(
	service.NewLocaleRegistry,
	workflowprompt.NewRegistry,
	workflowprompt.NewBuilder,
	dialogue.NewOrchestrator,
	scenario.NewLifecycle,
	wire.Bind(new(handler.DialogueService), new(*dialogue.Orchestrator)),
	wire.Bind(new(handler.ScenarioService), new(*scenario.Lifecycle)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewChatHandler,
	handler.NewScenarioHandler,
	handler.NewLocaleHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.New,
)
