// Package callback 注册 eino 全局回调：每次 ChatModel 调用的指标、span 与用量记录
package callback

import (
	"context"
	"sync"

	einocallbacks "github.com/cloudwego/eino/callbacks"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"

	"roleplay-tutor-api/internal/domain/service"
	"roleplay-tutor-api/pkg/logger"
)

var initOnce sync.Once

// Init 进程内注册一次；usageRecorder 为 nil 时只写日志
func Init(usageRecorder service.LLMUsageRecorder) {
	if usageRecorder == nil {
		usageRecorder = NewLogUsageRecorder()
	}
	initOnce.Do(func() {
		h := cbtemplate.NewHandlerHelper().
			ChatModel(newChatModelCallbackHandler(usageRecorder)).
			Handler()
		einocallbacks.AppendGlobalHandlers(h)
	})
}

// LogUsageRecorder 以结构化日志记录每次调用的 token 用量
type LogUsageRecorder struct{}

func NewLogUsageRecorder() *LogUsageRecorder {
	return &LogUsageRecorder{}
}

func (r *LogUsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	logger.Info(ctx, "llm usage",
		"workflow", in.Workflow,
		"provider", in.Provider,
		"model", in.Model,
		"prompt_tokens", in.PromptTokens,
		"completion_tokens", in.CompletionTokens,
		"total_tokens", in.TotalTokens(),
		"duration_ms", in.DurationMs,
		"anonymous", in.UserID == "",
	)
	return nil
}
