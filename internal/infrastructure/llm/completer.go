package llm

import (
	"context"
	"errors"
	"strings"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"roleplay-tutor-api/internal/config"
	"roleplay-tutor-api/internal/domain/entity"
	llmctx "roleplay-tutor-api/internal/domain/service"
	workflownode "roleplay-tutor-api/internal/workflow/node"
	workflowport "roleplay-tutor-api/internal/workflow/port"
	apperrors "roleplay-tutor-api/pkg/errors"
)

// EinoCompleter 基于 Eino ChatModel 的补全实现，单次调用、不重试
type EinoCompleter struct {
	factory   workflowport.ChatModelFactory
	provider  string
	maxTokens int
	jsonMode  bool
}

// NewEinoCompleter 使用默认提供商创建补全客户端
func NewEinoCompleter(factory workflowport.ChatModelFactory, cfg *config.LLMConfig) *EinoCompleter {
	p, name, _ := cfg.Provider("")
	return &EinoCompleter{
		factory:   factory,
		provider:  name,
		maxTokens: maxTokensFor(p),
		jsonMode:  p.JSONMode,
	}
}

// Complete 发送系统指令与消息，返回模型文本。
// 网络或服务端错误映射为 CodeLLMProviderError，响应无法解析或为空映射为 CodeLLMCallFailed。
func (c *EinoCompleter) Complete(ctx context.Context, instruction string, messages []entity.Message) (string, error) {
	ctx = llmctx.WithProvider(ctx, c.provider)

	chatModel, err := c.factory.Get(ctx, c.provider)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMProviderError, "LLM provider unavailable")
	}

	out, err := chatModel.Generate(ctx, toSchemaMessages(instruction, messages), c.options()...)
	if err != nil {
		return "", classifyError(err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", apperrors.New(apperrors.CodeLLMCallFailed, "empty llm response")
	}
	return out.Content, nil
}

func (c *EinoCompleter) options() []model.Option {
	opts := []model.Option{model.WithMaxTokens(c.maxTokens)}
	if c.jsonMode {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{"type": "json_object"},
		}))
	}
	return opts
}

func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.CodeLLMProviderError, "LLM call interrupted")
	}
	if workflownode.IsMalformedResponseError(err) {
		return apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "malformed LLM response")
	}
	return apperrors.Wrap(err, apperrors.CodeLLMProviderError, "LLM provider error")
}

func toSchemaMessages(instruction string, messages []entity.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages)+1)
	if strings.TrimSpace(instruction) != "" {
		out = append(out, schema.SystemMessage(instruction))
	}
	for _, m := range messages {
		switch m.Role {
		case entity.RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}
