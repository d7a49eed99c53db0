package service

import (
	"context"
	"strings"
)

// 工作流名称，用于 LLM 调用的指标与追踪标签
const (
	WorkflowDialogueTurn     = "dialogue_turn"
	WorkflowScenarioGenerate = "scenario_generate"
	WorkflowScenarioModify   = "scenario_modify"
)

const unknownLabel = "unknown"

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
)

func WithWorkflow(ctx context.Context, workflow string) context.Context {
	return withLabel(ctx, llmCtxKeyWorkflow, workflow)
}

func WithProvider(ctx context.Context, provider string) context.Context {
	return withLabel(ctx, llmCtxKeyProvider, provider)
}

func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	return WithProvider(WithWorkflow(ctx, workflow), provider)
}

// WorkflowFromContext 未设置时返回 "unknown"
func WorkflowFromContext(ctx context.Context) string {
	return labelFromContext(ctx, llmCtxKeyWorkflow)
}

// ProviderFromContext 未设置时返回 "unknown"
func ProviderFromContext(ctx context.Context) string {
	return labelFromContext(ctx, llmCtxKeyProvider)
}

func withLabel(ctx context.Context, key llmCtxKey, value string) context.Context {
	if ctx == nil {
		return nil
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func labelFromContext(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return unknownLabel
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return unknownLabel
	}
	return strings.TrimSpace(s)
}

// LLMUsageInput 一次模型调用的用量，UserID 为空表示匿名调用
type LLMUsageInput struct {
	UserID   string
	Workflow string
	Provider string
	Model    string

	PromptTokens     int
	CompletionTokens int
	DurationMs       int
}

// TotalTokens 输入与输出 token 之和
func (in LLMUsageInput) TotalTokens() int {
	return in.PromptTokens + in.CompletionTokens
}

// LLMUsageRecorder 用量记录端口，实现不应阻塞调用方
type LLMUsageRecorder interface {
	Record(ctx context.Context, in LLMUsageInput) error
}
