// Package chain 用 eino compose 串联 Prompt 构建、模型补全与输出解析
package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/compose"

	llmctx "roleplay-tutor-api/internal/domain/service"
	workflowport "roleplay-tutor-api/internal/workflow/port"
	workflowprompt "roleplay-tutor-api/internal/workflow/prompt"
)

// BuildFunc 由输入构建 Prompt
type BuildFunc[In any] func(ctx context.Context, in In) (*workflowprompt.Prompt, error)

// ParseFunc 将模型原始输出解析为结果；prompt 为本次调用使用的 Prompt
type ParseFunc[Out any] func(ctx context.Context, p *workflowprompt.Prompt, raw string) (Out, error)

// CompletionChain template -> llm -> parse，每次调用恰好一次补全请求
type CompletionChain[In, Out any] struct {
	name      string
	workflow  string
	completer workflowport.Completer
	build     BuildFunc[In]
	parse     ParseFunc[Out]

	chainOnce sync.Once
	chain     compose.Runnable[*completionRun[In], Out]
	chainErr  error
}

// completionRun 单次调用的状态；节点失败时保留原始错误，避免被 compose 包装后丢失类型
type completionRun[In any] struct {
	In     In
	Prompt *workflowprompt.Prompt
	Raw    string
	err    error
}

func (r *completionRun[In]) fail(err error) error {
	r.err = err
	return err
}

// NewCompletionChain 创建补全链；name 用作节点名前缀，workflow 用作 LLM 指标标签
func NewCompletionChain[In, Out any](
	name, workflow string,
	completer workflowport.Completer,
	build BuildFunc[In],
	parse ParseFunc[Out],
) *CompletionChain[In, Out] {
	return &CompletionChain[In, Out]{
		name:      name,
		workflow:  workflow,
		completer: completer,
		build:     build,
		parse:     parse,
	}
}

// Invoke 执行一次完整的补全流程
func (c *CompletionChain[In, Out]) Invoke(ctx context.Context, in In) (Out, error) {
	var zero Out
	if c == nil || c.completer == nil {
		return zero, fmt.Errorf("completer not configured")
	}

	chain, err := c.getChain()
	if err != nil {
		return zero, err
	}

	run := &completionRun[In]{In: in}
	out, err := chain.Invoke(ctx, run)
	if err != nil {
		if run.err != nil {
			return zero, run.err
		}
		return zero, err
	}
	return out, nil
}

func (c *CompletionChain[In, Out]) getChain() (compose.Runnable[*completionRun[In], Out], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *CompletionChain[In, Out]) buildChain(ctx context.Context) (compose.Runnable[*completionRun[In], Out], error) {
	chain := compose.NewChain[*completionRun[In], Out]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, run *completionRun[In]) (*completionRun[In], error) {
			if run == nil {
				return nil, fmt.Errorf("state is nil")
			}
			p, err := c.build(ctx, run.In)
			if err != nil {
				return nil, run.fail(err)
			}
			run.Prompt = p
			return run, nil
		}),
		compose.WithNodeName(c.name+".template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, run *completionRun[In]) (*completionRun[In], error) {
			if run == nil || run.Prompt == nil {
				return nil, fmt.Errorf("state is nil")
			}
			ctx = llmctx.WithWorkflow(ctx, c.workflow)
			raw, err := c.completer.Complete(ctx, run.Prompt.Instruction, run.Prompt.Messages)
			if err != nil {
				return nil, run.fail(err)
			}
			run.Raw = raw
			return run, nil
		}),
		compose.WithNodeName(c.name+".llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, run *completionRun[In]) (Out, error) {
			var zero Out
			if run == nil {
				return zero, fmt.Errorf("state is nil")
			}
			out, err := c.parse(ctx, run.Prompt, run.Raw)
			if err != nil {
				return zero, run.fail(err)
			}
			return out, nil
		}),
		compose.WithNodeName(c.name+".parse"),
	)

	return chain.Compile(ctx)
}
