// Package dialogue 驱动角色扮演对话：推导叙事阶段、构建 Prompt、调用模型并解析结果
package dialogue

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"roleplay-tutor-api/internal/domain/entity"
	"roleplay-tutor-api/internal/domain/service"
	workflowchain "roleplay-tutor-api/internal/workflow/chain"
	wfmodel "roleplay-tutor-api/internal/workflow/model"
	wfnode "roleplay-tutor-api/internal/workflow/node"
	workflowport "roleplay-tutor-api/internal/workflow/port"
	workflowprompt "roleplay-tutor-api/internal/workflow/prompt"
	apperrors "roleplay-tutor-api/pkg/errors"
	"roleplay-tutor-api/pkg/logger"
	"roleplay-tutor-api/pkg/metrics"
	"roleplay-tutor-api/pkg/tracer"
)

// rawPreviewRunes 日志中保留的模型输出长度
const rawPreviewRunes = 200

// Orchestrator 对话编排器，无状态，可并发使用
type Orchestrator struct {
	locales *service.LocaleRegistry
	chain   *workflowchain.CompletionChain[*wfmodel.DialogueTurnInput, *entity.DialogueTurnResult]
}

// NewOrchestrator 创建对话编排器
func NewOrchestrator(completer workflowport.Completer, builder *workflowprompt.Builder, locales *service.LocaleRegistry) *Orchestrator {
	return &Orchestrator{
		locales: locales,
		chain: workflowchain.NewCompletionChain(
			"dialogue", service.WorkflowDialogueTurn, completer,
			builder.DialogueTurn, parseTurn,
		),
	}
}

// ProcessTurn 处理一轮对话。
// 返回的 arc_progress 总是由 exchangeCount 推导，不采用模型自报的阶段。
func (o *Orchestrator) ProcessTurn(
	ctx context.Context,
	userMessage string,
	history []entity.Message,
	scenario entity.ScenarioProposal,
	exchangeCount int,
) (*entity.DialogueTurnResult, error) {
	ctx, span := tracer.Start(ctx, "dialogue.ProcessTurn")
	defer span.End()

	stage := workflowprompt.ArcStageFor(exchangeCount)
	span.SetAttributes(
		attribute.Int("dialogue.exchange_count", exchangeCount),
		attribute.Int("dialogue.history_len", len(history)),
		attribute.String("dialogue.arc_stage", string(stage)),
	)

	res, err := o.chain.Invoke(ctx, &wfmodel.DialogueTurnInput{
		UserMessage:   userMessage,
		History:       history,
		Scenario:      scenario,
		ExchangeCount: exchangeCount,
		Locale:        o.localeFor(scenario),
	})
	if err != nil {
		tracer.RecordError(span, err)
		metrics.DialogueTurnsTotal.WithLabelValues(string(stage), "false", "error").Inc()
		logger.Error(ctx, "dialogue turn failed", err, "exchange_count", exchangeCount)
		if !apperrors.IsAppError(err) {
			err = apperrors.ErrDialogueFailed.WithError(err)
		}
		return nil, err
	}

	if res.ArcProgress != stage {
		logger.Debug(ctx, "model arc_progress differs from derived stage",
			"model_arc_progress", string(res.ArcProgress),
			"arc_progress", string(stage),
		)
	}
	res.ArcProgress = stage

	if res.ConversationComplete && res.ResolutionStatus == nil {
		logger.Warn(ctx, "conversation completed without resolution_status", "exchange_count", exchangeCount)
	}

	metrics.DialogueTurnsTotal.WithLabelValues(string(stage), strconv.FormatBool(res.ConversationComplete), "success").Inc()
	span.SetAttributes(attribute.Bool("dialogue.complete", res.ConversationComplete))
	tracer.RecordError(span, nil)
	return res, nil
}

// localeFor 语言与国家名称优先取场景自带的值，缺失时按场景地区查询注册表
func (o *Orchestrator) localeFor(sc entity.ScenarioProposal) wfmodel.LocaleContext {
	resolved, _ := o.locales.Resolve(sc.Locale)
	loc := wfmodel.FromResolved(resolved)
	if name := strings.TrimSpace(sc.LanguageName); name != "" {
		loc.LanguageName = name
	}
	if country := strings.TrimSpace(sc.CountryName); country != "" {
		loc.CountryName = country
	}
	return loc
}

func parseTurn(ctx context.Context, _ *workflowprompt.Prompt, raw string) (*entity.DialogueTurnResult, error) {
	res, stage := DecodeTurn(raw)
	if stage != wfnode.StageDirect {
		metrics.DecodeFallbackTotal.WithLabelValues("dialogue_turn", string(stage)).Inc()
		logger.Warn(ctx, "model output needed decode fallback",
			"stage", string(stage),
			"raw_preview", wfnode.LogPreview(raw, rawPreviewRunes),
		)
	}
	return res, nil
}
