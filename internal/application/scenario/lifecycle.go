// Package scenario 负责场景提案的生成与修改
package scenario

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

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

const (
	operationGenerate = "generate"
	operationModify   = "modify"

	rawPreviewRunes = 200
)

// Lifecycle 场景生命周期服务
type Lifecycle struct {
	locales  *service.LocaleRegistry
	generate *workflowchain.CompletionChain[*wfmodel.ScenarioGenerateInput, entity.ScenarioProposal]
	modify   *workflowchain.CompletionChain[*wfmodel.ScenarioModifyInput, entity.ScenarioProposal]
}

// NewLifecycle 创建场景服务
func NewLifecycle(completer workflowport.Completer, builder *workflowprompt.Builder, locales *service.LocaleRegistry) *Lifecycle {
	return &Lifecycle{
		locales: locales,
		generate: workflowchain.NewCompletionChain(
			"scenario_generate", service.WorkflowScenarioGenerate, completer,
			builder.ScenarioGeneration, parseProposal(operationGenerate),
		),
		modify: workflowchain.NewCompletionChain(
			"scenario_modify", service.WorkflowScenarioModify, completer,
			builder.ScenarioModification, parseProposal(operationModify),
		),
	}
}

// Generate 生成新场景；无法识别的地区回退到 fr-FR
func (l *Lifecycle) Generate(ctx context.Context, difficulty entity.Difficulty, locale, preferences, vetoReason string) (entity.ScenarioProposal, error) {
	ctx, span := tracer.Start(ctx, "scenario.Generate")
	defer span.End()
	start := time.Now()

	if difficulty == "" {
		difficulty = entity.DifficultyA2
	}
	resolved, known := l.locales.Resolve(locale)
	if !known {
		logger.Warn(ctx, "unknown locale, using default", "requested_locale", locale, "locale", resolved.Locale)
	}
	span.SetAttributes(
		attribute.String("scenario.locale", resolved.Locale),
		attribute.String("scenario.difficulty", string(difficulty)),
	)

	sc, err := l.generate.Invoke(ctx, &wfmodel.ScenarioGenerateInput{
		Difficulty:  difficulty,
		Locale:      wfmodel.FromResolved(resolved),
		Preferences: preferences,
		VetoReason:  vetoReason,
	})
	if err != nil {
		return entity.ScenarioProposal{}, l.fail(ctx, span, operationGenerate, start, err)
	}

	sc = sc.WithLocale(resolved)
	sc.Difficulty = difficultyOr(sc.Difficulty, difficulty)

	l.succeed(ctx, span, operationGenerate, start, sc)
	return sc, nil
}

// Modify 按请求修改已有场景，地区字段始终沿用原场景
func (l *Lifecycle) Modify(ctx context.Context, original entity.ScenarioProposal, request string) (entity.ScenarioProposal, error) {
	ctx, span := tracer.Start(ctx, "scenario.Modify")
	defer span.End()
	start := time.Now()

	span.SetAttributes(attribute.String("scenario.locale", original.Locale))

	sc, err := l.modify.Invoke(ctx, &wfmodel.ScenarioModifyInput{
		Original: original,
		Request:  request,
	})
	if err != nil {
		return entity.ScenarioProposal{}, l.fail(ctx, span, operationModify, start, err)
	}

	sc.Locale = original.Locale
	sc.LanguageName = original.LanguageName
	sc.CountryName = original.CountryName
	if d, ok := entity.ParseDifficulty(sc.Difficulty); ok {
		sc.Difficulty = string(d)
	} else {
		sc.Difficulty = original.Difficulty
	}

	l.succeed(ctx, span, operationModify, start, sc)
	return sc, nil
}

func (l *Lifecycle) succeed(ctx context.Context, span trace.Span, op string, start time.Time, sc entity.ScenarioProposal) {
	metrics.ScenarioOperationsTotal.WithLabelValues(op, "success").Inc()
	metrics.ScenarioOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("scenario.setting", sc.Setting))
	tracer.RecordError(span, nil)
	logger.Info(ctx, "scenario ready",
		"operation", op,
		"locale", sc.Locale,
		"difficulty", sc.Difficulty,
		"setting", sc.Setting,
	)
}

func (l *Lifecycle) fail(ctx context.Context, span trace.Span, op string, start time.Time, err error) error {
	metrics.ScenarioOperationsTotal.WithLabelValues(op, "error").Inc()
	metrics.ScenarioOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	tracer.RecordError(span, err)
	logger.Error(ctx, "scenario operation failed", err, "operation", op)
	if !apperrors.IsAppError(err) {
		err = apperrors.ErrGenerationFailed.WithError(err)
	}
	return err
}

// difficultyOr 模型给出的等级无效时使用 fallback
func difficultyOr(fromModel string, fallback entity.Difficulty) string {
	if d, ok := entity.ParseDifficulty(fromModel); ok {
		return string(d)
	}
	return string(fallback)
}

// parseProposal 解码场景并校验 setting；hints 缺失时为空列表
func parseProposal(op string) workflowchain.ParseFunc[entity.ScenarioProposal] {
	return func(ctx context.Context, _ *workflowprompt.Prompt, raw string) (entity.ScenarioProposal, error) {
		sc, stage := DecodeScenario(raw)
		if stage != wfnode.StageDirect {
			metrics.DecodeFallbackTotal.WithLabelValues("scenario_"+op, string(stage)).Inc()
			logger.Warn(ctx, "model output needed decode fallback",
				"operation", op,
				"stage", string(stage),
				"raw_preview", wfnode.LogPreview(raw, rawPreviewRunes),
			)
		}
		if sc.Setting == "" {
			return entity.ScenarioProposal{}, apperrors.ErrGenerationFailed.WithDetail("scenario has no setting")
		}
		return sc, nil
	}
}
