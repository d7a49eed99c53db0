package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"roleplay-tutor-api/internal/domain/entity"
	"roleplay-tutor-api/internal/domain/service"
	"roleplay-tutor-api/internal/interfaces/http/dto"
	"roleplay-tutor-api/pkg/logger"
)

// ScenarioService 场景生成与修改能力
type ScenarioService interface {
	Generate(ctx context.Context, difficulty entity.Difficulty, locale, preferences, vetoReason string) (entity.ScenarioProposal, error)
	Modify(ctx context.Context, original entity.ScenarioProposal, request string) (entity.ScenarioProposal, error)
}

// ScenarioHandler 场景处理器
type ScenarioHandler struct {
	scenarios ScenarioService
}

// NewScenarioHandler 创建场景处理器
func NewScenarioHandler(scenarios ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{scenarios: scenarios}
}

// Generate 生成场景
// @Summary 生成场景
// @Tags Scenario
// @Accept json
// @Produce json
// @Param body body dto.ScenarioRequest true "生成请求"
// @Success 200 {object} dto.ScenarioResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/scenario/generate [post]
func (h *ScenarioHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	difficulty := entity.DifficultyA2
	if strings.TrimSpace(req.Difficulty) != "" {
		d, ok := entity.ParseDifficulty(req.Difficulty)
		if !ok {
			dto.BadRequest(c, "difficulty must be one of A1, A2, B1, B2, C1, C2")
			return
		}
		difficulty = d
	}
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = service.DefaultLocale
	}

	logger.Info(ctx, "scenario generation request",
		"user_id", userLabel(c),
		"difficulty", string(difficulty),
		"locale", locale,
		"has_veto", req.VetoReason != "",
	)

	sc, err := h.scenarios.Generate(ctx, difficulty, locale, req.Preferences, req.VetoReason)
	if err != nil {
		respondFailure(c, "scenario generation", err, msgGenerateFailed)
		return
	}

	dto.OK(c, dto.NewScenarioResponse(sc))
}

// Modify 修改场景
// @Summary 修改场景
// @Tags Scenario
// @Accept json
// @Produce json
// @Param body body dto.ModifyScenarioRequest true "修改请求"
// @Success 200 {object} dto.ScenarioResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/scenario/modify [post]
func (h *ScenarioHandler) Modify(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ModifyScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ModificationRequest) == "" {
		dto.BadRequest(c, "modification_request is required")
		return
	}

	logger.Info(ctx, "scenario modification request",
		"user_id", userLabel(c),
		"locale", req.OriginalScenario.Locale,
	)

	sc, err := h.scenarios.Modify(ctx, req.OriginalScenario, req.ModificationRequest)
	if err != nil {
		respondFailure(c, "scenario modification", err, msgModifyFailed)
		return
	}

	dto.OK(c, dto.NewScenarioResponse(sc))
}
