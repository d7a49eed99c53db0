// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"roleplay-tutor-api/internal/domain/entity"
	"roleplay-tutor-api/internal/interfaces/http/dto"
	"roleplay-tutor-api/pkg/logger"
)

// DialogueService 对话编排能力
type DialogueService interface {
	ProcessTurn(ctx context.Context, userMessage string, history []entity.Message, scenario entity.ScenarioProposal, exchangeCount int) (*entity.DialogueTurnResult, error)
}

// ChatHandler 对话处理器
type ChatHandler struct {
	dialogue DialogueService
}

// NewChatHandler 创建对话处理器
func NewChatHandler(dialogue DialogueService) *ChatHandler {
	return &ChatHandler{dialogue: dialogue}
}

// Chat 处理一轮角色扮演对话
// @Summary 对话
// @Description 以场景角色回复学习者，并给出导师反馈
// @Tags Dialogue
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "对话请求"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		dto.BadRequest(c, "message must not be blank")
		return
	}

	logger.Info(ctx, "chat request",
		"user_id", userLabel(c),
		"locale", req.Scenario.Locale,
		"exchange_count", req.Exchanges(),
		"history_len", len(req.ConversationHistory),
	)

	res, err := h.dialogue.ProcessTurn(ctx, req.Message, req.History(), req.Scenario, req.Exchanges())
	if err != nil {
		respondFailure(c, "chat", err, msgChatFailed)
		return
	}

	dto.OK(c, dto.NewChatResponse(res))
}
