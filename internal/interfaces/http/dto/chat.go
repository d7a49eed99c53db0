package dto

import (
	"roleplay-tutor-api/internal/domain/entity"
)

// MessageDTO 对话历史中的一条消息
type MessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 对话请求
type ChatRequest struct {
	Message             string                  `json:"message" binding:"required"`
	ConversationHistory []MessageDTO            `json:"conversation_history"`
	Scenario            entity.ScenarioProposal `json:"scenario"`
	ExchangeCount       *int                    `json:"exchange_count" binding:"omitempty,min=0"`
}

// History 转换为领域消息；角色不合法的消息在 Prompt 构建时被丢弃
func (r *ChatRequest) History() []entity.Message {
	out := make([]entity.Message, 0, len(r.ConversationHistory))
	for _, m := range r.ConversationHistory {
		out = append(out, entity.Message{Role: entity.Role(m.Role), Content: m.Content})
	}
	return out
}

// Exchanges 已完成的交换次数，缺省为 0
func (r *ChatRequest) Exchanges() int {
	if r.ExchangeCount == nil {
		return 0
	}
	return *r.ExchangeCount
}

// ChatResponse 对话响应，与 DialogueTurnResult 字段一致
type ChatResponse struct {
	CharacterResponse    string                   `json:"character_response"`
	TutorTips            entity.TutorTips         `json:"tutor_tips"`
	ConversationComplete bool                     `json:"conversation_complete"`
	ResolutionStatus     *entity.ResolutionStatus `json:"resolution_status,omitempty"`
	ArcProgress          entity.ArcProgress       `json:"arc_progress"`
}

// NewChatResponse 由对话结果构建响应
func NewChatResponse(r *entity.DialogueTurnResult) ChatResponse {
	return ChatResponse{
		CharacterResponse:    r.CharacterResponse,
		TutorTips:            r.TutorTips.Normalize(),
		ConversationComplete: r.ConversationComplete,
		ResolutionStatus:     r.ResolutionStatus,
		ArcProgress:          r.ArcProgress,
	}
}
