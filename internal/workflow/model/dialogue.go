package model

import "roleplay-tutor-api/internal/domain/entity"

// DialogueTurnInput 单轮对话的 Prompt 输入
type DialogueTurnInput struct {
	UserMessage   string
	History       []entity.Message
	Scenario      entity.ScenarioProposal
	ExchangeCount int
	Locale        LocaleContext
}
