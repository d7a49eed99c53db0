package dto

import (
	"roleplay-tutor-api/internal/domain/entity"
)

// ScenarioRequest 场景生成请求
type ScenarioRequest struct {
	Difficulty  string `json:"difficulty"`
	Preferences string `json:"preferences"`
	VetoReason  string `json:"veto_reason"`
	Locale      string `json:"locale"`
}

// ModifyScenarioRequest 场景修改请求
type ModifyScenarioRequest struct {
	OriginalScenario    entity.ScenarioProposal `json:"original_scenario"`
	ModificationRequest string                  `json:"modification_request" binding:"required"`
}

// ScenarioResponse 场景响应
type ScenarioResponse struct {
	Scenario entity.ScenarioProposal `json:"scenario"`
}

// NewScenarioResponse hints 为 nil 时输出空列表
func NewScenarioResponse(sc entity.ScenarioProposal) ScenarioResponse {
	if sc.Hints == nil {
		sc.Hints = []string{}
	}
	return ScenarioResponse{Scenario: sc}
}
