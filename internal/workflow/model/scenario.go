package model

import "roleplay-tutor-api/internal/domain/entity"

// ScenarioGenerateInput 场景生成的 Prompt 输入
type ScenarioGenerateInput struct {
	Difficulty  entity.Difficulty
	Locale      LocaleContext
	Preferences string
	VetoReason  string
}

// ScenarioModifyInput 场景修改的 Prompt 输入
type ScenarioModifyInput struct {
	Original entity.ScenarioProposal
	Request  string
}
