package scenario

import (
	"roleplay-tutor-api/internal/domain/entity"
	wfnode "roleplay-tutor-api/internal/workflow/node"
)

type proposalPayload struct {
	Setting              wfnode.FlexibleString  `json:"setting"`
	SettingDescription   wfnode.FlexibleString  `json:"setting_description"`
	Objective            wfnode.FlexibleString  `json:"objective"`
	Conflict             wfnode.FlexibleString  `json:"conflict"`
	Difficulty           wfnode.FlexibleString  `json:"difficulty"`
	OpeningLine          wfnode.FlexibleString  `json:"opening_line"`
	CharacterName        wfnode.FlexibleString  `json:"character_name"`
	CharacterPersonality wfnode.FlexibleString  `json:"character_personality"`
	Hints                wfnode.FlexibleStrings `json:"hints"`
}

// DecodeScenario 解析模型返回的场景 JSON。
// 地区字段不从模型输出读取，由调用方回填。
func DecodeScenario(raw string) (entity.ScenarioProposal, wfnode.DecodeStage) {
	var p proposalPayload
	stage, err := wfnode.DecodeJSONObject(raw, &p)
	if err != nil {
		return entity.ScenarioProposal{}, wfnode.StageFailed
	}
	return entity.ScenarioProposal{
		Setting:              p.Setting.String(),
		SettingDescription:   p.SettingDescription.String(),
		Objective:            p.Objective.String(),
		Conflict:             p.Conflict.String(),
		Difficulty:           p.Difficulty.String(),
		OpeningLine:          p.OpeningLine.String(),
		CharacterName:        p.CharacterName.String(),
		CharacterPersonality: p.CharacterPersonality.String(),
		Hints:                p.Hints.Strings(),
	}, stage
}
