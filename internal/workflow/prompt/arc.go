package prompt

import (
	"roleplay-tutor-api/internal/domain/entity"
)

// ArcStageFor 按已完成的交换次数推导叙事阶段：0-2 beginning，3-5 rising，6-8 climax，其余 resolution
func ArcStageFor(exchangeCount int) entity.ArcProgress {
	switch {
	case exchangeCount <= 2:
		return entity.ArcBeginning
	case exchangeCount <= 5:
		return entity.ArcRising
	case exchangeCount <= 8:
		return entity.ArcClimax
	default:
		return entity.ArcResolution
	}
}

var arcGuidance = map[entity.ArcProgress]string{
	entity.ArcBeginning: "Establish the scene and your character. Greet the learner, make the situation clear and let them state what they want. " +
		"Do not bring in the complication yet.",
	entity.ArcRising: "Introduce the complication so the learner has to ask questions, negotiate or explain themselves. " +
		"Raise the stakes gradually and keep the objective within reach.",
	entity.ArcClimax: "Bring the complication to its peak. The learner must use what they have practised to overcome it. " +
		"Do not resolve it for them.",
	entity.ArcResolution: "Steer the conversation to a natural ending now. Resolve the situation according to how the learner handled it, " +
		"close politely in character and set conversation_complete to true.",
}

// ArcGuidance 返回阶段对应的叙事指引
func ArcGuidance(stage entity.ArcProgress) string {
	return arcGuidance[stage]
}
