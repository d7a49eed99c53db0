package dialogue

import (
	"bytes"
	"encoding/json"

	"roleplay-tutor-api/internal/domain/entity"
	wfnode "roleplay-tutor-api/internal/workflow/node"
)

// turnPayload 模型返回的 JSON 结构，字段类型尽量宽松
type turnPayload struct {
	CharacterResponse    wfnode.FlexibleString `json:"character_response"`
	TutorTips            tutorTipsPayload      `json:"tutor_tips"`
	ConversationComplete wfnode.FlexibleBool   `json:"conversation_complete"`
	ResolutionStatus     wfnode.FlexibleString `json:"resolution_status"`
	ArcProgress          wfnode.FlexibleString `json:"arc_progress"`
}

type tutorTipsPayload struct {
	Corrections wfnode.FlexibleStrings `json:"corrections"`
	Vocabulary  wfnode.FlexibleStrings `json:"vocabulary"`
	Cultural    wfnode.FlexibleStrings `json:"cultural"`
}

// UnmarshalJSON tutor_tips 不是对象时三个列表都取空
func (t *tutorTipsPayload) UnmarshalJSON(b []byte) error {
	*t = tutorTipsPayload{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	type plain tutorTipsPayload
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	*t = tutorTipsPayload(p)
	return nil
}

// DecodeTurn 将模型原始输出解析为对话结果，不会失败。
// 依次尝试整体解析与截取解析；都失败时整段文本作为角色回复返回。
func DecodeTurn(raw string) (*entity.DialogueTurnResult, wfnode.DecodeStage) {
	var p turnPayload
	stage, err := wfnode.DecodeJSONObject(raw, &p)
	if err != nil {
		return entity.DegradedTurnResult(raw), wfnode.StageFailed
	}

	res := &entity.DialogueTurnResult{
		CharacterResponse: string(p.CharacterResponse),
		TutorTips: entity.TutorTips{
			Corrections: p.TutorTips.Corrections.Strings(),
			Vocabulary:  p.TutorTips.Vocabulary.Strings(),
			Cultural:    p.TutorTips.Cultural.Strings(),
		},
		ConversationComplete: bool(p.ConversationComplete),
		ArcProgress:          entity.ArcBeginning,
	}
	if arc, ok := entity.ParseArcProgress(p.ArcProgress.String()); ok {
		res.ArcProgress = arc
	}
	// 结局状态只在对话结束时有效，非法取值视为缺省
	if res.ConversationComplete {
		if rs, ok := entity.ParseResolutionStatus(p.ResolutionStatus.String()); ok {
			res.ResolutionStatus = &rs
		}
	}
	return res, stage
}
