package entity

// ArcProgress 叙事弧阶段
type ArcProgress string

const (
	ArcBeginning  ArcProgress = "beginning"
	ArcRising     ArcProgress = "rising"
	ArcClimax     ArcProgress = "climax"
	ArcResolution ArcProgress = "resolution"
)

// ParseArcProgress 解析模型自报的阶段
func ParseArcProgress(s string) (ArcProgress, bool) {
	switch a := ArcProgress(s); a {
	case ArcBeginning, ArcRising, ArcClimax, ArcResolution:
		return a, true
	default:
		return "", false
	}
}

// ResolutionStatus 对话结束时的结局
type ResolutionStatus string

const (
	ResolutionSuccess      ResolutionStatus = "success"
	ResolutionAdapted      ResolutionStatus = "adapted"
	ResolutionGracefulFail ResolutionStatus = "graceful_fail"
)

// ParseResolutionStatus 解析结局状态
func ParseResolutionStatus(s string) (ResolutionStatus, bool) {
	switch r := ResolutionStatus(s); r {
	case ResolutionSuccess, ResolutionAdapted, ResolutionGracefulFail:
		return r, true
	default:
		return "", false
	}
}

// TutorTips 导师反馈，三个列表始终存在
type TutorTips struct {
	Corrections []string `json:"corrections"`
	Vocabulary  []string `json:"vocabulary"`
	Cultural    []string `json:"cultural"`
}

// EmptyTutorTips 返回三个空列表（序列化为 [] 而不是 null）
func EmptyTutorTips() TutorTips {
	return TutorTips{
		Corrections: []string{},
		Vocabulary:  []string{},
		Cultural:    []string{},
	}
}

// Normalize 把 nil 列表补成空列表
func (t TutorTips) Normalize() TutorTips {
	if t.Corrections == nil {
		t.Corrections = []string{}
	}
	if t.Vocabulary == nil {
		t.Vocabulary = []string{}
	}
	if t.Cultural == nil {
		t.Cultural = []string{}
	}
	return t
}

// DialogueTurnResult 单轮对话结果
type DialogueTurnResult struct {
	CharacterResponse    string            `json:"character_response"`
	TutorTips            TutorTips         `json:"tutor_tips"`
	ConversationComplete bool              `json:"conversation_complete"`
	ResolutionStatus     *ResolutionStatus `json:"resolution_status,omitempty"`
	ArcProgress          ArcProgress       `json:"arc_progress"`
}

// DegradedTurnResult 模型输出无法解析时的兜底结果
func DegradedTurnResult(raw string) *DialogueTurnResult {
	return &DialogueTurnResult{
		CharacterResponse:    raw,
		TutorTips:            EmptyTutorTips(),
		ConversationComplete: false,
		ArcProgress:          ArcBeginning,
	}
}
