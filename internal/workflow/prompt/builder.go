// Package prompt 构建对话与场景生成的 Prompt
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"roleplay-tutor-api/internal/domain/entity"
	wfmodel "roleplay-tutor-api/internal/workflow/model"
)

// Prompt 发送给补全服务的系统指令与有序消息，消息总以 user 开头
type Prompt struct {
	ID          PromptID
	Instruction string
	Messages    []entity.Message
	// ArcStage 仅对话 Prompt 设置
	ArcStage entity.ArcProgress
}

// Builder 纯函数式的 Prompt 构建器，相同输入得到相同输出
type Builder struct {
	registry *Registry
}

func NewBuilder(registry *Registry) *Builder {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Builder{registry: registry}
}

// DialogueTurn 构建单轮对话 Prompt：历史经规整后，新消息追加在末尾
func (b *Builder) DialogueTurn(ctx context.Context, in *wfmodel.DialogueTurnInput) (*Prompt, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.UserMessage) == "" {
		return nil, fmt.Errorf("user message is required")
	}

	tpl, err := b.registry.ChatTemplate(PromptDialogueTurnV1)
	if err != nil {
		return nil, err
	}

	exchangeCount := max(in.ExchangeCount, 0)
	stage := ArcStageFor(exchangeCount)

	history := NormalizeHistory(in.History)
	msgs := make([]*schema.Message, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, toSchemaMessage(m))
	}
	msgs = append(msgs, schema.UserMessage(in.UserMessage))

	sc := in.Scenario
	vars := map[string]any{
		"language_name":         orDefault(in.Locale.LanguageName, "the target language"),
		"country_name":          orDefault(in.Locale.CountryName, "the country where it is spoken"),
		"character_name":        orDefault(sc.CharacterName, "a local character"),
		"character_personality": orDefault(sc.CharacterPersonality, "friendly and patient"),
		"setting":               strings.TrimSpace(sc.Setting),
		"setting_description":   strings.TrimSpace(sc.SettingDescription),
		"objective":             strings.TrimSpace(sc.Objective),
		"conflict":              strings.TrimSpace(sc.Conflict),
		"opening_line":          strings.TrimSpace(sc.OpeningLine),
		"difficulty":            orDefault(sc.Difficulty, string(entity.DifficultyA2)),
		"hints":                 joinHints(sc.Hints),
		"exchange_count":        exchangeCount,
		"arc_stage":             string(stage),
		"arc_guidance":          ArcGuidance(stage),
		historyKey:              msgs,
	}

	out, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("format dialogue prompt: %w", err)
	}
	p, err := toPrompt(PromptDialogueTurnV1, out)
	if err != nil {
		return nil, err
	}
	p.ArcStage = stage
	return p, nil
}

// ScenarioGeneration 构建场景生成 Prompt
func (b *Builder) ScenarioGeneration(ctx context.Context, in *wfmodel.ScenarioGenerateInput) (*Prompt, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	tpl, err := b.registry.ChatTemplate(PromptScenarioGenerateV1)
	if err != nil {
		return nil, err
	}

	vars := map[string]any{
		"language_name": in.Locale.LanguageName,
		"country_name":  in.Locale.CountryName,
		"difficulty":    orDefault(string(in.Difficulty), string(entity.DifficultyA2)),
		"preferences":   strings.TrimSpace(in.Preferences),
		"veto_reason":   strings.TrimSpace(in.VetoReason),
	}

	out, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("format scenario prompt: %w", err)
	}
	return toPrompt(PromptScenarioGenerateV1, out)
}

// ScenarioModification 构建场景修改 Prompt，原场景的全部字段回显给模型
func (b *Builder) ScenarioModification(ctx context.Context, in *wfmodel.ScenarioModifyInput) (*Prompt, error) {
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Request) == "" {
		return nil, fmt.Errorf("modification request is required")
	}

	tpl, err := b.registry.ChatTemplate(PromptScenarioModifyV1)
	if err != nil {
		return nil, err
	}

	o := in.Original
	vars := map[string]any{
		"language_name":         orDefault(o.LanguageName, "unspecified language"),
		"country_name":          orDefault(o.CountryName, "unspecified country"),
		"setting":               o.Setting,
		"setting_description":   o.SettingDescription,
		"objective":             o.Objective,
		"conflict":              o.Conflict,
		"difficulty":            o.Difficulty,
		"opening_line":          o.OpeningLine,
		"character_name":        o.CharacterName,
		"character_personality": o.CharacterPersonality,
		"hints":                 joinHints(o.Hints),
		"locale":                o.Locale,
		"modification_request":  strings.TrimSpace(in.Request),
	}

	out, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("format modification prompt: %w", err)
	}
	return toPrompt(PromptScenarioModifyV1, out)
}

func toPrompt(id PromptID, msgs []*schema.Message) (*Prompt, error) {
	p := &Prompt{ID: id, Messages: make([]entity.Message, 0, len(msgs))}
	var system []string
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			system = append(system, m.Content)
		case schema.User:
			p.Messages = append(p.Messages, entity.NewUserMessage(m.Content))
		case schema.Assistant:
			p.Messages = append(p.Messages, entity.NewAssistantMessage(m.Content))
		}
	}
	p.Instruction = strings.Join(system, "\n\n")

	if len(p.Messages) == 0 || p.Messages[0].Role != entity.RoleUser {
		return nil, fmt.Errorf("prompt %s must start with a user message", id)
	}
	return p, nil
}

func toSchemaMessage(m entity.Message) *schema.Message {
	if m.Role == entity.RoleAssistant {
		return schema.AssistantMessage(m.Content, nil)
	}
	return schema.UserMessage(m.Content)
}

func joinHints(hints []string) string {
	out := make([]string, 0, len(hints))
	for _, h := range hints {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return strings.Join(out, "; ")
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
