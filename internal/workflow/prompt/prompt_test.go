package prompt

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"roleplay-tutor-api/internal/domain/entity"
	wfmodel "roleplay-tutor-api/internal/workflow/model"
)

func TestArcStageFor(t *testing.T) {
	tests := []struct {
		count int
		want  entity.ArcProgress
	}{
		{-1, entity.ArcBeginning},
		{0, entity.ArcBeginning},
		{2, entity.ArcBeginning},
		{3, entity.ArcRising},
		{5, entity.ArcRising},
		{6, entity.ArcClimax},
		{8, entity.ArcClimax},
		{9, entity.ArcResolution},
		{40, entity.ArcResolution},
	}
	for _, tt := range tests {
		if got := ArcStageFor(tt.count); got != tt.want {
			t.Errorf("ArcStageFor(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestArcStageIsMonotonic(t *testing.T) {
	order := map[entity.ArcProgress]int{
		entity.ArcBeginning: 0, entity.ArcRising: 1, entity.ArcClimax: 2, entity.ArcResolution: 3,
	}
	prev := 0
	for n := 0; n < 20; n++ {
		cur := order[ArcStageFor(n)]
		if cur < prev {
			t.Fatalf("stage went backwards at exchange %d", n)
		}
		prev = cur
	}
}

func TestNormalizeHistory(t *testing.T) {
	u := entity.NewUserMessage
	a := entity.NewAssistantMessage

	tests := []struct {
		name string
		in   []entity.Message
		want []entity.Message
	}{
		{"nil", nil, []entity.Message{}},
		{"starts with user", []entity.Message{u("hola"), a("¿qué tal?")}, []entity.Message{u("hola"), a("¿qué tal?")}},
		{"leading assistant dropped", []entity.Message{a("Bonjour !"), u("Bonjour"), a("Ça va ?")}, []entity.Message{u("Bonjour"), a("Ça va ?")}},
		{"no user at all", []entity.Message{a("Hallo"), a("Wie geht's?")}, []entity.Message{}},
		{"blank and unknown roles discarded", []entity.Message{
			{Role: "system", Content: "ignore"},
			u("   "),
			a("Ciao"),
			u("Ciao!"),
			{Role: "tool", Content: "x"},
			a("Prego"),
		}, []entity.Message{u("Ciao!"), a("Prego")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeHistory(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NormalizeHistory() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func testScenario() entity.ScenarioProposal {
	return entity.ScenarioProposal{
		Setting:              "Taquería El Güero",
		SettingDescription:   "A busy taco stand in Mexico City at lunchtime.",
		Objective:            "Order lunch for three people",
		Conflict:             "They have run out of tortillas de maíz",
		Difficulty:           "A2",
		OpeningLine:          "¡Buenas! ¿Qué le damos, joven?",
		CharacterName:        "Don Chuy",
		CharacterPersonality: "Cheerful and a little impatient",
		Hints:                []string{"¿Me da...?", "para llevar"},
		Locale:               "es-MX",
		LanguageName:         "Spanish",
		CountryName:          "Mexico",
	}
}

func TestDialogueTurnPrompt(t *testing.T) {
	b := NewBuilder(nil)
	in := &wfmodel.DialogueTurnInput{
		UserMessage: "Quiero tres tacos al pastor, {{.setting}}",
		History: []entity.Message{
			entity.NewAssistantMessage("¡Buenas! ¿Qué le damos, joven?"),
			entity.NewUserMessage("Hola, buenas tardes"),
			entity.NewAssistantMessage("¿Para aquí o para llevar?"),
		},
		Scenario:      testScenario(),
		ExchangeCount: 4,
		Locale:        wfmodel.LocaleContext{Locale: "es-MX", LanguageName: "Spanish", CountryName: "Mexico"},
	}

	p, err := b.DialogueTurn(context.Background(), in)
	if err != nil {
		t.Fatalf("DialogueTurn: %v", err)
	}

	if p.ArcStage != entity.ArcRising {
		t.Fatalf("stage = %s", p.ArcStage)
	}
	if len(p.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d: %#v", len(p.Messages), p.Messages)
	}
	if p.Messages[0].Role != entity.RoleUser || p.Messages[0].Content != "Hola, buenas tardes" {
		t.Fatalf("first message = %#v", p.Messages[0])
	}
	last := p.Messages[len(p.Messages)-1]
	if last.Role != entity.RoleUser || last.Content != in.UserMessage {
		t.Fatalf("new message must be last and untouched, got %#v", last)
	}

	for _, want := range []string{
		"Don Chuy", "Taquería El Güero", "tortillas de maíz", "Mexico", "CEFR level A2",
		"Current stage: rising", "Exchanges completed so far: 4", "¿Me da...?; para llevar",
		`"character_response"`, `"tutor_tips"`, `"corrections"`, `"vocabulary"`, `"cultural"`,
		`"conversation_complete"`, `"resolution_status"`, `"arc_progress": "rising"`,
	} {
		if !strings.Contains(p.Instruction, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
}

func TestDialogueTurnPromptWithoutUserHistory(t *testing.T) {
	b := NewBuilder(nil)
	p, err := b.DialogueTurn(context.Background(), &wfmodel.DialogueTurnInput{
		UserMessage: "Bonjour",
		History:     []entity.Message{entity.NewAssistantMessage("Bonjour, madame !")},
		Scenario:    entity.ScenarioProposal{Setting: "Boulangerie"},
	})
	if err != nil {
		t.Fatalf("DialogueTurn: %v", err)
	}
	if len(p.Messages) != 1 || p.Messages[0].Content != "Bonjour" {
		t.Fatalf("only the new message should be sent, got %#v", p.Messages)
	}
	if p.ArcStage != entity.ArcBeginning {
		t.Fatalf("stage = %s", p.ArcStage)
	}
}

func TestDialogueTurnPromptIsDeterministic(t *testing.T) {
	b := NewBuilder(nil)
	in := &wfmodel.DialogueTurnInput{UserMessage: "Hej", Scenario: testScenario(), ExchangeCount: 9}
	p1, err := b.DialogueTurn(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := NewBuilder(nil).DialogueTurn(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Fatal("same input produced different prompts")
	}
	if !strings.Contains(p1.Instruction, "conversation_complete to true") {
		t.Fatal("resolution stage should ask the model to wrap up")
	}
}

func TestDialogueTurnRequiresMessage(t *testing.T) {
	if _, err := NewBuilder(nil).DialogueTurn(context.Background(), &wfmodel.DialogueTurnInput{UserMessage: "  "}); err == nil {
		t.Fatal("blank message should be rejected")
	}
}

func TestScenarioGenerationPrompt(t *testing.T) {
	b := NewBuilder(nil)
	loc := wfmodel.LocaleContext{Locale: "pt-BR", LanguageName: "Portuguese", CountryName: "Brazil"}

	p, err := b.ScenarioGeneration(context.Background(), &wfmodel.ScenarioGenerateInput{
		Difficulty: entity.DifficultyB1,
		Locale:     loc,
	})
	if err != nil {
		t.Fatalf("ScenarioGeneration: %v", err)
	}
	for _, want := range []string{"Portuguese", "Brazil", "5 to 10 exchanges", "CEFR level B1", "opening_line", "never be a line for the learner"} {
		if !strings.Contains(p.Instruction, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
	if len(p.Messages) != 1 || p.Messages[0].Role != entity.RoleUser {
		t.Fatalf("messages = %#v", p.Messages)
	}
	if strings.Contains(p.Messages[0].Content, "rejected") || strings.Contains(p.Messages[0].Content, "would like") {
		t.Fatalf("no preferences or veto expected: %q", p.Messages[0].Content)
	}

	p, err = b.ScenarioGeneration(context.Background(), &wfmodel.ScenarioGenerateInput{
		Difficulty:  entity.DifficultyB1,
		Locale:      loc,
		Preferences: "football",
		VetoReason:  "too similar to a restaurant",
	})
	if err != nil {
		t.Fatalf("ScenarioGeneration: %v", err)
	}
	user := p.Messages[0].Content
	if !strings.Contains(user, "football") || !strings.Contains(user, "too similar to a restaurant") {
		t.Fatalf("preferences and veto missing: %q", user)
	}
	if !strings.Contains(user, "Do not repeat that premise") {
		t.Fatalf("veto instruction missing: %q", user)
	}
}

func TestScenarioModificationPrompt(t *testing.T) {
	orig := testScenario()
	p, err := NewBuilder(nil).ScenarioModification(context.Background(), &wfmodel.ScenarioModifyInput{
		Original: orig,
		Request:  "Make it a breakfast place instead",
	})
	if err != nil {
		t.Fatalf("ScenarioModification: %v", err)
	}
	user := p.Messages[0].Content
	for _, want := range []string{
		orig.Setting, orig.SettingDescription, orig.Objective, orig.Conflict, orig.Difficulty,
		orig.OpeningLine, orig.CharacterName, orig.CharacterPersonality, "para llevar", "es-MX",
		"Make it a breakfast place instead",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("modification prompt missing %q", want)
		}
	}
	if !strings.Contains(p.Instruction, "Keep the difficulty level") {
		t.Error("instruction should ask to preserve difficulty and locale")
	}

	if _, err := NewBuilder(nil).ScenarioModification(context.Background(), &wfmodel.ScenarioModifyInput{Original: orig}); err == nil {
		t.Fatal("empty modification request should be rejected")
	}
}

func TestRegistryUnknownPrompt(t *testing.T) {
	if _, err := NewRegistry().ChatTemplate("nope"); err == nil {
		t.Fatal("unknown prompt id should fail")
	}
}
