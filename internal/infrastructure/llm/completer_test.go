package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"roleplay-tutor-api/internal/config"
	"roleplay-tutor-api/internal/domain/entity"
	apperrors "roleplay-tutor-api/pkg/errors"
)

type fakeChatModel struct {
	input []*schema.Message
	opts  *model.Options
	out   *schema.Message
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	f.opts = model.GetCommonOptions(&model.Options{}, opts...)
	return f.out, f.err
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func newTestCompleter(t *testing.T, fake *fakeChatModel, maxTokens int) *EinoCompleter {
	t.Helper()
	cfg := &config.Config{LLM: config.LLMConfig{
		DefaultProvider: "fake",
		Providers:       map[string]config.ProviderConfig{"fake": {MaxTokens: maxTokens}},
	}}
	f := NewEinoFactory(cfg)
	f.Register("fake", fake)
	return NewEinoCompleter(f, &cfg.LLM)
}

func TestEinoCompleterSendsInstructionAndMessages(t *testing.T) {
	fake := &fakeChatModel{out: schema.AssistantMessage(`{"character_response":"Hola"}`, nil)}
	c := newTestCompleter(t, fake, 0)

	text, err := c.Complete(context.Background(), "be a waiter", []entity.Message{
		entity.NewUserMessage("hola"),
		entity.NewAssistantMessage("¿qué desea?"),
		entity.NewUserMessage("un café"),
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != `{"character_response":"Hola"}` {
		t.Fatalf("text = %q", text)
	}

	if len(fake.input) != 4 {
		t.Fatalf("expected system + 3 messages, got %d", len(fake.input))
	}
	wantRoles := []schema.RoleType{schema.System, schema.User, schema.Assistant, schema.User}
	for i, r := range wantRoles {
		if fake.input[i].Role != r {
			t.Errorf("message %d role = %s, want %s", i, fake.input[i].Role, r)
		}
	}
	if fake.input[0].Content != "be a waiter" || fake.input[3].Content != "un café" {
		t.Fatalf("unexpected content: %+v", fake.input)
	}
	if fake.opts.MaxTokens == nil || *fake.opts.MaxTokens != config.DefaultMaxTokens {
		t.Fatalf("max tokens option = %v", fake.opts.MaxTokens)
	}
}

func TestEinoCompleterCapsMaxTokens(t *testing.T) {
	fake := &fakeChatModel{out: schema.AssistantMessage("ok", nil)}
	c := newTestCompleter(t, fake, 4096)
	if _, err := c.Complete(context.Background(), "", []entity.Message{entity.NewUserMessage("x")}); err != nil {
		t.Fatal(err)
	}
	if *fake.opts.MaxTokens != config.DefaultMaxTokens {
		t.Fatalf("max tokens = %d", *fake.opts.MaxTokens)
	}
	if fake.input[0].Role != schema.User {
		t.Fatal("empty instruction should not produce a system message")
	}
}

func TestEinoCompleterErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		out  *schema.Message
		err  error
		code apperrors.ErrorCode
	}{
		{"network", nil, errors.New("dial tcp 10.0.0.1:443: connection refused"), apperrors.CodeLLMProviderError},
		{"timeout", nil, context.DeadlineExceeded, apperrors.CodeLLMProviderError},
		{"malformed", nil, errors.New("json: cannot unmarshal number into Go struct field"), apperrors.CodeLLMCallFailed},
		{"nil message", nil, nil, apperrors.CodeLLMCallFailed},
		{"empty content", schema.AssistantMessage("  ", nil), nil, apperrors.CodeLLMCallFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompleter(t, &fakeChatModel{out: tt.out, err: tt.err}, 0)
			_, err := c.Complete(context.Background(), "sys", []entity.Message{entity.NewUserMessage("x")})
			if !apperrors.HasCode(err, tt.code) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestEinoCompleterUnknownProvider(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{DefaultProvider: "missing"}}
	c := NewEinoCompleter(NewEinoFactory(cfg), &cfg.LLM)
	_, err := c.Complete(context.Background(), "sys", []entity.Message{entity.NewUserMessage("x")})
	if !apperrors.HasCode(err, apperrors.CodeLLMProviderError) {
		t.Fatalf("err = %v", err)
	}
}

func TestMockCompleter(t *testing.T) {
	m := NewMockCompleter("fixed")
	out, err := m.Complete(context.Background(), "inst", []entity.Message{entity.NewUserMessage("a")})
	if err != nil || out != "fixed" {
		t.Fatalf("out=%q err=%v", out, err)
	}
	if m.Calls() != 1 || m.LastInstruction() != "inst" || len(m.LastMessages()) != 1 {
		t.Fatal("mock did not record the call")
	}

	m.Err = errors.New("down")
	if _, err := m.Complete(context.Background(), "", nil); err == nil {
		t.Fatal("mock should return configured error")
	}
}
