package chain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"roleplay-tutor-api/internal/domain/entity"
	llmctx "roleplay-tutor-api/internal/domain/service"
	workflowprompt "roleplay-tutor-api/internal/workflow/prompt"
	apperrors "roleplay-tutor-api/pkg/errors"
)

type stubCompleter struct {
	mu          sync.Mutex
	calls       int
	workflow    string
	instruction string
	messages    []entity.Message
	out         string
	err         error
}

func (s *stubCompleter) Complete(ctx context.Context, instruction string, messages []entity.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.workflow = llmctx.WorkflowFromContext(ctx)
	s.instruction = instruction
	s.messages = messages
	return s.out, s.err
}

func echoChain(c *stubCompleter) *CompletionChain[string, string] {
	return NewCompletionChain("echo", "echo_workflow", c,
		func(_ context.Context, in string) (*workflowprompt.Prompt, error) {
			if in == "" {
				return nil, errors.New("empty input")
			}
			return &workflowprompt.Prompt{
				Instruction: "system: " + in,
				Messages:    []entity.Message{entity.NewUserMessage(in)},
			}, nil
		},
		func(_ context.Context, p *workflowprompt.Prompt, raw string) (string, error) {
			if raw == "bad" {
				return "", apperrors.ErrGenerationFailed
			}
			return p.Instruction + " -> " + strings.ToUpper(raw), nil
		},
	)
}

func TestCompletionChainInvoke(t *testing.T) {
	stub := &stubCompleter{out: "ok"}
	ch := echoChain(stub)

	out, err := ch.Invoke(context.Background(), "hola")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out != "system: hola -> OK" {
		t.Fatalf("out = %q", out)
	}
	if stub.calls != 1 || stub.instruction != "system: hola" || len(stub.messages) != 1 {
		t.Fatalf("completer saw calls=%d instruction=%q messages=%v", stub.calls, stub.instruction, stub.messages)
	}
	if stub.workflow != "echo_workflow" {
		t.Fatalf("workflow label = %q", stub.workflow)
	}

	if _, err := ch.Invoke(context.Background(), "again"); err != nil {
		t.Fatalf("second Invoke: %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("exactly one completion per invocation, got %d", stub.calls)
	}
}

func TestCompletionChainPreservesErrors(t *testing.T) {
	providerErr := apperrors.Wrap(errors.New("connection reset"), apperrors.CodeLLMProviderError, "LLM provider error")
	stub := &stubCompleter{err: providerErr}

	_, err := echoChain(stub).Invoke(context.Background(), "hola")
	if !apperrors.HasCode(err, apperrors.CodeLLMProviderError) {
		t.Fatalf("completion error should propagate with its code, got %v", err)
	}

	stub = &stubCompleter{out: "bad"}
	_, err = echoChain(stub).Invoke(context.Background(), "hola")
	if !errors.Is(err, apperrors.ErrGenerationFailed) {
		t.Fatalf("parse error should propagate, got %v", err)
	}

	stub = &stubCompleter{out: "ok"}
	_, err = echoChain(stub).Invoke(context.Background(), "")
	if err == nil || stub.calls != 0 {
		t.Fatalf("build failure must stop before completion: err=%v calls=%d", err, stub.calls)
	}
}

func TestCompletionChainWithoutCompleter(t *testing.T) {
	ch := NewCompletionChain[string, string]("x", "x", nil, nil, nil)
	if _, err := ch.Invoke(context.Background(), "hola"); err == nil {
		t.Fatal("missing completer should fail")
	}
}
