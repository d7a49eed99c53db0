package llm

import (
	"context"
	"sync"

	"roleplay-tutor-api/internal/domain/entity"
)

// MockCompleter 确定性的补全实现：返回固定文本或错误，并记录最近一次调用
type MockCompleter struct {
	mu sync.Mutex

	Response string
	Err      error

	calls           int
	lastInstruction string
	lastMessages    []entity.Message
}

// NewMockCompleter 创建返回固定文本的 MockCompleter
func NewMockCompleter(response string) *MockCompleter {
	return &MockCompleter{Response: response}
}

func (m *MockCompleter) Complete(_ context.Context, instruction string, messages []entity.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.lastInstruction = instruction
	m.lastMessages = append([]entity.Message(nil), messages...)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Calls 调用次数
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastInstruction 最近一次的系统指令
func (m *MockCompleter) LastInstruction() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastInstruction
}

// LastMessages 最近一次的消息副本
func (m *MockCompleter) LastMessages() []entity.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Message(nil), m.lastMessages...)
}
