package entity

import "strings"

// Message 单轮对话消息
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage 创建用户消息
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage 创建助手（NPC）消息
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// IsBlank 内容是否为空白
func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Content) == ""
}
