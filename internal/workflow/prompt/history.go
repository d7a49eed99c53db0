package prompt

import (
	"roleplay-tutor-api/internal/domain/entity"
)

// NormalizeHistory 整理调用方提供的历史消息：
// 先丢弃角色未知或内容为空的消息，再丢弃第一条 user 消息之前的所有消息。
// 没有 user 消息时返回空历史。
func NormalizeHistory(history []entity.Message) []entity.Message {
	valid := make([]entity.Message, 0, len(history))
	for _, m := range history {
		if !m.Role.IsValid() || m.IsBlank() {
			continue
		}
		valid = append(valid, m)
	}

	for i, m := range valid {
		if m.Role == entity.RoleUser {
			return valid[i:]
		}
	}
	return []entity.Message{}
}
