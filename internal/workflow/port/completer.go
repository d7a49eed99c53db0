// Package port 定义工作流层依赖的外部能力
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"roleplay-tutor-api/internal/domain/entity"
)

// Completer 单次文本补全能力：给定系统指令与有序消息，返回模型原始文本。
// 实现不做重试，也不解析业务内容。
type Completer interface {
	Complete(ctx context.Context, instruction string, messages []entity.Message) (string, error)
}

// ChatModelFactory 按提供商名称获取 ChatModel，name 为空时取默认提供商
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
