package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptDialogueTurnV1     PromptID = "dialogue_turn_v1"
	PromptScenarioGenerateV1 PromptID = "scenario_generate_v1"
	PromptScenarioModifyV1   PromptID = "scenario_modify_v1"
)

// historyKey 对话历史占位符；历史内容原样传入，不经过模板渲染
const historyKey = "history"

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	tpl, err := buildTemplate(id)
	if err != nil {
		return nil, err
	}
	r.cache[id] = tpl
	return tpl, nil
}

// buildTemplate 对话模板为 system + 历史占位符，场景模板为 system + user
func buildTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	system, err := readEmbeddedText(fmt.Sprintf("templates/%s.system.txt", id))
	if err != nil {
		return nil, err
	}

	switch id {
	case PromptDialogueTurnV1:
		return einoprompt.FromMessages(
			schema.GoTemplate,
			schema.SystemMessage(system),
			schema.MessagesPlaceholder(historyKey, false),
		), nil
	case PromptScenarioGenerateV1, PromptScenarioModifyV1:
		user, err := readEmbeddedText(fmt.Sprintf("templates/%s.user.txt", id))
		if err != nil {
			return nil, err
		}
		return einoprompt.FromMessages(
			schema.GoTemplate,
			schema.SystemMessage(system),
			schema.UserMessage(user),
		), nil
	default:
		return nil, fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
