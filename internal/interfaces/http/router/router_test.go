package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"roleplay-tutor-api/internal/application/dialogue"
	"roleplay-tutor-api/internal/application/scenario"
	"roleplay-tutor-api/internal/config"
	"roleplay-tutor-api/internal/domain/service"
	"roleplay-tutor-api/internal/infrastructure/llm"
	"roleplay-tutor-api/internal/interfaces/http/handler"
	workflowprompt "roleplay-tutor-api/internal/workflow/prompt"
	apperrors "roleplay-tutor-api/pkg/errors"
	"roleplay-tutor-api/pkg/utils"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLimiter struct {
	mu    sync.Mutex
	limit int
	err   error
	seen  map[string]int
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]int{}
	}
	f.seen[key]++
	return f.seen[key] <= limit, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "roleplay-tutor-api"
	cfg.App.Env = "test"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	cfg.Security.JWT.Secret = testSecret
	return cfg
}

func newTestRouter(cfg *config.Config, completer *llm.MockCompleter, limiter *fakeLimiter) *gin.Engine {
	locales := service.NewLocaleRegistry()
	builder := workflowprompt.NewBuilder(workflowprompt.NewRegistry())
	handlers := RouterHandlers{
		Health:   handler.NewHealthHandler("test", nil),
		Chat:     handler.NewChatHandler(dialogue.NewOrchestrator(completer, builder, locales)),
		Scenario: handler.NewScenarioHandler(scenario.NewLifecycle(completer, builder, locales)),
		Locale:   handler.NewLocaleHandler(locales),
	}
	if limiter == nil {
		return New(cfg, handlers, nil).Engine()
	}
	return New(cfg, handlers, limiter).Engine()
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(testConfig(), llm.NewMockCompleter("{}"), nil)

	w := do(t, r, http.MethodGet, "/api/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decode[map[string]string](t, w)
	if got["status"] != "healthy" || got["service"] != "roleplay-tutor-api" {
		t.Fatalf("body = %v", got)
	}

	for _, path := range []string{"/health", "/live", "/ready"} {
		if w := do(t, r, http.MethodGet, path, nil, nil); w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, w.Code)
		}
	}
	if w := do(t, r, http.MethodGet, "/metrics", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", w.Code)
	}
}

func TestLocales(t *testing.T) {
	r := newTestRouter(testConfig(), llm.NewMockCompleter("{}"), nil)

	w := do(t, r, http.MethodGet, "/api/locales", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Languages []struct {
			Code     string `json:"code"`
			Name     string `json:"name"`
			Variants []struct {
				Code      string `json:"code"`
				IsDefault bool   `json:"is_default"`
			} `json:"variants"`
		} `json:"languages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Languages) == 0 || body.Languages[0].Code != "fr" {
		t.Fatalf("French should be listed first: %+v", body.Languages)
	}
	for _, l := range body.Languages {
		defaults := 0
		for _, v := range l.Variants {
			if v.IsDefault {
				defaults++
			}
		}
		if defaults != 1 {
			t.Fatalf("%s has %d default variants", l.Code, defaults)
		}
	}
}

func TestChat(t *testing.T) {
	mock := llm.NewMockCompleter("Voilà ! ```{\"character_response\":\"Voilà vos croissants.\",\"tutor_tips\":{\"corrections\":[],\"vocabulary\":[\"voilà\"],\"cultural\":[]},\"conversation_complete\":false,\"arc_progress\":\"climax\"}```")
	r := newTestRouter(testConfig(), mock, nil)

	req := map[string]any{
		"message": "Deux croissants, s'il vous plaît.",
		"conversation_history": []map[string]string{
			{"role": "assistant", "content": "Bonjour !"},
			{"role": "user", "content": "Bonjour madame."},
			{"role": "assistant", "content": "Qu'est-ce que je vous sers ?"},
		},
		"scenario":       map[string]any{"setting": "Boulangerie", "character_name": "Marie", "locale": "fr-FR"},
		"exchange_count": 1,
	}
	w := do(t, r, http.MethodPost, "/api/chat", req, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	got := decode[map[string]any](t, w)
	if got["character_response"] != "Voilà vos croissants." {
		t.Fatalf("character_response = %v", got["character_response"])
	}
	if got["arc_progress"] != "beginning" {
		t.Fatalf("arc_progress = %v", got["arc_progress"])
	}
	if _, ok := got["resolution_status"]; ok {
		t.Fatalf("resolution_status should be omitted: %v", got)
	}
	tips, _ := got["tutor_tips"].(map[string]any)
	for _, k := range []string{"corrections", "vocabulary", "cultural"} {
		if _, ok := tips[k].([]any); !ok {
			t.Fatalf("tutor_tips.%s should be a list: %v", k, tips)
		}
	}
	if msgs := mock.LastMessages(); msgs[0].Content != "Bonjour madame." {
		t.Fatalf("history should start at the first user message: %+v", msgs)
	}

	// v1 路由指向同一处理器
	if w := do(t, r, http.MethodPost, "/v1/chat", req, nil); w.Code != http.StatusOK {
		t.Fatalf("/v1/chat status = %d", w.Code)
	}
}

func TestChatValidation(t *testing.T) {
	mock := llm.NewMockCompleter("{}")
	r := newTestRouter(testConfig(), mock, nil)

	tests := []struct {
		name string
		body any
	}{
		{"missing message", map[string]any{"scenario": map[string]any{}}},
		{"blank message", map[string]any{"message": "   \n\t "}},
		{"negative exchange count", map[string]any{"message": "hola", "exchange_count": -1}},
		{"malformed json", `{"message": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, r, http.MethodPost, "/api/chat", tt.body, nil); w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
		})
	}
	if mock.Calls() != 0 {
		t.Fatalf("invalid requests must not reach the model")
	}
}

func TestChatFailureIsGeneric(t *testing.T) {
	mock := &llm.MockCompleter{Err: apperrors.ErrLLMProvider.WithError(errors.New("dial tcp: connection refused"))}
	r := newTestRouter(testConfig(), mock, nil)

	w := do(t, r, http.MethodPost, "/api/chat", map[string]any{"message": "Bonjour"}, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("cause leaked to client: %s", w.Body.String())
	}
	got := decode[map[string]any](t, w)
	if got["message"] != "Failed to process chat request. Please try again." {
		t.Fatalf("message = %v", got["message"])
	}
}

func TestScenarioGenerate(t *testing.T) {
	mock := llm.NewMockCompleter(`{"setting":"Mercado","objective":"Buy mangoes","opening_line":"¡Pásele, güero!","difficulty":"A1","hints":["¿Cuánto es?"]}`)
	r := newTestRouter(testConfig(), mock, nil)

	w := do(t, r, http.MethodPost, "/api/scenario/generate", map[string]any{"difficulty": "a1", "locale": "es-MX"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Scenario map[string]any `json:"scenario"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	sc := body.Scenario
	if sc["locale"] != "es-MX" || sc["language_name"] != "Spanish" || sc["country_name"] != "Mexico" {
		t.Fatalf("locale fields = %v", sc)
	}
	if sc["difficulty"] != "A1" {
		t.Fatalf("difficulty = %v", sc["difficulty"])
	}

	if w := do(t, r, http.MethodPost, "/api/scenario/generate", map[string]any{"difficulty": "Z9"}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid difficulty status = %d", w.Code)
	}
}

func TestScenarioGenerateMissingSetting(t *testing.T) {
	r := newTestRouter(testConfig(), llm.NewMockCompleter(`{"objective":"x"}`), nil)

	w := do(t, r, http.MethodPost, "/api/scenario/generate", map[string]any{"difficulty": "B1"}, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode[map[string]any](t, w); got["message"] != "Failed to generate scenario. Please try again." {
		t.Fatalf("message = %v", got["message"])
	}
}

func TestScenarioModify(t *testing.T) {
	mock := llm.NewMockCompleter(`{"setting":"Taquería","objective":"Order dinner","opening_line":"¿Qué va a querer?","locale":"fr-FR"}`)
	r := newTestRouter(testConfig(), mock, nil)

	req := map[string]any{
		"original_scenario": map[string]any{
			"setting": "Mercado", "difficulty": "A2", "locale": "es-MX",
			"language_name": "Spanish", "country_name": "Mexico",
		},
		"modification_request": "make it a taquería",
	}
	w := do(t, r, http.MethodPost, "/api/scenario/modify", req, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Scenario map[string]any `json:"scenario"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Scenario["locale"] != "es-MX" || body.Scenario["difficulty"] != "A2" {
		t.Fatalf("scenario = %v", body.Scenario)
	}

	delete(req, "modification_request")
	if w := do(t, r, http.MethodPost, "/api/scenario/modify", req, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing request status = %d", w.Code)
	}
}

func TestRequireIdentity(t *testing.T) {
	cfg := testConfig()
	cfg.Features.Auth.RequireIdentity = true
	r := newTestRouter(cfg, llm.NewMockCompleter(`{"character_response":"Salut"}`), nil)
	body := map[string]any{"message": "Salut"}

	if w := do(t, r, http.MethodPost, "/api/chat", body, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/chat", body, map[string]string{"Authorization": "Bearer nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token status = %d", w.Code)
	}

	token, err := utils.NewJWTManager(testSecret, "").GenerateToken("user-42", "learner@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if w := do(t, r, http.MethodPost, "/api/chat", body, map[string]string{"Authorization": "Bearer " + token}); w.Code != http.StatusOK {
		t.Fatalf("authorized status = %d body = %s", w.Code, w.Body.String())
	}

	// 系统端点不需要身份
	if w := do(t, r, http.MethodGet, "/api/locales", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("locales status = %d", w.Code)
	}
}

func TestAnonymousAllowedByDefault(t *testing.T) {
	r := newTestRouter(testConfig(), llm.NewMockCompleter(`{"character_response":"Salut"}`), nil)
	w := do(t, r, http.MethodPost, "/api/chat", map[string]any{"message": "Salut"}, map[string]string{"Authorization": "Bearer garbage"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.Requests = 2
	cfg.Security.RateLimit.Window = time.Minute
	limiter := &fakeLimiter{}
	r := newTestRouter(cfg, llm.NewMockCompleter(`{"character_response":"Salut"}`), limiter)
	body := map[string]any{"message": "Salut"}

	for i := 0; i < 2; i++ {
		if w := do(t, r, http.MethodPost, "/api/chat", body, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
	if w := do(t, r, http.MethodPost, "/api/chat", body, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d", w.Code)
	}
	// 其他路径单独计数
	if w := do(t, r, http.MethodPost, "/api/scenario/modify", map[string]any{"modification_request": "x", "original_scenario": map[string]any{"setting": "s"}}, nil); w.Code == http.StatusTooManyRequests {
		t.Fatalf("modify should have its own budget")
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.Requests = 1
	cfg.Security.RateLimit.Window = time.Minute
	r := newTestRouter(cfg, llm.NewMockCompleter(`{"character_response":"Salut"}`), &fakeLimiter{err: errors.New("redis down")})

	for i := 0; i < 3; i++ {
		if w := do(t, r, http.MethodPost, "/api/chat", map[string]any{"message": "Salut"}, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
}

func TestRequestIDEcho(t *testing.T) {
	r := newTestRouter(testConfig(), llm.NewMockCompleter("{}"), nil)
	w := do(t, r, http.MethodGet, "/health", nil, map[string]string{"X-Request-ID": "abc-123"})
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q", got)
	}
	w = do(t, r, http.MethodGet, "/health", nil, nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id should be generated")
	}
}
