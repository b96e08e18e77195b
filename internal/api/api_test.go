package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/minichat/chat-server/internal/chat"
	"github.com/minichat/chat-server/internal/db"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *chat.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := db.NewMemory()
	chatService := chat.NewService(mem.RuleStore(), mem.ConversationStore(), nil)
	conversationService := chat.NewConversationService(mem.ConversationStore())
	ruleService := chat.NewRuleService(mem.RuleStore())

	handler := NewHandler(chatService, conversationService, ruleService, nil)
	router := gin.New()
	handler.RegisterRoutes(router)

	return router, chatService
}

func TestSendMessageEndpoint(t *testing.T) {
	router, chatService := setupTestRouter(t)
	if err := chatService.SeedDefaultRules(context.Background()); err != nil {
		t.Fatalf("seed rules: %v", err)
	}

	rec := httptest.NewRecorder()
	req := newJSONRequest(t, http.MethodPost, "/api/chat/message", map[string]string{
		"content": "hey there",
	})
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Message struct {
				Content        string `json:"content"`
				Sender         string `json:"sender"`
				ConversationID string `json:"conversationId"`
			} `json:"message"`
			BotResponse struct {
				Content string `json:"content"`
				Sender  string `json:"sender"`
			} `json:"botResponse"`
		} `json:"data"`
	}
	decodeBody(t, rec.Body.Bytes(), &resp)

	if resp.Status != "success" {
		t.Errorf("expected success status, got %q", resp.Status)
	}
	if resp.Data.Message.Content != "hey there" || resp.Data.Message.Sender != "user" {
		t.Errorf("unexpected user message: %+v", resp.Data.Message)
	}
	if resp.Data.BotResponse.Content != "Hello! How can I assist you today?" {
		t.Errorf("unexpected bot reply: %q", resp.Data.BotResponse.Content)
	}
	if resp.Data.Message.ConversationID == "" {
		t.Error("expected a conversation id in the response")
	}
}

func TestSendMessageValidation(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	req := newJSONRequest(t, http.MethodPost, "/api/chat/message", map[string]string{
		"content": "",
	})
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	decodeBody(t, rec.Body.Bytes(), &resp)

	if resp.Status != "error" {
		t.Errorf("expected error status, got %q", resp.Status)
	}
	if len(resp.Errors) == 0 || resp.Errors[0].Field != "content" {
		t.Errorf("expected field error on content, got %+v", resp.Errors)
	}
}

func TestSendMessageUnknownConversation(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	req := newJSONRequest(t, http.MethodPost, "/api/chat/message", map[string]string{
		"content":        "hello",
		"conversationId": "missing",
	})
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestConversationEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)

	// Create an empty conversation.
	rec := httptest.NewRecorder()
	req := newJSONRequest(t, http.MethodPost, "/api/chat/conversations", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var created struct {
		Data struct {
			ID           string `json:"id"`
			MessageCount int    `json:"messageCount"`
		} `json:"data"`
	}
	decodeBody(t, rec.Body.Bytes(), &created)
	if created.Data.ID == "" {
		t.Fatal("expected conversation id")
	}

	// It shows up in the list.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/chat/conversations", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	decodeBody(t, rec.Body.Bytes(), &list)
	if len(list.Data) != 1 || list.Data[0].ID != created.Data.ID {
		t.Fatalf("expected the created conversation in the list, got %+v", list.Data)
	}

	// Fetch detail, then messages.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/chat/conversations/"+created.Data.ID, nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/chat/conversations/"+created.Data.ID+"/messages", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	// Delete, then the detail route 404s.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/chat/conversations/"+created.Data.ID, nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on delete, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/chat/conversations/"+created.Data.ID, nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rec.Code)
	}
}

func TestGetUnknownConversationEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversations/missing", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestKeywordResponseEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)

	// Create.
	rec := httptest.NewRecorder()
	req := newJSONRequest(t, http.MethodPost, "/api/keyword-responses", map[string]any{
		"keywords": []string{"shipping", "delivery"},
		"response": "We ship worldwide.",
		"priority": 5,
	})
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data struct {
			ID       string `json:"id"`
			IsActive bool   `json:"isActive"`
			Priority int    `json:"priority"`
		} `json:"data"`
	}
	decodeBody(t, rec.Body.Bytes(), &created)
	if created.Data.ID == "" || !created.Data.IsActive || created.Data.Priority != 5 {
		t.Fatalf("unexpected created rule: %+v", created.Data)
	}

	ruleURL := "/api/keyword-responses/" + created.Data.ID

	// Partial update via PUT.
	rec = httptest.NewRecorder()
	req = newJSONRequest(t, http.MethodPut, ruleURL, map[string]any{
		"priority": 7,
	})
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on update, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated struct {
		Data struct {
			Priority int      `json:"priority"`
			Keywords []string `json:"keywords"`
		} `json:"data"`
	}
	decodeBody(t, rec.Body.Bytes(), &updated)
	if updated.Data.Priority != 7 || len(updated.Data.Keywords) != 2 {
		t.Fatalf("unexpected updated rule: %+v", updated.Data)
	}

	// Toggle off.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, ruleURL+"/toggle", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on toggle, got %d", rec.Code)
	}

	var toggled struct {
		Data struct {
			IsActive bool `json:"isActive"`
		} `json:"data"`
	}
	decodeBody(t, rec.Body.Bytes(), &toggled)
	if toggled.Data.IsActive {
		t.Error("expected rule inactive after toggle")
	}

	// activeOnly filter hides it, plain list still shows it.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/keyword-responses?activeOnly=true", nil)
	router.ServeHTTP(rec, req)
	var activeList struct {
		Data []json.RawMessage `json:"data"`
	}
	decodeBody(t, rec.Body.Bytes(), &activeList)
	if len(activeList.Data) != 0 {
		t.Errorf("expected no active rules, got %d", len(activeList.Data))
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/keyword-responses", nil)
	router.ServeHTTP(rec, req)
	var fullList struct {
		Data []json.RawMessage `json:"data"`
	}
	decodeBody(t, rec.Body.Bytes(), &fullList)
	if len(fullList.Data) != 1 {
		t.Errorf("expected 1 rule in the unfiltered list, got %d", len(fullList.Data))
	}

	// Delete, then 404.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, ruleURL, nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on delete, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, ruleURL, nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", rec.Code)
	}
}

func TestCreateRuleValidationEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := httptest.NewRecorder()
	req := newJSONRequest(t, http.MethodPost, "/api/keyword-responses", map[string]any{
		"keywords": []string{},
		"response": "",
	})
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	decodeBody(t, rec.Body.Bytes(), &resp)
	if len(resp.Errors) != 2 {
		t.Errorf("expected errors for keywords and response, got %+v", resp.Errors)
	}
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}

	req, err := http.NewRequest(method, path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, data []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to decode response: %v (%s)", err, fmt.Sprintf("%.200s", data))
	}
}
