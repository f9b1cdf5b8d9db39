package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/msgbox/internal/middleware"
	"github.com/hitoshi/msgbox/internal/model"
)

// mockMessageService はテスト用のメッセージサービス実装。
type mockMessageService struct {
	sendFunc     func(ctx context.Context, from, to, body string) (*model.Message, error)
	getFunc      func(ctx context.Context, id, caller string) (*model.MessageView, error)
	markReadFunc func(ctx context.Context, id, caller string) (*model.MessageView, error)
}

func (m *mockMessageService) Send(ctx context.Context, from, to, body string) (*model.Message, error) {
	return m.sendFunc(ctx, from, to, body)
}

func (m *mockMessageService) Get(ctx context.Context, id, caller string) (*model.MessageView, error) {
	return m.getFunc(ctx, id, caller)
}

func (m *mockMessageService) MarkRead(ctx context.Context, id, caller string) (*model.MessageView, error) {
	return m.markReadFunc(ctx, id, caller)
}

// newAuthedRequest は認証済みユーザー名入りのリクエストを生成する。
func newAuthedRequest(method, target, username string, body *bytes.Buffer) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.ContextWithUsername(req.Context(), username))
}

// withURLParam はchiのURLパラメータをリクエストコンテキストに設定する。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// TestMessageHandler_SendMessage_Success は正常な送信で201が返ることを検証する。
func TestMessageHandler_SendMessage_Success(t *testing.T) {
	sentAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	service := &mockMessageService{
		sendFunc: func(ctx context.Context, from, to, body string) (*model.Message, error) {
			if from != "alice" {
				t.Errorf("from = %q, want %q", from, "alice")
			}
			if to != "bob" {
				t.Errorf("to = %q, want %q", to, "bob")
			}
			return &model.Message{
				ID:           "11111111-1111-1111-1111-111111111111",
				FromUsername: from,
				ToUsername:   to,
				Body:         body,
				SentAt:       sentAt,
			}, nil
		},
	}
	h := NewMessageHandler(service, nil)

	body := bytes.NewBufferString(`{"to_username":"bob","body":"hello bob"}`)
	req := newAuthedRequest(http.MethodPost, "/api/messages", "alice", body)
	w := httptest.NewRecorder()

	h.SendMessage(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp messageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.FromUsername != "alice" || resp.ToUsername != "bob" {
		t.Errorf("participants = %q -> %q, want alice -> bob", resp.FromUsername, resp.ToUsername)
	}
	if resp.ReadAt != nil {
		t.Error("read_at should be null for a new message")
	}
}

// TestMessageHandler_SendMessage_UnknownRecipient は存在しない受信者で404が返ることを検証する。
func TestMessageHandler_SendMessage_UnknownRecipient(t *testing.T) {
	service := &mockMessageService{
		sendFunc: func(ctx context.Context, from, to, body string) (*model.Message, error) {
			return nil, model.NewUserNotFoundError(to)
		},
	}
	h := NewMessageHandler(service, nil)

	body := bytes.NewBufferString(`{"to_username":"ghost","body":"anyone there"}`)
	req := newAuthedRequest(http.MethodPost, "/api/messages", "alice", body)
	w := httptest.NewRecorder()

	h.SendMessage(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if resp := decodeErrorResponse(t, w.Body); resp.Code != model.ErrCodeUserNotFound {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeUserNotFound)
	}
}

// TestMessageHandler_SendMessage_MissingField は必須フィールド欠落で400が返ることを検証する。
func TestMessageHandler_SendMessage_MissingField(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing to_username", `{"body":"hello"}`},
		{"missing body", `{"to_username":"bob"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockMessageService{
				sendFunc: func(ctx context.Context, from, to, body string) (*model.Message, error) {
					t.Fatal("Send should not be called")
					return nil, nil
				},
			}
			h := NewMessageHandler(service, nil)

			req := newAuthedRequest(http.MethodPost, "/api/messages", "alice", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			h.SendMessage(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

// TestMessageHandler_GetMessage_Participant は参加者による取得で詳細が返ることを検証する。
func TestMessageHandler_GetMessage_Participant(t *testing.T) {
	service := &mockMessageService{
		getFunc: func(ctx context.Context, id, caller string) (*model.MessageView, error) {
			if id != "msg-1" {
				t.Errorf("id = %q, want %q", id, "msg-1")
			}
			if caller != "bob" {
				t.Errorf("caller = %q, want %q", caller, "bob")
			}
			return &model.MessageView{
				ID:       id,
				Body:     "hello bob",
				SentAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
				FromUser: model.PublicProfile{Username: "alice", FirstName: "Alice"},
				ToUser:   model.PublicProfile{Username: "bob", FirstName: "Bob"},
			}, nil
		},
	}
	h := NewMessageHandler(service, nil)

	req := newAuthedRequest(http.MethodGet, "/api/messages/msg-1", "bob", nil)
	req = withURLParam(req, "id", "msg-1")
	w := httptest.NewRecorder()

	h.GetMessage(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp messageViewResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.FromUser.Username != "alice" || resp.ToUser.Username != "bob" {
		t.Errorf("profiles = %q -> %q, want alice -> bob", resp.FromUser.Username, resp.ToUser.Username)
	}
}

// TestMessageHandler_GetMessage_NotParticipant は非参加者による取得で401が返ることを検証する。
func TestMessageHandler_GetMessage_NotParticipant(t *testing.T) {
	service := &mockMessageService{
		getFunc: func(ctx context.Context, id, caller string) (*model.MessageView, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := NewMessageHandler(service, nil)

	req := newAuthedRequest(http.MethodGet, "/api/messages/msg-1", "mallory", nil)
	req = withURLParam(req, "id", "msg-1")
	w := httptest.NewRecorder()

	h.GetMessage(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if resp := decodeErrorResponse(t, w.Body); resp.Code != model.ErrCodeUnauthorized {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeUnauthorized)
	}
}

// TestMessageHandler_GetMessage_NotFound は存在しないメッセージで404が返ることを検証する。
func TestMessageHandler_GetMessage_NotFound(t *testing.T) {
	service := &mockMessageService{
		getFunc: func(ctx context.Context, id, caller string) (*model.MessageView, error) {
			return nil, model.NewMessageNotFoundError(id)
		},
	}
	h := NewMessageHandler(service, nil)

	req := newAuthedRequest(http.MethodGet, "/api/messages/missing", "alice", nil)
	req = withURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.GetMessage(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// TestMessageHandler_MarkMessageRead_Recipient は受信者による既読化で200と既読日時が返ることを検証する。
func TestMessageHandler_MarkMessageRead_Recipient(t *testing.T) {
	readAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service := &mockMessageService{
		markReadFunc: func(ctx context.Context, id, caller string) (*model.MessageView, error) {
			return &model.MessageView{ID: id, ReadAt: &readAt}, nil
		},
	}
	h := NewMessageHandler(service, nil)

	req := newAuthedRequest(http.MethodPost, "/api/messages/msg-1/read", "bob", nil)
	req = withURLParam(req, "id", "msg-1")
	w := httptest.NewRecorder()

	h.MarkMessageRead(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp markReadResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ReadAt == nil || !resp.ReadAt.Equal(readAt) {
		t.Errorf("read_at = %v, want %v", resp.ReadAt, readAt)
	}
}

// TestMessageHandler_MarkMessageRead_Sender は送信者による既読化で401が返ることを検証する。
func TestMessageHandler_MarkMessageRead_Sender(t *testing.T) {
	service := &mockMessageService{
		markReadFunc: func(ctx context.Context, id, caller string) (*model.MessageView, error) {
			return nil, model.NewUnauthorizedError()
		},
	}
	h := NewMessageHandler(service, nil)

	req := newAuthedRequest(http.MethodPost, "/api/messages/msg-1/read", "alice", nil)
	req = withURLParam(req, "id", "msg-1")
	w := httptest.NewRecorder()

	h.MarkMessageRead(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
