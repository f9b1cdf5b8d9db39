package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockTokenValidator はテスト用のトークン検証実装。
type mockTokenValidator struct {
	validateFunc func(token string) (string, error)
}

func (m *mockTokenValidator) Validate(token string) (string, error) {
	return m.validateFunc(token)
}

// TestAuthMiddleware_ValidToken は有効なBearerトークンでユーザー名が注入されることを検証する。
func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := &mockTokenValidator{
		validateFunc: func(token string) (string, error) {
			if token != "valid-token" {
				return "", fmt.Errorf("unexpected token: %s", token)
			}
			return "alice", nil
		},
	}

	var gotUsername string
	handler := NewAuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, err := UsernameFromContext(r.Context())
		if err != nil {
			t.Fatalf("UsernameFromContext() error = %v", err)
		}
		gotUsername = username
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/messages/abc", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUsername != "alice" {
		t.Errorf("username = %q, want %q", gotUsername, "alice")
	}
}

// TestAuthMiddleware_MissingHeader はAuthorizationヘッダーがない場合に401を返すことを検証する。
func TestAuthMiddleware_MissingHeader(t *testing.T) {
	validator := &mockTokenValidator{
		validateFunc: func(token string) (string, error) {
			t.Fatal("Validate should not be called without Authorization header")
			return "", nil
		},
	}

	handler := NewAuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/messages/abc", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestAuthMiddleware_MalformedHeader はBearer形式でないヘッダーが401になることを検証する。
func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"scheme only", "Bearer"},
		{"empty token", "Bearer "},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"lowercase scheme", "bearer some-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &mockTokenValidator{
				validateFunc: func(token string) (string, error) {
					return "alice", nil
				},
			}

			handler := NewAuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/messages/abc", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

// TestAuthMiddleware_InvalidToken はトークン検証失敗時に401を返すことを検証する。
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	validator := &mockTokenValidator{
		validateFunc: func(token string) (string, error) {
			return "", fmt.Errorf("signature verification failed")
		},
	}

	handler := NewAuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/messages/abc", nil)
	req.Header.Set("Authorization", "Bearer tampered-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestUsernameFromContext_NotSet はコンテキストにユーザー名がない場合にエラーを返すことを検証する。
func TestUsernameFromContext_NotSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, err := UsernameFromContext(req.Context()); err == nil {
		t.Error("expected error for context without username, got nil")
	}
}

// TestContextWithUsername はヘルパーで注入したユーザー名が取得できることを検証する。
func TestContextWithUsername(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := ContextWithUsername(req.Context(), "bob")

	username, err := UsernameFromContext(ctx)
	if err != nil {
		t.Fatalf("UsernameFromContext() error = %v", err)
	}
	if username != "bob" {
		t.Errorf("username = %q, want %q", username, "bob")
	}
}
