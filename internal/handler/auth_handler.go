package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/msgbox/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規アカウントを作成しセッショントークンを発行する。
	Register(ctx context.Context, username, password, firstName, lastName, phone string) (string, model.PublicProfile, error)
	// Login は資格情報を照合しセッショントークンを発行する。
	Login(ctx context.Context, username, password string) (string, error)
}

// AuthMetrics は認証ハンドラーが記録するメトリクスのインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type AuthMetrics interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordLoginLatency(duration time.Duration)
}

// AuthHandler はアカウント登録・ログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics AuthMetrics
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnil可。
func NewAuthHandler(service AuthServiceInterface, metrics AuthMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: metrics,
	}
}

// registerRequest はアカウント登録リクエストのボディ。
type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse はトークン発行レスポンス。
type tokenResponse struct {
	Token string `json:"token"`
}

// Register は新規アカウント登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	// 全フィールド必須。最初に欠けているフィールドを報告する。
	required := []struct {
		name  string
		value string
	}{
		{"username", req.Username},
		{"password", req.Password},
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"phone", req.Phone},
	}
	for _, field := range required {
		if field.value == "" {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError(field.name))
			return
		}
	}

	token, _, err := h.service.Register(r.Context(), req.Username, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration()
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// Login は資格情報の照合とトークン発行を処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.Username == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("username"))
		return
	}
	if req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("password"))
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLoginFailure()
			h.metrics.RecordLoginLatency(time.Since(start))
		}
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
		h.metrics.RecordLoginLatency(time.Since(start))
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
