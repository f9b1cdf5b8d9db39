package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/msgbox/internal/middleware"
	"github.com/hitoshi/msgbox/internal/model"
	"github.com/hitoshi/msgbox/internal/repository"
	"github.com/hitoshi/msgbox/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// ListUsers は全アカウントの公開プロフィール一覧を返す。
	ListUsers(ctx context.Context) ([]model.PublicProfile, error)
	// Get は指定ユーザー名のアカウント詳細を返す。
	Get(ctx context.Context, username string) (*user.AccountDetail, error)
}

// MessageListService は自分宛・自分発のメッセージ一覧取得のインターフェース。
// message.Serviceの部分集合として定義する。
type MessageListService interface {
	// ListSent はusernameが送信したメッセージ一覧を返す。
	ListSent(ctx context.Context, username string) ([]repository.MessageWithCounterpart, error)
	// ListReceived はusernameが受信したメッセージ一覧を返す。
	ListReceived(ctx context.Context, username string) ([]repository.MessageWithCounterpart, error)
}

// UserHandler はユーザー一覧・詳細・メッセージ一覧のHTTPハンドラー。
type UserHandler struct {
	service  UserServiceInterface
	messages MessageListService
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, messages MessageListService) *UserHandler {
	return &UserHandler{
		service:  service,
		messages: messages,
	}
}

// profileResponse は公開プロフィールのAPIレスポンス。
type profileResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// userDetailResponse はアカウント詳細のAPIレスポンス。
type userDetailResponse struct {
	profileResponse
	JoinedAt    time.Time `json:"joined_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// sentMessageResponse は送信メッセージ一覧の項目。受信者プロフィールを含む。
type sentMessageResponse struct {
	ID     string          `json:"id"`
	Body   string          `json:"body"`
	SentAt time.Time       `json:"sent_at"`
	ReadAt *time.Time      `json:"read_at"`
	ToUser profileResponse `json:"to_user"`
}

// receivedMessageResponse は受信メッセージ一覧の項目。送信者プロフィールを含む。
type receivedMessageResponse struct {
	ID       string          `json:"id"`
	Body     string          `json:"body"`
	SentAt   time.Time       `json:"sent_at"`
	ReadAt   *time.Time      `json:"read_at"`
	FromUser profileResponse `json:"from_user"`
}

// toProfileResponse は公開プロフィールをレスポンス形式に変換する。
func toProfileResponse(p model.PublicProfile) profileResponse {
	return profileResponse{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
}

// ListUsers は全ユーザーの公開プロフィール一覧を返す。
// GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		body = append(body, toProfileResponse(p))
	}

	writeJSON(w, http.StatusOK, body)
}

// GetUser は指定ユーザーの詳細を返す。
// GET /api/users/{username}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	detail, err := h.service.Get(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userDetailResponse{
		profileResponse: toProfileResponse(detail.PublicProfile),
		JoinedAt:        detail.JoinedAt,
		LastLoginAt:     detail.LastLoginAt,
	})
}

// ListSentMessages は認証済みユーザーが送信したメッセージ一覧を返す。
// GET /api/users/me/messages/from
func (h *UserHandler) ListSentMessages(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.UsernameFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	messages, err := h.messages.ListSent(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body := make([]sentMessageResponse, 0, len(messages))
	for _, m := range messages {
		body = append(body, sentMessageResponse{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: toProfileResponse(m.Counterpart),
		})
	}

	writeJSON(w, http.StatusOK, body)
}

// ListReceivedMessages は認証済みユーザーが受信したメッセージ一覧を返す。
// GET /api/users/me/messages/to
func (h *UserHandler) ListReceivedMessages(w http.ResponseWriter, r *http.Request) {
	username, err := middleware.UsernameFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	messages, err := h.messages.ListReceived(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body := make([]receivedMessageResponse, 0, len(messages))
	for _, m := range messages {
		body = append(body, receivedMessageResponse{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: toProfileResponse(m.Counterpart),
		})
	}

	writeJSON(w, http.StatusOK, body)
}
