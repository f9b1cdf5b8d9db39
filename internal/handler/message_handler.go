package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/msgbox/internal/middleware"
	"github.com/hitoshi/msgbox/internal/model"
)

// MessageServiceInterface はメッセージハンドラーが必要とするサービスインターフェース。
type MessageServiceInterface interface {
	// Send はfromからtoへメッセージを送信する。
	Send(ctx context.Context, from, to, body string) (*model.Message, error)
	// Get は指定IDのメッセージ詳細を返す。callerが参加者でない場合はエラー。
	Get(ctx context.Context, id, caller string) (*model.MessageView, error)
	// MarkRead は指定IDのメッセージを既読にする。callerが受信者でない場合はエラー。
	MarkRead(ctx context.Context, id, caller string) (*model.MessageView, error)
}

// MessageMetrics はメッセージハンドラーが記録するメトリクスのインターフェース。
type MessageMetrics interface {
	RecordMessageSent()
	RecordMessageRead()
}

// MessageHandler はメッセージ送信・取得・既読化のHTTPハンドラー。
type MessageHandler struct {
	service MessageServiceInterface
	metrics MessageMetrics
}

// NewMessageHandler はMessageHandlerを生成する。metricsはnil可。
func NewMessageHandler(service MessageServiceInterface, metrics MessageMetrics) *MessageHandler {
	return &MessageHandler{
		service: service,
		metrics: metrics,
	}
}

// sendMessageRequest はメッセージ送信リクエストのボディ。
type sendMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// messageResponse は送信直後のメッセージのAPIレスポンス。
type messageResponse struct {
	ID           string     `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// messageViewResponse はメッセージ詳細のAPIレスポンス。両参加者のプロフィールを含む。
type messageViewResponse struct {
	ID       string          `json:"id"`
	Body     string          `json:"body"`
	SentAt   time.Time       `json:"sent_at"`
	ReadAt   *time.Time      `json:"read_at"`
	FromUser profileResponse `json:"from_user"`
	ToUser   profileResponse `json:"to_user"`
}

// markReadResponse は既読化のAPIレスポンス。
type markReadResponse struct {
	ID     string     `json:"id"`
	ReadAt *time.Time `json:"read_at"`
}

// toMessageViewResponse はメッセージビューをレスポンス形式に変換する。
func toMessageViewResponse(v *model.MessageView) messageViewResponse {
	return messageViewResponse{
		ID:       v.ID,
		Body:     v.Body,
		SentAt:   v.SentAt,
		ReadAt:   v.ReadAt,
		FromUser: toProfileResponse(v.FromUser),
		ToUser:   toProfileResponse(v.ToUser),
	}
}

// SendMessage はメッセージ送信を処理する。送信者はトークンの認証済みユーザー。
// POST /api/messages
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	from, err := middleware.UsernameFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	if req.ToUsername == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("to_username"))
		return
	}
	if req.Body == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingFieldError("body"))
		return
	}

	message, err := h.service.Send(r.Context(), from, req.ToUsername, req.Body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordMessageSent()
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		ID:           message.ID,
		FromUsername: message.FromUsername,
		ToUsername:   message.ToUsername,
		Body:         message.Body,
		SentAt:       message.SentAt,
		ReadAt:       message.ReadAt,
	})
}

// GetMessage はメッセージ詳細を返す。参加者のみ閲覧できる。
// GET /api/messages/{id}
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.UsernameFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	view, err := h.service.Get(r.Context(), id, caller)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMessageViewResponse(view))
}

// MarkMessageRead はメッセージの既読化を処理する。受信者のみ実行できる。
// POST /api/messages/{id}/read
func (h *MessageHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	caller, err := middleware.UsernameFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	id := chi.URLParam(r, "id")

	view, err := h.service.MarkRead(r.Context(), id, caller)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordMessageRead()
	}

	writeJSON(w, http.StatusOK, markReadResponse{
		ID:     view.ID,
		ReadAt: view.ReadAt,
	})
}
