package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/msgbox/internal/model"
	"github.com/hitoshi/msgbox/internal/repository"
)

// RecipientFinder は受信者の存在確認に必要な最小インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type RecipientFinder interface {
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
}

// Service はメッセージ送受信のサービス層。
// 認可判定はguardの純粋関数に委譲し、ここでは取得と更新の順序を制御する。
type Service struct {
	messages repository.MessageRepository
	users    RecipientFinder
}

// NewService はServiceを生成する。
func NewService(messages repository.MessageRepository, users RecipientFinder) *Service {
	return &Service{
		messages: messages,
		users:    users,
	}
}

// Send は認証済みの呼び出し元fromからtoへメッセージを送信する。
// 送信者はリクエストボディではなく必ず認証済みの呼び出し元から取る。
// 受信者が存在しない場合はUserNotFoundを返す。
func (s *Service) Send(ctx context.Context, from, to, body string) (*model.Message, error) {
	recipient, err := s.users.FindByUsername(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recipient: %w", err)
	}
	if recipient == nil {
		return nil, model.NewUserNotFoundError(to)
	}

	msg := &model.Message{
		ID:           uuid.New().String(),
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       time.Now(),
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		// 存在確認後に参加者が消えた場合はFK違反としてここに届く
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewUserNotFoundError(to)
		}
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	slog.Info("message sent",
		slog.String("message_id", msg.ID),
		slog.String("from", from),
		slog.String("to", to),
	)

	return msg, nil
}

// Get は指定IDのメッセージ詳細を両参加者のプロフィール付きで返す。
// 閲覧は参加者のみ許可する。
func (s *Service) Get(ctx context.Context, id, caller string) (*model.MessageView, error) {
	view, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	if view == nil {
		return nil, model.NewMessageNotFoundError(id)
	}

	if err := CanView(caller, view); err != nil {
		return nil, err
	}

	return view, nil
}

// MarkRead は受信者による既読化を行い、既読日時を含むビューを返す。
// 既に既読の場合は何もせず元の既読日時を返す。既読日時は一度設定されたら動かない。
func (s *Service) MarkRead(ctx context.Context, id, caller string) (*model.MessageView, error) {
	view, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find message: %w", err)
	}
	if view == nil {
		return nil, model.NewMessageNotFoundError(id)
	}

	if err := CanMarkRead(caller, view); err != nil {
		return nil, err
	}

	readAt, err := s.messages.MarkRead(ctx, id, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewMessageNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}

	view.ReadAt = readAt
	return view, nil
}

// ListSent は呼び出し元が送信したメッセージ一覧を受信者プロフィール付きで返す。
func (s *Service) ListSent(ctx context.Context, username string) ([]repository.MessageWithCounterpart, error) {
	results, err := s.messages.ListFrom(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent messages: %w", err)
	}
	return results, nil
}

// ListReceived は呼び出し元が受信したメッセージ一覧を送信者プロフィール付きで返す。
func (s *Service) ListReceived(ctx context.Context, username string) ([]repository.MessageWithCounterpart, error) {
	results, err := s.messages.ListTo(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list received messages: %w", err)
	}
	return results, nil
}
