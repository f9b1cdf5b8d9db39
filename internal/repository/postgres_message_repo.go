package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/msgbox/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用したメッセージリポジトリ。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// Create はメッセージを作成する。
// 参加者のいずれかが存在しない場合はErrNotFoundを返す。
func (r *PostgresMessageRepo) Create(ctx context.Context, message *model.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, from_username, to_username, body, sent_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		message.ID, message.FromUsername, message.ToUsername, message.Body, message.SentAt,
	)

	if isPqError(err, foreignKeyViolationCode) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// FindByID は指定IDのメッセージを両参加者のプロフィール付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresMessageRepo) FindByID(ctx context.Context, id string) (*model.MessageView, error) {
	view := &model.MessageView{}
	err := r.db.QueryRowContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages AS m
		 INNER JOIN users AS f ON m.from_username = f.username
		 INNER JOIN users AS t ON m.to_username = t.username
		 WHERE m.id = $1`,
		id,
	).Scan(
		&view.ID, &view.Body, &view.SentAt, &view.ReadAt,
		&view.FromUser.Username, &view.FromUser.FirstName, &view.FromUser.LastName, &view.FromUser.Phone,
		&view.ToUser.Username, &view.ToUser.FirstName, &view.ToUser.LastName, &view.ToUser.Phone,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find message: %w", err)
	}

	return view, nil
}

// MarkRead は未読メッセージの既読日時をreadAtに設定し、結果の既読日時を返す。
// 既に既読の場合は更新せず元の既読日時を返す。設定済みの既読日時は決して動かない。
func (r *PostgresMessageRepo) MarkRead(ctx context.Context, id string, readAt time.Time) (*time.Time, error) {
	var result time.Time
	err := r.db.QueryRowContext(ctx,
		`UPDATE messages SET read_at = $2
		 WHERE id = $1 AND read_at IS NULL
		 RETURNING read_at`,
		id, readAt,
	).Scan(&result)

	if err == sql.ErrNoRows {
		// 未読行が無い: 既読済みか、メッセージ自体が存在しない
		var existing *time.Time
		err := r.db.QueryRowContext(ctx,
			`SELECT read_at FROM messages WHERE id = $1`,
			id,
		).Scan(&existing)
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read message state: %w", err)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}

	return &result, nil
}

// ListFrom は指定ユーザーが送信したメッセージ一覧を受信者プロフィール付きで返す。
func (r *PostgresMessageRepo) ListFrom(ctx context.Context, username string) ([]MessageWithCounterpart, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.from_username, m.to_username, m.body, m.sent_at, m.read_at,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages AS m
		 INNER JOIN users AS t ON m.to_username = t.username
		 WHERE m.from_username = $1
		 ORDER BY m.sent_at ASC, m.id ASC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent messages: %w", err)
	}
	defer rows.Close()

	return scanMessagesWithCounterpart(rows)
}

// ListTo は指定ユーザーが受信したメッセージ一覧を送信者プロフィール付きで返す。
func (r *PostgresMessageRepo) ListTo(ctx context.Context, username string) ([]MessageWithCounterpart, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.from_username, m.to_username, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone
		 FROM messages AS m
		 INNER JOIN users AS f ON m.from_username = f.username
		 WHERE m.to_username = $1
		 ORDER BY m.sent_at ASC, m.id ASC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list received messages: %w", err)
	}
	defer rows.Close()

	return scanMessagesWithCounterpart(rows)
}

// scanMessagesWithCounterpart はメッセージと相手プロフィールの結合行を読み取る。
func scanMessagesWithCounterpart(rows *sql.Rows) ([]MessageWithCounterpart, error) {
	var results []MessageWithCounterpart
	for rows.Next() {
		var mc MessageWithCounterpart
		err := rows.Scan(
			&mc.ID, &mc.FromUsername, &mc.ToUsername, &mc.Body, &mc.SentAt, &mc.ReadAt,
			&mc.Counterpart.Username, &mc.Counterpart.FirstName, &mc.Counterpart.LastName, &mc.Counterpart.Phone,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		results = append(results, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}

	return results, nil
}

// compile-time interface check
var _ MessageRepository = (*PostgresMessageRepo)(nil)
