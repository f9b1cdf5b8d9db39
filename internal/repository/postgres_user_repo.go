package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/msgbox/internal/model"
)

// uniqueViolationCode はPostgreSQLのユニーク制約違反のSQLSTATE。
const uniqueViolationCode = "23505"

// foreignKeyViolationCode はPostgreSQLの外部キー制約違反のSQLSTATE。
const foreignKeyViolationCode = "23503"

// isPqError はerrが指定SQLSTATEのpqエラーかを判定する。
func isPqError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

// PostgresUserRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Create はアカウントを作成する。
// ユーザー名が既に存在する場合はErrDuplicateUsernameを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, account *model.Account) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, first_name, last_name, phone)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING joined_at, last_login_at`,
		account.Username, account.PasswordHash, account.FirstName, account.LastName, account.Phone,
	).Scan(&account.JoinedAt, &account.LastLoginAt)

	if isPqError(err, uniqueViolationCode) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// FindByUsername は指定ユーザー名のアカウントをハッシュ込みで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password_hash, first_name, last_name, phone, joined_at, last_login_at
		 FROM users WHERE username = $1`,
		username,
	).Scan(
		&account.Username, &account.PasswordHash,
		&account.FirstName, &account.LastName, &account.Phone,
		&account.JoinedAt, &account.LastLoginAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	return account, nil
}

// ListPublic は全アカウントの公開プロフィールを登録順で返す。
func (r *PostgresUserRepo) ListPublic(ctx context.Context) ([]model.PublicProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username, first_name, last_name, phone
		 FROM users ORDER BY joined_at ASC, username ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var profiles []model.PublicProfile
	for rows.Next() {
		var p model.PublicProfile
		if err := rows.Scan(&p.Username, &p.FirstName, &p.LastName, &p.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return profiles, nil
}

// UpdateLastLogin は最終ログイン日時を現在時刻に更新する。
func (r *PostgresUserRepo) UpdateLastLogin(ctx context.Context, username string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = now() WHERE username = $1`,
		username,
	)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
