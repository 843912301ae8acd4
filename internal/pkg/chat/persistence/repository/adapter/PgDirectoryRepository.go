package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
	repository "github.com/xiaoxin-go/webchat/internal/pkg/chat/persistence/repository/port"
)

// uniqueViolation is the Postgres error code raised when the
// (owner_id, target_id, kind) unique index rejects a duplicate insert.
const uniqueViolation = "23505"

// PgDirectoryRepository persists per-viewer conversation records in the
// chat_conversations table. The unique index on (owner_id, target_id, kind)
// is what makes concurrent ResolveOrCreate converge on a single row.
type PgDirectoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgDirectoryRepository(pool *pgxpool.Pool) *PgDirectoryRepository {
	return &PgDirectoryRepository{pool: pool}
}

var _ repository.Directory = (*PgDirectoryRepository)(nil)

func (r *PgDirectoryRepository) ResolveOrCreate(ctx context.Context, ownerID, targetID int64, kind chat.Kind) (chat.Conversation, error) {
	now := time.Now()
	c := chat.Conversation{OwnerID: ownerID, TargetID: targetID, Kind: kind}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_conversations (owner_id, target_id, kind, last_message, unread, created_at, updated_at)
		VALUES ($1, $2, $3, '', 0, $4, $4)
		RETURNING id, last_message, unread, created_at, updated_at
	`, ownerID, targetID, int16(kind), now).Scan(&c.ID, &c.LastMessage, &c.Unread, &c.CreatedAt, &c.UpdatedAt)
	if err == nil {
		return c, nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return chat.Conversation{}, err
	}

	// Lost the race: the earliest row wins, read it back.
	return r.lookup(ctx, ownerID, targetID, kind)
}

func (r *PgDirectoryRepository) lookup(ctx context.Context, ownerID, targetID int64, kind chat.Kind) (chat.Conversation, error) {
	c := chat.Conversation{OwnerID: ownerID, TargetID: targetID, Kind: kind}
	err := r.pool.QueryRow(ctx, `
		SELECT id, last_message, unread, created_at, updated_at
		FROM chat_conversations
		WHERE owner_id = $1 AND target_id = $2 AND kind = $3
	`, ownerID, targetID, int16(kind)).Scan(&c.ID, &c.LastMessage, &c.Unread, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, repository.ErrNotFound
	}
	if err != nil {
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PgDirectoryRepository) Get(ctx context.Context, id int64) (chat.Conversation, error) {
	var (
		c    chat.Conversation
		kind int16
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, target_id, kind, last_message, unread, created_at, updated_at
		FROM chat_conversations
		WHERE id = $1
	`, id).Scan(&c.ID, &c.OwnerID, &c.TargetID, &kind, &c.LastMessage, &c.Unread, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, repository.ErrNotFound
	}
	if err != nil {
		return chat.Conversation{}, err
	}
	c.Kind = chat.Kind(kind)
	return c, nil
}

func (r *PgDirectoryRepository) ListForUser(ctx context.Context, ownerID int64) ([]chat.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, target_id, kind, last_message, unread, created_at, updated_at
		FROM chat_conversations
		WHERE owner_id = $1
		ORDER BY updated_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		var (
			c    chat.Conversation
			kind int16
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.TargetID, &kind, &c.LastMessage, &c.Unread, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Kind = chat.Kind(kind)
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (r *PgDirectoryRepository) Touch(ctx context.Context, id int64, lastMessage string, at time.Time, bumpUnread bool) error {
	bump := 0
	if bumpUnread {
		bump = 1
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat_conversations
		SET last_message = $2, updated_at = $3, unread = unread + $4
		WHERE id = $1
	`, id, lastMessage, at, bump)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgDirectoryRepository) ClearUnread(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE chat_conversations SET unread = 0 WHERE id = $1`, id)
	return err
}

func (r *PgDirectoryRepository) Delete(ctx context.Context, id, ownerID int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM chat_conversations WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
