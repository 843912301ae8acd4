package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	repository "github.com/xiaoxin-go/webchat/internal/repository/port"
)

// PgSocialRepository reads the user/friend/group tables owned by the CRUD
// layer. Only the columns the chat core needs are selected.
type PgSocialRepository struct {
	pool *pgxpool.Pool
}

func NewPgSocialRepository(pool *pgxpool.Pool) *PgSocialRepository {
	return &PgSocialRepository{pool: pool}
}

var _ repository.Social = (*PgSocialRepository)(nil)

func (r *PgSocialRepository) UserDisplay(ctx context.Context, userID int64) (repository.Display, error) {
	var d repository.Display
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(NULLIF(nickname, ''), username), COALESCE(logo, '')
		FROM t_user
		WHERE id = $1
	`, userID).Scan(&d.Name, &d.Logo)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.Display{}, repository.ErrUserNotFound
	}
	if err != nil {
		return repository.Display{}, err
	}
	return d, nil
}

func (r *PgSocialRepository) IsFriend(ctx context.Context, userID, friendID int64) (bool, error) {
	var one int8
	err := r.pool.QueryRow(ctx, `
		SELECT 1 FROM t_friends WHERE user_id = $1 AND friend_id = $2
	`, userID, friendID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PgSocialRepository) FriendRemark(ctx context.Context, userID, friendID int64) (string, error) {
	var remark string
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(remark, '') FROM t_friends WHERE user_id = $1 AND friend_id = $2
	`, userID, friendID).Scan(&remark)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return remark, nil
}

func (r *PgSocialRepository) GroupDisplay(ctx context.Context, groupID int64) (repository.Display, error) {
	var d repository.Display
	err := r.pool.QueryRow(ctx, `
		SELECT group_name, COALESCE(logo, '') FROM t_group WHERE id = $1
	`, groupID).Scan(&d.Name, &d.Logo)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.Display{}, repository.ErrGroupNotFound
	}
	if err != nil {
		return repository.Display{}, err
	}
	return d, nil
}

func (r *PgSocialRepository) GroupMembers(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM t_groupuser WHERE group_id = $1 ORDER BY user_id
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
