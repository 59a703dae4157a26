package store

import (
	"context"
	"database/sql"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Upsert records that the user exists. Called on every inbound message.
func (r *UserRepo) Upsert(ctx context.Context, userID string) error {
	const q = `insert into users (user_id) values ($1)
	           on conflict (user_id) do nothing`
	_, err := r.DB.ExecContext(ctx, q, userID)
	return err
}

// ListIDs returns every known user, for the scheduled quiz broadcast.
func (r *UserRepo) ListIDs(ctx context.Context) ([]string, error) {
	const q = `select user_id from users order by user_id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
