package store

import (
	"context"
	"database/sql"
)

// AnswerRepo keeps a log of every graded submission. quiz_answers has a
// foreign key on vocab(word), so rows here must be removed before their
// vocab entry can be deleted.
type AnswerRepo struct{ DB *sql.DB }

func NewAnswerRepo(db *sql.DB) *AnswerRepo { return &AnswerRepo{DB: db} }

func (r *AnswerRepo) Insert(ctx context.Context, userID, word, answer string, correct bool) error {
	const q = `insert into quiz_answers (user_id, word, answer, is_correct)
	           values ($1, $2, $3, $4)`
	_, err := r.DB.ExecContext(ctx, q, userID, word, answer, correct)
	return err
}

func (r *AnswerRepo) DeleteByWord(ctx context.Context, word string) error {
	const q = `delete from quiz_answers where lower(word) = lower($1)`
	_, err := r.DB.ExecContext(ctx, q, word)
	return err
}
