package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
)

type ScoreRepo struct{ DB *sql.DB }

func NewScoreRepo(db *sql.DB) *ScoreRepo { return &ScoreRepo{DB: db} }

// Get returns the score and learned-word list for a user. A user with no
// score row yet is reported as (0, nil) rather than an error, so a quiz
// stays playable even before the first score-affecting event.
func (r *ScoreRepo) Get(ctx context.Context, userID string) (int, []string, error) {
	const q = `select score, learned_words from user_scores where user_id = $1`
	var (
		score int
		js    []byte
	)
	if err := r.DB.QueryRowContext(ctx, q, userID).Scan(&score, &js); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, nil
		}
		return 0, nil, err
	}
	var learned []string
	if len(js) > 0 {
		if err := json.Unmarshal(js, &learned); err != nil {
			// broken column payload behaves like an empty list
			learned = nil
		}
	}
	return score, learned, nil
}

func (r *ScoreRepo) upsert(ctx context.Context, userID string, score int, learned []string) error {
	if learned == nil {
		learned = []string{}
	}
	js, _ := json.Marshal(learned)
	const q = `
insert into user_scores (user_id, score, learned_words)
values ($1, $2, $3)
on conflict (user_id) do update
set score = excluded.score,
    learned_words = excluded.learned_words`
	_, err := r.DB.ExecContext(ctx, q, userID, score, js)
	return err
}

// AddPoints applies a score delta (may be negative; the balance is allowed
// to go below zero) and returns the new total.
func (r *ScoreRepo) AddPoints(ctx context.Context, userID string, delta int) (int, error) {
	score, learned, err := r.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	score += delta
	if err := r.upsert(ctx, userID, score, learned); err != nil {
		return 0, err
	}
	return score, nil
}

// MarkLearned adds the word to the user's learned set (case-insensitive dedup).
func (r *ScoreRepo) MarkLearned(ctx context.Context, userID, word string) error {
	score, learned, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	next := AppendLearned(learned, word)
	if len(next) == len(learned) {
		return nil
	}
	return r.upsert(ctx, userID, score, next)
}

// AppendLearned appends word to the list unless it is already present,
// ignoring case. Words are stored lowercased.
func AppendLearned(learned []string, word string) []string {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return learned
	}
	for _, have := range learned {
		if strings.EqualFold(have, w) {
			return learned
		}
	}
	return append(learned, w)
}
