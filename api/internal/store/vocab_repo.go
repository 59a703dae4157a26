package store

import (
	"context"
	"database/sql"
	"math/rand"
	"strings"
	"time"
)

// Vocab is one stored (word, meaning, example) record.
type Vocab struct {
	ID        int64
	Word      string
	Meaning   string
	Example   string
	CreatedBy string
	CreatedAt time.Time
}

type VocabRepo struct{ DB *sql.DB }

func NewVocabRepo(db *sql.DB) *VocabRepo { return &VocabRepo{DB: db} }

const vocabCols = `id, word, coalesce(meaning,''), coalesce(example_sentence,''), coalesce(created_by,''), created_at`

func scanVocab(row interface{ Scan(...any) error }) (Vocab, error) {
	var v Vocab
	err := row.Scan(&v.ID, &v.Word, &v.Meaning, &v.Example, &v.CreatedBy, &v.CreatedAt)
	return v, err
}

// Random picks a random entry whose word is not in exclude (case-insensitive).
// When every entry is excluded it falls back to the full list, so a user who
// has learned everything keeps getting questions. Returns ErrNotFound only
// when the table is empty.
func (r *VocabRepo) Random(ctx context.Context, exclude []string) (Vocab, error) {
	const q = `select ` + vocabCols + ` from vocab`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return Vocab{}, err
	}
	defer rows.Close()

	var all []Vocab
	for rows.Next() {
		v, err := scanVocab(rows)
		if err != nil {
			return Vocab{}, err
		}
		all = append(all, v)
	}
	if err := rows.Err(); err != nil {
		return Vocab{}, err
	}
	if len(all) == 0 {
		return Vocab{}, ErrNotFound
	}

	seen := make(map[string]bool, len(exclude))
	for _, w := range exclude {
		seen[strings.ToLower(w)] = true
	}
	var avail []Vocab
	for _, v := range all {
		if !seen[strings.ToLower(v.Word)] {
			avail = append(avail, v)
		}
	}
	if len(avail) == 0 {
		avail = all
	}
	return avail[rand.Intn(len(avail))], nil
}

// Recent returns the n most recently added entries.
func (r *VocabRepo) Recent(ctx context.Context, n int) ([]Vocab, error) {
	const q = `select ` + vocabCols + ` from vocab order by id desc limit $1`
	rows, err := r.DB.QueryContext(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vocab
	for rows.Next() {
		v, err := scanVocab(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Search does a case-insensitive substring match on word.
func (r *VocabRepo) Search(ctx context.Context, sub string) ([]Vocab, error) {
	const q = `select ` + vocabCols + ` from vocab
	           where word ilike '%' || $1 || '%'
	           order by word limit 10`
	rows, err := r.DB.QueryContext(ctx, q, sub)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vocab
	for rows.Next() {
		v, err := scanVocab(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetByWord fetches an entry by exact word, ignoring case.
func (r *VocabRepo) GetByWord(ctx context.Context, word string) (Vocab, error) {
	const q = `select ` + vocabCols + ` from vocab where lower(word) = lower($1)`
	return scanVocab(r.DB.QueryRowContext(ctx, q, word))
}

func (r *VocabRepo) Insert(ctx context.Context, v Vocab) error {
	const q = `insert into vocab (word, meaning, example_sentence, created_by)
	           values ($1, $2, $3, $4)`
	_, err := r.DB.ExecContext(ctx, q, v.Word, v.Meaning, v.Example, v.CreatedBy)
	return err
}

// Delete removes the entry by exact word (case-insensitive) and reports how
// many rows went away.
func (r *VocabRepo) Delete(ctx context.Context, word string) (int64, error) {
	const q = `delete from vocab where lower(word) = lower($1)`
	res, err := r.DB.ExecContext(ctx, q, word)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
