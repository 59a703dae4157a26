package quiz

import (
	"context"
	"errors"
	"log"
	"time"

	"teacher-bot/api/internal/store"
)

// Collaborator surfaces the manager needs from the persistence layer.
type VocabPicker interface {
	Random(ctx context.Context, exclude []string) (store.Vocab, error)
}

type ScoreStore interface {
	Get(ctx context.Context, userID string) (int, []string, error)
	AddPoints(ctx context.Context, userID string, delta int) (int, error)
	MarkLearned(ctx context.Context, userID, word string) error
}

type AnswerLog interface {
	Insert(ctx context.Context, userID, word, answer string, correct bool) error
}

// Manager runs the per-user quiz state machine: Idle <-> AwaitingAnswer.
type Manager struct {
	Sessions SessionRepository
	Vocab    VocabPicker
	Scores   ScoreStore
	Answers  AnswerLog
	Grader   *Grader

	MaxAttempts int
	BaseAward   int
	HintPenalty int
	FailPenalty int // deducted when all attempts are used up
}

type BeginResult struct {
	Empty bool // vocabulary table has no entries
	Word  string
}

type HintResult struct {
	NoSession  bool
	Meaning    string
	Charged    bool // penalty applied on this call (first reveal only)
	ScoreKnown bool // NewScore is trustworthy; false when the write failed
	NewScore   int
}

type SubmitResult struct {
	NoSession bool
	Ungraded  bool // grader could not reach a verdict; session untouched

	Correct  bool
	Reason   string
	Examples []string

	Awarded      int // points granted on correct
	Penalty      int // points deducted when attempts ran out
	NewScore     int
	AttemptsLeft int
	Revealed     bool // meaning revealed after the last failed attempt

	Word    string
	Meaning string
}

// Begin starts a new session, replacing any existing one for the user. The
// picked word excludes what the user has already learned; when everything is
// learned the pick falls back to the full list.
func (m *Manager) Begin(ctx context.Context, userID string) (BeginResult, error) {
	_, learned, err := m.Scores.Get(ctx, userID)
	if err != nil {
		// score history being unavailable must not block a quiz
		log.Printf("quiz: get score for %s: %v", userID, err)
		learned = nil
	}

	v, err := m.Vocab.Random(ctx, learned)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return BeginResult{Empty: true}, nil
		}
		return BeginResult{}, err
	}

	m.Sessions.Put(&Session{
		UserID:    userID,
		Word:      v.Word,
		Meaning:   v.Meaning,
		CreatedAt: time.Now(),
	})
	return BeginResult{Word: v.Word}, nil
}

// Hint reveals the target meaning. The penalty is charged exactly once; a
// repeated hint re-reveals for free.
func (m *Manager) Hint(ctx context.Context, userID string) HintResult {
	s, ok := m.Sessions.Get(userID)
	if !ok {
		return HintResult{NoSession: true}
	}
	if s.HintGiven {
		return HintResult{Meaning: s.Meaning}
	}

	newScore, err := m.Scores.AddPoints(ctx, userID, -m.HintPenalty)
	if err != nil {
		// reveal anyway; the hint itself is the point
		log.Printf("quiz: hint penalty for %s: %v", userID, err)
	}
	s.HintGiven = true
	m.Sessions.Put(s)
	return HintResult{Meaning: s.Meaning, Charged: true, ScoreKnown: err == nil, NewScore: newScore}
}

// Cancel drops the user's session and any pending deletion. Reports whether
// there was anything to drop.
func (m *Manager) Cancel(userID string) bool {
	_, hadSession := m.Sessions.Get(userID)
	_, hadPending := m.Sessions.GetPending(userID)
	m.Sessions.Delete(userID)
	m.Sessions.DeletePending(userID)
	return hadSession || hadPending
}

// Submit grades a free-text answer against the active session.
func (m *Manager) Submit(ctx context.Context, userID, answer string) SubmitResult {
	s, ok := m.Sessions.Get(userID)
	if !ok {
		return SubmitResult{NoSession: true}
	}

	g := m.Grader.Grade(ctx, s.Word, s.Meaning, answer)
	if !g.Graded {
		return SubmitResult{Ungraded: true, Word: s.Word}
	}

	if err := m.Answers.Insert(ctx, userID, s.Word, answer, g.Correct); err != nil {
		log.Printf("quiz: log answer for %s: %v", userID, err)
	}

	if g.Correct {
		award := m.BaseAward - 2*s.Attempts
		if s.HintGiven {
			award -= m.HintPenalty
		}
		if award < 1 {
			award = 1
		}
		newScore, err := m.Scores.AddPoints(ctx, userID, award)
		if err != nil {
			log.Printf("quiz: award for %s: %v", userID, err)
		}
		if err := m.Scores.MarkLearned(ctx, userID, s.Word); err != nil {
			log.Printf("quiz: mark learned for %s: %v", userID, err)
		}
		m.Sessions.Delete(userID)
		return SubmitResult{
			Correct:  true,
			Reason:   g.Reason,
			Examples: g.Examples,
			Awarded:  award,
			NewScore: newScore,
			Word:     s.Word,
			Meaning:  s.Meaning,
		}
	}

	s.Attempts++
	if s.Attempts >= m.MaxAttempts {
		newScore, err := m.Scores.AddPoints(ctx, userID, -m.FailPenalty)
		if err != nil {
			log.Printf("quiz: exhaustion penalty for %s: %v", userID, err)
		}
		m.Sessions.Delete(userID)
		return SubmitResult{
			Reason:   g.Reason,
			Examples: g.Examples,
			Penalty:  m.FailPenalty,
			NewScore: newScore,
			Revealed: true,
			Word:     s.Word,
			Meaning:  s.Meaning,
		}
	}

	m.Sessions.Put(s)
	return SubmitResult{
		Reason:       g.Reason,
		Examples:     g.Examples,
		AttemptsLeft: m.MaxAttempts - s.Attempts,
		Word:         s.Word,
	}
}
