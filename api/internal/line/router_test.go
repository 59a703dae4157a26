package line

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teacher-bot/api/internal/quiz"
	"teacher-bot/api/internal/store"
)

type fakeOracle struct {
	generate func(ctx context.Context, prompt string) (string, error)
	calls    int
}

func (f *fakeOracle) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.generate(ctx, prompt)
}

type fakePresence struct{ upserts []string }

func (f *fakePresence) Upsert(ctx context.Context, userID string) error {
	f.upserts = append(f.upserts, userID)
	return nil
}

type memScores struct {
	score   int
	learned []string
}

func (m *memScores) Get(ctx context.Context, userID string) (int, []string, error) {
	return m.score, m.learned, nil
}

func (m *memScores) AddPoints(ctx context.Context, userID string, delta int) (int, error) {
	m.score += delta
	return m.score, nil
}

func (m *memScores) MarkLearned(ctx context.Context, userID, word string) error {
	m.learned = store.AppendLearned(m.learned, word)
	return nil
}

// fakeVocabStore backs both the router's VocabStore and the manager's
// VocabPicker, recording call order so the FK discipline is checkable.
type fakeVocabStore struct {
	entries []store.Vocab
	inserts int
	ops     []string
}

func (f *fakeVocabStore) Random(ctx context.Context, exclude []string) (store.Vocab, error) {
	if len(f.entries) == 0 {
		return store.Vocab{}, store.ErrNotFound
	}
	seen := make(map[string]bool, len(exclude))
	for _, w := range exclude {
		seen[strings.ToLower(w)] = true
	}
	for _, v := range f.entries {
		if !seen[strings.ToLower(v.Word)] {
			return v, nil
		}
	}
	return f.entries[0], nil
}

func (f *fakeVocabStore) Recent(ctx context.Context, n int) ([]store.Vocab, error) {
	if n > len(f.entries) {
		n = len(f.entries)
	}
	return f.entries[:n], nil
}

func (f *fakeVocabStore) Search(ctx context.Context, sub string) ([]store.Vocab, error) {
	var out []store.Vocab
	for _, v := range f.entries {
		if strings.Contains(strings.ToLower(v.Word), strings.ToLower(sub)) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVocabStore) GetByWord(ctx context.Context, word string) (store.Vocab, error) {
	for _, v := range f.entries {
		if strings.EqualFold(v.Word, word) {
			return v, nil
		}
	}
	return store.Vocab{}, store.ErrNotFound
}

func (f *fakeVocabStore) Insert(ctx context.Context, v store.Vocab) error {
	f.inserts++
	f.entries = append(f.entries, v)
	return nil
}

func (f *fakeVocabStore) Delete(ctx context.Context, word string) (int64, error) {
	f.ops = append(f.ops, "delete-vocab:"+strings.ToLower(word))
	var kept []store.Vocab
	var aff int64
	for _, v := range f.entries {
		if strings.EqualFold(v.Word, word) {
			aff++
			continue
		}
		kept = append(kept, v)
	}
	f.entries = kept
	return aff, nil
}

type fakeAnswers struct {
	vocab *fakeVocabStore
}

func (f *fakeAnswers) Insert(ctx context.Context, userID, word, answer string, correct bool) error {
	return nil
}

func (f *fakeAnswers) DeleteByWord(ctx context.Context, word string) error {
	f.vocab.ops = append(f.vocab.ops, "purge-answers:"+strings.ToLower(word))
	return nil
}

func newTestRouter(entries []store.Vocab, o *fakeOracle) (*Router, *fakeVocabStore, *memScores, *fakePresence) {
	vocab := &fakeVocabStore{entries: entries}
	scores := &memScores{}
	answers := &fakeAnswers{vocab: vocab}
	presence := &fakePresence{}
	sessions := quiz.NewMemoryRepository(time.Minute)
	manager := &quiz.Manager{
		Sessions:    sessions,
		Vocab:       vocab,
		Scores:      scores,
		Answers:     answers,
		Grader:      quiz.NewGrader(o),
		MaxAttempts: 3,
		BaseAward:   10,
		HintPenalty: 2,
		FailPenalty: 2,
	}
	r := &Router{
		Users:    presence,
		Scores:   scores,
		Vocab:    vocab,
		Answers:  answers,
		Quiz:     manager,
		Sessions: sessions,
		Oracle:   o,
	}
	return r, vocab, scores, presence
}

func brokenOracle() *fakeOracle {
	return &fakeOracle{generate: func(context.Context, string) (string, error) {
		return "", errors.New("oracle down")
	}}
}

var happyVocab = []store.Vocab{{Word: "happy", Meaning: "มีความสุข", Example: "I am happy."}}

func TestRouteMenuShowsScore(t *testing.T) {
	r, _, scores, presence := newTestRouter(happyVocab, brokenOracle())
	scores.score = 42
	scores.learned = []string{"happy"}

	out := r.Route(context.Background(), "u1", "เมนู")

	assert.Contains(t, out, "42")
	assert.Contains(t, out, "1 คำ")
	assert.Equal(t, []string{"u1"}, presence.upserts, "presence upsert on every message")
}

func TestRouteScoreAliases(t *testing.T) {
	r, _, scores, _ := newTestRouter(happyVocab, brokenOracle())
	scores.score = 7

	for _, alias := range []string{"คะแนน", "score", "SCORE", "สถิติ"} {
		out := r.Route(context.Background(), "u1", alias)
		assert.Contains(t, out, "7", "alias %q", alias)
	}
}

func TestRouteStartQuiz(t *testing.T) {
	r, _, _, _ := newTestRouter(happyVocab, brokenOracle())

	out := r.Route(context.Background(), "u1", "เริ่มเกม")

	assert.Contains(t, out, "happy")
	_, ok := r.Sessions.Get("u1")
	assert.True(t, ok)
}

func TestRouteStartQuizEmptyStore(t *testing.T) {
	r, _, _, _ := newTestRouter(nil, brokenOracle())

	out := r.Route(context.Background(), "u1", "start")

	assert.Equal(t, msgVocabEmpty(), out)
}

func TestRouteHintWithoutQuiz(t *testing.T) {
	r, _, scores, _ := newTestRouter(happyVocab, brokenOracle())
	scores.score = 5

	out := r.Route(context.Background(), "u1", "คำใบ้")

	assert.Equal(t, msgNoSession(), out)
	assert.Equal(t, 5, scores.score)
}

func TestRouteQuizRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _, scores, _ := newTestRouter(happyVocab, brokenOracle())

	r.Route(ctx, "u1", "เริ่มเกม")
	out := r.Route(ctx, "u1", "มีความสุข")

	assert.Contains(t, out, "+10")
	assert.Equal(t, 10, scores.score)
	assert.Contains(t, scores.learned, "happy")
	_, ok := r.Sessions.Get("u1")
	assert.False(t, ok)
}

func TestRouteFreeTextWithoutAnything(t *testing.T) {
	r, _, _, _ := newTestRouter(happyVocab, brokenOracle())

	out := r.Route(context.Background(), "u1", "hello there")

	assert.Equal(t, msgNothingToDo(), out)
}

func TestDeleteTwoPhaseCancelled(t *testing.T) {
	ctx := context.Background()
	r, vocab, _, _ := newTestRouter(happyVocab, brokenOracle())

	out := r.Route(ctx, "u1", "ลบ: hap")
	assert.Contains(t, out, "happy")
	_, ok := r.Sessions.GetPending("u1")
	require.True(t, ok, "single match parks a pending deletion")

	out = r.Route(ctx, "u1", "เปลี่ยนใจละ")
	assert.Equal(t, msgDeleteCancelled(), out)
	_, ok = r.Sessions.GetPending("u1")
	assert.False(t, ok)
	assert.Len(t, vocab.entries, 1, "the word survives a non-confirmation reply")
	assert.Empty(t, vocab.ops)
}

func TestDeleteTwoPhaseConfirmed(t *testing.T) {
	ctx := context.Background()
	r, vocab, _, _ := newTestRouter(happyVocab, brokenOracle())

	r.Route(ctx, "u1", "delete: happy")
	out := r.Route(ctx, "u1", "ยืนยัน")

	assert.Equal(t, msgDeleted("happy"), out)
	assert.Empty(t, vocab.entries)
	// dependent answer rows must go before the vocab row
	require.Equal(t, []string{"purge-answers:happy", "delete-vocab:happy"}, vocab.ops)
	_, ok := r.Sessions.GetPending("u1")
	assert.False(t, ok)
}

func TestDeleteAmbiguous(t *testing.T) {
	entries := []store.Vocab{
		{Word: "happy"}, {Word: "happiness"}, {Word: "haphazard"},
		{Word: "hapless"}, {Word: "perhaps"}, {Word: "mishap"},
	}
	r, _, _, _ := newTestRouter(entries, brokenOracle())

	out := r.Route(context.Background(), "u1", "ลบ: hap")

	assert.Contains(t, out, "หลายคำ")
	assert.LessOrEqual(t, strings.Count(out, "\n- "), 5, "candidate list capped at 5")
	_, ok := r.Sessions.GetPending("u1")
	assert.False(t, ok, "ambiguous match must not park a deletion")
}

func TestDeleteNotFound(t *testing.T) {
	r, _, _, _ := newTestRouter(happyVocab, brokenOracle())

	out := r.Route(context.Background(), "u1", "ลบ: zzz")

	assert.Equal(t, msgDeleteNotFound("zzz"), out)
}

func TestDeleteMissingTarget(t *testing.T) {
	r, _, _, _ := newTestRouter(happyVocab, brokenOracle())

	out := r.Route(context.Background(), "u1", "ลบ:")

	assert.Equal(t, msgDeleteUsage(), out)
}

func TestAddVocab(t *testing.T) {
	o := &fakeOracle{generate: func(context.Context, string) (string, error) {
		return "```json\n{\"meaning\": \"ความยืดหยุ่น\", \"example\": \"She showed great resilience.\"}\n```", nil
	}}
	r, vocab, _, _ := newTestRouter(nil, o)

	out := r.Route(context.Background(), "u1", "เพิ่ม: Resilience")

	assert.Contains(t, out, "Resilience")
	assert.Contains(t, out, "ความยืดหยุ่น")
	require.Equal(t, 1, vocab.inserts)
	assert.Equal(t, "u1", vocab.entries[0].CreatedBy)
}

func TestAddVocabDedupesCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	o := &fakeOracle{generate: func(context.Context, string) (string, error) {
		return `{"meaning": "ความยืดหยุ่น", "example": "-"}`, nil
	}}
	r, vocab, _, _ := newTestRouter(nil, o)

	r.Route(ctx, "u1", "add: resilience")
	out := r.Route(ctx, "u1", "เพิ่ม: RESILIENCE")

	assert.Equal(t, 1, vocab.inserts, "second add must not create a duplicate")
	assert.Contains(t, out, "ความยืดหยุ่น", "second call returns the first entry's data")
	assert.Equal(t, 1, o.calls, "no oracle round-trip for a known word")
}

func TestAddVocabOracleDownFallsBack(t *testing.T) {
	r, vocab, _, _ := newTestRouter(nil, brokenOracle())

	out := r.Route(context.Background(), "u1", "เพิ่ม: stoic")

	assert.Contains(t, out, "stoic")
	require.Equal(t, 1, vocab.inserts, "oracle failure must not block the insert")
	assert.Equal(t, "-", vocab.entries[0].Meaning)
}

func TestAddVocabMissingWord(t *testing.T) {
	r, _, _, _ := newTestRouter(nil, brokenOracle())

	out := r.Route(context.Background(), "u1", "เพิ่ม:   ")

	assert.Equal(t, msgAddUsage(), out)
}

func TestCancelClearsEverything(t *testing.T) {
	ctx := context.Background()
	r, _, _, _ := newTestRouter(happyVocab, brokenOracle())

	r.Route(ctx, "u1", "เริ่มเกม")
	r.Sessions.PutPending(quiz.PendingDeletion{UserID: "u1", Word: "happy"})

	out := r.Route(ctx, "u1", "ยกเลิก")

	assert.Contains(t, out, "ยกเลิกเรียบร้อย")
	_, ok := r.Sessions.Get("u1")
	assert.False(t, ok)
	_, ok = r.Sessions.GetPending("u1")
	assert.False(t, ok)
}

func TestPendingDeletionConsumesFreeTextBeforeQuiz(t *testing.T) {
	ctx := context.Background()
	r, vocab, _, _ := newTestRouter(happyVocab, brokenOracle())

	r.Route(ctx, "u1", "เริ่มเกม")
	r.Sessions.PutPending(quiz.PendingDeletion{UserID: "u1", Word: "happy"})

	out := r.Route(ctx, "u1", "มีความสุข")

	assert.Equal(t, msgDeleteCancelled(), out, "free text resolves the pending deletion first")
	assert.Len(t, vocab.entries, 1)
	_, ok := r.Sessions.Get("u1")
	assert.True(t, ok, "the quiz session is untouched")
}

func TestVocabListing(t *testing.T) {
	r, _, _, _ := newTestRouter(happyVocab, brokenOracle())

	out := r.Route(context.Background(), "u1", "คลัง")

	assert.Contains(t, out, "- happy")
}
