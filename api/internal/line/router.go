package line

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"teacher-bot/api/internal/oracle"
	"teacher-bot/api/internal/quiz"
	"teacher-bot/api/internal/store"
	"teacher-bot/api/internal/util"
)

// Persistence surfaces the router needs.
type Presence interface {
	Upsert(ctx context.Context, userID string) error
}

type ScoreReader interface {
	Get(ctx context.Context, userID string) (int, []string, error)
}

type VocabStore interface {
	Recent(ctx context.Context, n int) ([]store.Vocab, error)
	Search(ctx context.Context, sub string) ([]store.Vocab, error)
	GetByWord(ctx context.Context, word string) (store.Vocab, error)
	Insert(ctx context.Context, v store.Vocab) error
	Delete(ctx context.Context, word string) (int64, error)
}

type AnswerPurge interface {
	DeleteByWord(ctx context.Context, word string) error
}

// Router maps an inbound text message to an intent and produces the reply
// text. All transport concerns stay outside; this is pure dispatch plus
// delegation.
type Router struct {
	Users    Presence
	Scores   ScoreReader
	Vocab    VocabStore
	Answers  AnswerPurge
	Quiz     *quiz.Manager
	Sessions quiz.SessionRepository
	Oracle   oracle.Oracle
}

const vocabListLimit = 20

var (
	menuAliases   = aliasSet("คำสั่ง", "เมนู", "menu", "help")
	scoreAliases  = aliasSet("คะแนน", "score", "สถิติ")
	startAliases  = aliasSet("เริ่มเกม", "เริ่ม", "start", "play")
	hintAliases   = aliasSet("คำใบ้", "hint")
	vocabAliases  = aliasSet("คลังคำศัพท์", "คลัง", "vocab")
	cancelAliases = aliasSet("ยกเลิก", "cancel")
	confirmTokens = aliasSet("ยืนยัน", "confirm", "yes", "ใช่")

	deletePrefixes = []string{"ลบคำศัพท์:", "ลบ:", "delete:"}
	addPrefixes    = []string{"เพิ่ม:", "add:"}
)

func aliasSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = true
	}
	return m
}

// Route classifies one message and executes the matching flow. Classification
// is prefix/exact-match over the trimmed input, in fixed priority order.
// Handling is serialized per user so two messages from the same user cannot
// race on session state.
func (r *Router) Route(ctx context.Context, userID, raw string) string {
	unlock := r.Sessions.LockUser(userID)
	defer unlock()

	// presence upsert must not block the reply
	if err := r.Users.Upsert(ctx, userID); err != nil {
		log.Printf("router: upsert user %s: %v", userID, err)
	}

	msg := strings.TrimSpace(raw)
	key := strings.ToLower(msg)

	switch {
	case menuAliases[key]:
		score, learned, _ := r.Scores.Get(ctx, userID)
		return msgMenu(score, len(learned))

	case scoreAliases[key]:
		score, learned, _ := r.Scores.Get(ctx, userID)
		return msgScore(score, len(learned))

	case startAliases[key]:
		return r.startQuiz(ctx, userID)

	case hintAliases[key]:
		h := r.Quiz.Hint(ctx, userID)
		if h.NoSession {
			return msgNoSession()
		}
		return msgHint(h)

	case vocabAliases[key]:
		entries, err := r.Vocab.Recent(ctx, vocabListLimit)
		if err != nil {
			log.Printf("router: list vocab: %v", err)
			return msgStoreDown()
		}
		return msgVocabList(entries)
	}

	if target, ok := cutPrefix(msg, deletePrefixes); ok {
		return r.requestDelete(ctx, userID, target)
	}
	if word, ok := cutPrefix(msg, addPrefixes); ok {
		return r.addVocab(ctx, userID, word)
	}

	if cancelAliases[key] {
		return msgCancelled(r.Quiz.Cancel(userID))
	}

	// free text: a pending deletion consumes it first, then an active quiz
	if pd, ok := r.Sessions.GetPending(userID); ok {
		return r.confirmDelete(ctx, userID, pd, key)
	}
	if _, ok := r.Sessions.Get(userID); ok {
		return msgSubmit(r.Quiz.Submit(ctx, userID, msg))
	}
	return msgNothingToDo()
}

func (r *Router) startQuiz(ctx context.Context, userID string) string {
	br, err := r.Quiz.Begin(ctx, userID)
	if err != nil {
		log.Printf("router: begin quiz for %s: %v", userID, err)
		return msgStoreDown()
	}
	if br.Empty {
		return msgVocabEmpty()
	}
	return msgQuizQuestion(br.Word)
}

// requestDelete is phase 1 of the two-step deletion: find the target and,
// when it is unambiguous, park a PendingDeletion awaiting confirmation.
func (r *Router) requestDelete(ctx context.Context, userID, rawTarget string) string {
	target := util.SanitizeWord(rawTarget)
	if target == "" {
		return msgDeleteUsage()
	}
	matches, err := r.Vocab.Search(ctx, target)
	if err != nil {
		log.Printf("router: search %q: %v", target, err)
		return msgDeleteFailed()
	}
	switch len(matches) {
	case 0:
		return msgDeleteNotFound(target)
	case 1:
		r.Sessions.PutPending(quiz.PendingDeletion{UserID: userID, Word: matches[0].Word})
		return msgDeleteConfirm(matches[0])
	default:
		return msgDeleteAmbiguous(matches)
	}
}

// confirmDelete is phase 2: a confirmation token executes the deletion, any
// other reply discards it.
func (r *Router) confirmDelete(ctx context.Context, userID string, pd quiz.PendingDeletion, key string) string {
	r.Sessions.DeletePending(userID)
	if !confirmTokens[key] {
		return msgDeleteCancelled()
	}
	// answer-log rows reference vocab(word); purge them first
	if err := r.Answers.DeleteByWord(ctx, pd.Word); err != nil {
		log.Printf("router: purge answers for %q: %v", pd.Word, err)
		return msgDeleteFailed()
	}
	aff, err := r.Vocab.Delete(ctx, pd.Word)
	if err != nil {
		log.Printf("router: delete %q: %v", pd.Word, err)
		return msgDeleteFailed()
	}
	if aff == 0 {
		return msgDeleteNotFound(pd.Word)
	}
	return msgDeleted(pd.Word)
}

func (r *Router) addVocab(ctx context.Context, userID, rawWord string) string {
	word := util.SanitizeWord(rawWord)
	if word == "" {
		return msgAddUsage()
	}

	existing, err := r.Vocab.GetByWord(ctx, word)
	if err == nil {
		return msgVocabExists(existing)
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Printf("router: lookup %q: %v", word, err)
		return msgStoreDown()
	}

	entry := store.Vocab{Word: word, CreatedBy: userID}
	entry.Meaning, entry.Example = r.enrichVocab(ctx, word)

	if err := r.Vocab.Insert(ctx, entry); err != nil {
		// the whole point of this intent is the write; do not swallow it
		log.Printf("router: insert %q: %v", word, err)
		return msgAddFailed()
	}
	return msgVocabAdded(entry)
}

// enrichVocab asks the oracle for a Thai meaning and one example sentence.
// Any failure degrades to placeholders; adding a word must not depend on the
// oracle being up.
func (r *Router) enrichVocab(ctx context.Context, word string) (meaning, example string) {
	prompt := fmt.Sprintf(
		"I want to learn the word '%s'. "+
			"Provide the Thai meaning and 1 short English example sentence. "+
			`Response strictly in JSON format: {"meaning": "...", "example": "..."}`, word)

	raw, err := r.Oracle.Generate(ctx, prompt)
	if err != nil {
		log.Printf("router: enrich %q: %v", word, err)
		return "-", "-"
	}
	rep, err := parseVocabReply(raw)
	if err != nil {
		log.Printf("router: enrich %q: %v", word, err)
		return "-", "-"
	}
	if rep.Example == "" {
		rep.Example = "-"
	}
	return rep.Meaning, rep.Example
}

func cutPrefix(msg string, prefixes []string) (string, bool) {
	lower := strings.ToLower(msg)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return strings.TrimSpace(msg[len(p):]), true
		}
	}
	return "", false
}
