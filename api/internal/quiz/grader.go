package quiz

import (
	"context"
	"fmt"
	"log"
	"strings"

	"teacher-bot/api/internal/oracle"
)

// Grade is the outcome of judging one answer. Graded=false means the grader
// could not reach a verdict (oracle down or unparseable) and the caller
// should ask the user to retry without touching the session.
type Grade struct {
	Graded   bool
	Correct  bool
	Reason   string
	Examples []string
}

// Grader decides answer correctness with a layered strategy, cheapest first:
// exact match, curated synonyms, LCS similarity, token overlap, and only
// then an oracle round-trip. Near-exact answers never cost an API call.
type Grader struct {
	Oracle    oracle.Oracle
	Synonyms  map[string][]string
	Threshold float64 // LCS ratio cutoff, 0 means default
}

const defaultThreshold = 0.7

func NewGrader(o oracle.Oracle) *Grader {
	return &Grader{
		Oracle:    o,
		Synonyms:  defaultSynonyms,
		Threshold: defaultThreshold,
	}
}

// defaultSynonyms covers frequent target words whose accepted Thai answers
// drift from the stored meaning.
var defaultSynonyms = map[string][]string{
	"happy":    {"มีความสุข", "สุขใจ", "ดีใจ", "เป็นสุข"},
	"home":     {"บ้าน", "ที่อยู่อาศัย", "ที่พัก"},
	"house":    {"บ้าน", "ที่อยู่อาศัย"},
	"sad":      {"เศร้า", "เสียใจ", "โศกเศร้า"},
	"eat":      {"กิน", "รับประทาน", "ทาน"},
	"run":      {"วิ่ง"},
	"big":      {"ใหญ่", "ขนาดใหญ่"},
	"small":    {"เล็ก", "ขนาดเล็ก"},
	"beautiful": {"สวย", "สวยงาม", "งดงาม"},
}

func (g *Grader) Grade(ctx context.Context, word, meaning, answer string) Grade {
	ans := normalize(answer)
	target := normalize(meaning)

	// 1. exact
	if ans != "" && ans == target {
		return Grade{Graded: true, Correct: true, Reason: "ตรงเป๊ะเลยครับ"}
	}

	// 2. curated synonyms, substring either direction
	for _, syn := range g.Synonyms[normalize(word)] {
		s := normalize(syn)
		if s == "" || ans == "" {
			continue
		}
		if strings.Contains(ans, s) || strings.Contains(s, ans) {
			return Grade{Graded: true, Correct: true, Reason: "ความหมายเดียวกันครับ"}
		}
	}

	// 3. similarity ratio
	th := g.Threshold
	if th <= 0 {
		th = defaultThreshold
	}
	if ans != "" && target != "" && lcsRatio(ans, target) >= th {
		return Grade{Graded: true, Correct: true, Reason: "ใกล้เคียงมากครับ ถือว่าถูก"}
	}

	// 4. token overlap: half of the meaning's words show up in the answer
	if tokenOverlap(target, ans) {
		return Grade{Graded: true, Correct: true, Reason: "จับใจความได้ครบครับ"}
	}

	// 5. oracle judgment
	return g.gradeByOracle(ctx, word, meaning, answer)
}

func (g *Grader) gradeByOracle(ctx context.Context, word, meaning, answer string) Grade {
	prompt := fmt.Sprintf(
		"User is learning vocabulary. Word: '%s' (Meaning: %s).\n"+
			"User answered: '%s'\n\n"+
			"1. Check if the answer is correct (accept synonyms).\n"+
			"2. Explain why in Thai (short and encouraging).\n"+
			"3. Create 3 distinct, simple English example sentences using '%s'.\n\n"+
			"Response strictly in JSON format:\n"+
			`{"is_correct": boolean, "reason_thai": "...", "examples": ["Ex1", "Ex2", "Ex3"]}`,
		word, meaning, answer, word)

	raw, err := g.Oracle.Generate(ctx, prompt)
	if err != nil {
		log.Printf("grader: oracle call failed: %v", err)
		return Grade{}
	}
	rep, err := parseGradeReply(raw)
	if err != nil {
		log.Printf("grader: bad oracle reply: %v", err)
		return Grade{}
	}
	reason := rep.ReasonThai
	if reason == "" {
		reason = "ไม่มีคำอธิบายเพิ่มเติม"
	}
	return Grade{Graded: true, Correct: rep.IsCorrect, Reason: reason, Examples: rep.Examples}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// lcsRatio is 2*LCS/(len(a)+len(b)) over runes, the same shape of ratio
// difflib computes. 1.0 means identical.
func lcsRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// tokenOverlap reports whether at least half of the meaning's
// space-separated words occur inside the answer.
func tokenOverlap(meaning, answer string) bool {
	toks := strings.Fields(meaning)
	if len(toks) < 2 || answer == "" {
		return false
	}
	hits := 0
	for _, t := range toks {
		if strings.Contains(answer, t) {
			hits++
		}
	}
	return hits*2 >= len(toks)
}
