package line

import (
	"encoding/json"
	"errors"
	"strings"

	"teacher-bot/api/internal/util"
)

var errUnparseable = errors.New("oracle reply: unparseable")

// vocabReply is the JSON shape the add-vocab prompt asks for.
type vocabReply struct {
	Meaning string `json:"meaning"`
	Example string `json:"example"`
}

// parseVocabReply accepts either the strict JSON shape or, when the model
// drifts, "Meaning: ..." / "Example: ..." labeled lines. Anything else is
// unparseable and the caller falls back to placeholder text.
func parseVocabReply(raw string) (vocabReply, error) {
	txt := util.StripCodeFences(raw)

	var out vocabReply
	if err := json.Unmarshal([]byte(txt), &out); err == nil {
		if strings.TrimSpace(out.Meaning) != "" {
			out.Meaning = strings.TrimSpace(out.Meaning)
			out.Example = strings.TrimSpace(out.Example)
			return out, nil
		}
	}

	out = vocabReply{}
	for _, line := range strings.Split(txt, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "meaning:"):
			out.Meaning = strings.TrimSpace(line[len("meaning:"):])
		case strings.HasPrefix(lower, "example:"):
			out.Example = strings.TrimSpace(line[len("example:"):])
		}
	}
	if out.Meaning == "" {
		return vocabReply{}, errUnparseable
	}
	return out, nil
}
