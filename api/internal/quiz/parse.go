package quiz

import (
	"encoding/json"
	"errors"

	"teacher-bot/api/internal/util"
)

var errUnparseable = errors.New("oracle reply: unparseable")

// gradeReply is the JSON shape the grading prompt asks for.
type gradeReply struct {
	IsCorrect  bool     `json:"is_correct"`
	ReasonThai string   `json:"reason_thai"`
	Examples   []string `json:"examples"`
}

func parseGradeReply(raw string) (gradeReply, error) {
	txt := util.StripCodeFences(raw)
	var out gradeReply
	if err := json.Unmarshal([]byte(txt), &out); err != nil {
		return gradeReply{}, errUnparseable
	}
	if len(out.Examples) > 3 {
		out.Examples = out.Examples[:3]
	}
	return out, nil
}
