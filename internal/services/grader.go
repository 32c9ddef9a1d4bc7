package services

import (
	"strings"

	"github.com/readleap/readleap-backend/internal/types"
)

// gradeFunc maps a (submitted, reference) answer pair to correctness.
type gradeFunc func(userAnswer, refAnswer string) bool

func gradeExact(userAnswer, refAnswer string) bool {
	return strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(refAnswer))
}

// Short answers are graded correct here; real scoring happens out of band
// (human or AI review writes ai_score/ai_feedback on the record later).
func gradeAlwaysCorrect(userAnswer, refAnswer string) bool {
	return true
}

var graders = map[types.QuestionKind]gradeFunc{
	types.QuestionKindChoice:      gradeExact,
	types.QuestionKindJudge:       gradeExact,
	types.QuestionKindFill:        gradeExact,
	types.QuestionKindShortAnswer: gradeAlwaysCorrect,
}

// Grade is a pure function: no side effects, callers decide what to do with
// the result. Unknown kinds grade incorrect.
func Grade(kind types.QuestionKind, userAnswer, refAnswer string) bool {
	grade, ok := graders[kind]
	if !ok {
		return false
	}
	return grade(userAnswer, refAnswer)
}
