package quiz

import (
	"errors"
	"fmt"
	"math"
)

// OptionCount 每道题固定四个选项
const OptionCount = 4

var (
	ErrEmptyQuiz       = errors.New("quiz has no questions")
	ErrInvalidQuestion = errors.New("invalid question")
	ErrInvalidOption   = errors.New("option index out of range")
	ErrNotInProgress   = errors.New("quiz run is not in progress")
	ErrAlreadyStarted  = errors.New("quiz run already started")
)

type Question struct {
	Text         string   `json:"text" yaml:"text"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"-" yaml:"correct"`
}

// Quiz 开始后不可变；TimeLimitSeconds 为 0 表示不限时
type Quiz struct {
	Kind             string     `json:"kind"`
	Title            string     `json:"title"`
	TestID           string     `json:"testId,omitempty"`
	Questions        []Question `json:"questions"`
	TimeLimitSeconds int        `json:"timeLimitSeconds,omitempty"`
	IsGroup          bool       `json:"isGroup"`
	GroupCode        string     `json:"groupCode,omitempty"`
}

func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return ErrEmptyQuiz
	}
	if q.TimeLimitSeconds < 0 {
		return fmt.Errorf("%w: negative time limit", ErrInvalidQuestion)
	}
	for i, question := range q.Questions {
		if len(question.Options) != OptionCount {
			return fmt.Errorf("%w: question %d has %d options, want %d", ErrInvalidQuestion, i+1, len(question.Options), OptionCount)
		}
		if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
			return fmt.Errorf("%w: question %d correct index %d", ErrInvalidQuestion, i+1, question.CorrectIndex)
		}
	}
	return nil
}

// Result 测验成绩，未作答的题目计为错误
type Result struct {
	Correct    int         `json:"correct"`
	Total      int         `json:"total"`
	Percentage int         `json:"percentage"`
	TimedOut   bool        `json:"timedOut"`
	Answers    map[int]int `json:"answers"`
}

// Score percentage = round(100 * correct / total)
func Score(q Quiz, answers map[int]int) Result {
	correct := 0
	for i, question := range q.Questions {
		if chosen, ok := answers[i]; ok && chosen == question.CorrectIndex {
			correct++
		}
	}

	total := len(q.Questions)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(100*correct) / float64(total)))
	}

	copied := make(map[int]int, len(answers))
	for k, v := range answers {
		copied[k] = v
	}

	return Result{
		Correct:    correct,
		Total:      total,
		Percentage: percentage,
		Answers:    copied,
	}
}
