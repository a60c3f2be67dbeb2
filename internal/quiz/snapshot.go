package quiz

import "fmt"

type QuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Snapshot 答题界面的视图模型，是 Run 状态的纯函数
type Snapshot struct {
	Seq              uint64        `json:"seq"`
	Kind             string        `json:"kind"`
	Title            string        `json:"title"`
	State            State         `json:"state"`
	IsGroup          bool          `json:"isGroup"`
	GroupCode        string        `json:"groupCode,omitempty"`
	Index            int           `json:"index"`
	Total            int           `json:"total"`
	IsLast           bool          `json:"isLast"`
	Question         *QuestionView `json:"question,omitempty"`
	Selected         *int          `json:"selected"`
	HasTimer         bool          `json:"hasTimer"`
	RemainingSeconds int           `json:"remainingSeconds,omitempty"`
	Remaining        string        `json:"remaining,omitempty"`
	Result           *Result       `json:"result,omitempty"`
}

func (r *Run) snapshotLocked() Snapshot {
	total := len(r.quiz.Questions)
	snap := Snapshot{
		Seq:       r.seq,
		Kind:      r.quiz.Kind,
		Title:     r.quiz.Title,
		State:     r.state,
		IsGroup:   r.quiz.IsGroup,
		GroupCode: r.quiz.GroupCode,
		Index:     r.current,
		Total:     total,
		IsLast:    r.current == total-1,
		HasTimer:  r.quiz.TimeLimitSeconds > 0,
	}

	if r.state == InProgress {
		q := r.quiz.Questions[r.current]
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		snap.Question = &QuestionView{Text: q.Text, Options: options}
		if chosen, ok := r.answers[r.current]; ok {
			snap.Selected = &chosen
		}
	}

	if snap.HasTimer {
		snap.RemainingSeconds = r.remaining
		snap.Remaining = FormatClock(r.remaining)
	}

	if r.result != nil {
		res := *r.result
		snap.Result = &res
	}
	return snap
}

// FormatClock 秒数格式化为 m:ss
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
