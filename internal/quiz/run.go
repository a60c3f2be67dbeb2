package quiz

import (
	"context"
	"sync"
	"time"
)

type State string

const (
	NotStarted State = "not_started"
	InProgress State = "in_progress"
	Finished   State = "finished"
	Cancelled  State = "cancelled"
)

// TickerFunc 返回一个按 d 触发的通道及其停止函数，测试中可替换为手动通道
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type Option func(*Run)

func WithTicker(f TickerFunc) Option {
	return func(r *Run) { r.newTicker = f }
}

// WithObserver 每次状态变化（含倒计时每秒）后在锁外回调；回调按 Seq 递增串行执行，
// 被更新的快照超过的旧快照会被丢弃
func WithObserver(f func(Snapshot)) Option {
	return func(r *Run) { r.observer = f }
}

// WithFinishHook 测验结束（答完或超时）时回调一次；中途关闭不会触发
func WithFinishHook(f func(Result)) Option {
	return func(r *Run) { r.onFinish = f }
}

// Run 一次答题过程。倒计时在独立 goroutine 中运行，所有状态由 mu 保护。
type Run struct {
	mu        sync.Mutex
	quiz      Quiz
	state     State
	current   int
	answers   map[int]int
	remaining int
	result    *Result
	cancel    context.CancelFunc
	done      chan struct{}
	seq       uint64

	// deliverMu 串行化观察者回调，delivered 为已送出的最大 Seq
	deliverMu sync.Mutex
	delivered uint64

	newTicker TickerFunc
	observer  func(Snapshot)
	onFinish  func(Result)
}

func NewRun(q Quiz, opts ...Option) (*Run, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	r := &Run{
		quiz:      q,
		state:     NotStarted,
		answers:   make(map[int]int),
		done:      make(chan struct{}),
		newTicker: realTicker,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Start 进入第一题；设置了时限时开始每秒倒计时
func (r *Run) Start() error {
	r.mu.Lock()
	if r.state != NotStarted {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}

	r.state = InProgress
	r.current = 0
	r.remaining = r.quiz.TimeLimitSeconds

	if r.quiz.TimeLimitSeconds > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		r.cancel = cancel
		ticks, stop := r.newTicker(time.Second)
		go r.countdown(ctx, ticks, stop)
	}

	snap := r.changedLocked()
	r.mu.Unlock()

	r.notify(snap)
	return nil
}

func (r *Run) countdown(ctx context.Context, ticks <-chan time.Time, stop func()) {
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if r.tick() {
				return
			}
		}
	}
}

// tick 返回 true 表示倒计时应当停止
func (r *Run) tick() bool {
	r.mu.Lock()
	if r.state != InProgress {
		r.mu.Unlock()
		return true
	}

	r.remaining--
	if r.remaining > 0 {
		snap := r.changedLocked()
		r.mu.Unlock()
		r.notify(snap)
		return false
	}

	r.remaining = 0
	res := r.finishLocked(true)
	snap := r.changedLocked()
	r.mu.Unlock()

	r.notify(snap)
	r.finished(res)
	return true
}

// SelectAnswer 记录当前题目的答案，不前进
func (r *Run) SelectAnswer(index int) error {
	r.mu.Lock()
	if r.state != InProgress {
		r.mu.Unlock()
		return ErrNotInProgress
	}
	if index < 0 || index >= len(r.quiz.Questions[r.current].Options) {
		r.mu.Unlock()
		return ErrInvalidOption
	}

	r.answers[r.current] = index
	snap := r.changedLocked()
	r.mu.Unlock()

	r.notify(snap)
	return nil
}

// Advance 在最后一题时结束测验并返回成绩，否则进入下一题
func (r *Run) Advance() (*Result, error) {
	r.mu.Lock()
	if r.state != InProgress {
		r.mu.Unlock()
		return nil, ErrNotInProgress
	}

	if r.current < len(r.quiz.Questions)-1 {
		r.current++
		snap := r.changedLocked()
		r.mu.Unlock()
		r.notify(snap)
		return nil, nil
	}

	res := r.finishLocked(false)
	snap := r.changedLocked()
	r.mu.Unlock()

	r.notify(snap)
	r.finished(res)
	return &res, nil
}

// Retreat 回到上一题，第一题时不动；已记录的答案保留
func (r *Run) Retreat() error {
	r.mu.Lock()
	if r.state != InProgress {
		r.mu.Unlock()
		return ErrNotInProgress
	}

	if r.current > 0 {
		r.current--
	}
	snap := r.changedLocked()
	r.mu.Unlock()

	r.notify(snap)
	return nil
}

// Close 丢弃本次答题并停止倒计时，不产生成绩
func (r *Run) Close() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	if r.state == Finished || r.state == Cancelled {
		r.mu.Unlock()
		return
	}

	r.state = Cancelled
	close(r.done)
	snap := r.changedLocked()
	r.mu.Unlock()

	r.notify(snap)
}

func (r *Run) finishLocked(timedOut bool) Result {
	r.state = Finished
	res := Score(r.quiz, r.answers)
	res.TimedOut = timedOut
	r.result = &res

	if r.cancel != nil {
		r.cancel()
	}
	close(r.done)
	return res
}

// Done 在测验结束或被关闭时关闭
func (r *Run) Done() <-chan struct{} {
	return r.done
}

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Run) Quiz() Quiz {
	return r.quiz
}

func (r *Run) Result() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return Result{}, false
	}
	return *r.result, true
}

func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// changedLocked 记录一次状态变化并返回带新 Seq 的快照
func (r *Run) changedLocked() Snapshot {
	r.seq++
	return r.snapshotLocked()
}

func (r *Run) notify(snap Snapshot) {
	if r.observer == nil {
		return
	}
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()
	if snap.Seq <= r.delivered {
		return
	}
	r.delivered = snap.Seq
	r.observer(snap)
}

func (r *Run) finished(res Result) {
	if r.onFinish != nil {
		r.onFinish(res)
	}
}
