package quiz

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *manualTicker) fn(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() { m.once.Do(func() { close(m.stopped) }) }
}

func (m *manualTicker) tick() {
	m.ch <- time.Now()
}

func twoQuestionQuiz() Quiz {
	return Quiz{Kind: "quick", Title: "Hızlı Test", Questions: []Question{question("q1", 0), question("q2", 1)}}
}

func TestRunAnswersAndFinishes(t *testing.T) {
	var finished []Result
	run, err := NewRun(twoQuestionQuiz(), WithFinishHook(func(r Result) { finished = append(finished, r) }))
	require.NoError(t, err)
	require.NoError(t, run.Start())

	require.NoError(t, run.SelectAnswer(0))
	res, err := run.Advance()
	require.NoError(t, err)
	assert.Nil(t, res)

	require.NoError(t, run.SelectAnswer(2))
	res, err = run.Advance()
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 50, res.Percentage)
	assert.False(t, res.TimedOut)

	assert.Equal(t, Finished, run.State())
	require.Len(t, finished, 1)
	assert.Equal(t, *res, finished[0])

	select {
	case <-run.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestRunSelectIsNotDestructive(t *testing.T) {
	run, err := NewRun(Quiz{Questions: []Question{question("q1", 0), question("q2", 1), question("q3", 2)}})
	require.NoError(t, err)
	require.NoError(t, run.Start())

	require.NoError(t, run.SelectAnswer(0))
	_, err = run.Advance()
	require.NoError(t, err)
	require.NoError(t, run.Retreat())

	snap := run.Snapshot()
	assert.Equal(t, 0, snap.Index)
	require.NotNil(t, snap.Selected)
	assert.Equal(t, 0, *snap.Selected)

	_, err = run.Advance()
	require.NoError(t, err)
	_, err = run.Advance()
	require.NoError(t, err)

	snap = run.Snapshot()
	assert.Equal(t, 2, snap.Index)
	assert.True(t, snap.IsLast)
	assert.Nil(t, snap.Selected)

	res, err := run.Advance()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, map[int]int{0: 0}, res.Answers)
}

func TestRunRetreatAtFirstQuestion(t *testing.T) {
	run, err := NewRun(twoQuestionQuiz())
	require.NoError(t, err)
	require.NoError(t, run.Start())

	require.NoError(t, run.Retreat())
	assert.Equal(t, 0, run.Snapshot().Index)
}

func TestRunRejectsInvalidOption(t *testing.T) {
	run, err := NewRun(twoQuestionQuiz())
	require.NoError(t, err)
	require.NoError(t, run.Start())

	assert.ErrorIs(t, run.SelectAnswer(4), ErrInvalidOption)
	assert.ErrorIs(t, run.SelectAnswer(-1), ErrInvalidOption)
	assert.Nil(t, run.Snapshot().Selected)
}

func TestRunRequiresInProgress(t *testing.T) {
	run, err := NewRun(twoQuestionQuiz())
	require.NoError(t, err)

	assert.ErrorIs(t, run.SelectAnswer(0), ErrNotInProgress)
	_, err = run.Advance()
	assert.ErrorIs(t, err, ErrNotInProgress)
	assert.ErrorIs(t, run.Retreat(), ErrNotInProgress)

	require.NoError(t, run.Start())
	assert.ErrorIs(t, run.Start(), ErrAlreadyStarted)
}

func TestNewRunRejectsEmptyQuiz(t *testing.T) {
	_, err := NewRun(Quiz{Kind: "quick"})
	assert.ErrorIs(t, err, ErrEmptyQuiz)
}

func TestRunCountdownTimesOut(t *testing.T) {
	ticker := newManualTicker()
	var mu sync.Mutex
	var finished []Result
	q := Quiz{Kind: "quick", TimeLimitSeconds: 300, Questions: []Question{question("q1", 0), question("q2", 1), question("q3", 2)}}

	run, err := NewRun(q, WithTicker(ticker.fn), WithFinishHook(func(r Result) {
		mu.Lock()
		finished = append(finished, r)
		mu.Unlock()
	}))
	require.NoError(t, err)
	require.NoError(t, run.Start())
	assert.Equal(t, "5:00", run.Snapshot().Remaining)

	ticker.tick()
	ticker.tick()
	ticker.tick()
	assert.Eventually(t, func() bool { return run.Snapshot().RemainingSeconds == 297 }, time.Second, time.Millisecond)

	for i := 0; i < 297; i++ {
		ticker.tick()
	}

	select {
	case <-run.Done():
	case <-time.After(time.Second):
		t.Fatal("run did not finish after countdown")
	}
	<-ticker.stopped

	res, ok := run.Result()
	require.True(t, ok)
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 0, res.Percentage)
	assert.True(t, res.TimedOut)
	assert.Equal(t, "0:00", run.Snapshot().Remaining)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(finished) == 1
	}, time.Second, time.Millisecond)
}

func TestRunCloseStopsCountdown(t *testing.T) {
	ticker := newManualTicker()
	finishCalled := false
	run, err := NewRun(Quiz{TimeLimitSeconds: 60, Questions: []Question{question("q1", 0)}},
		WithTicker(ticker.fn), WithFinishHook(func(Result) { finishCalled = true }))
	require.NoError(t, err)
	require.NoError(t, run.Start())

	ticker.tick()
	run.Close()

	select {
	case <-ticker.stopped:
	case <-time.After(time.Second):
		t.Fatal("ticker was not stopped")
	}

	assert.Equal(t, Cancelled, run.State())
	_, ok := run.Result()
	assert.False(t, ok)
	assert.False(t, finishCalled)

	run.Close()
	assert.Equal(t, Cancelled, run.State())
}

func TestRunFinishStopsCountdown(t *testing.T) {
	ticker := newManualTicker()
	run, err := NewRun(Quiz{TimeLimitSeconds: 60, Questions: []Question{question("q1", 0)}}, WithTicker(ticker.fn))
	require.NoError(t, err)
	require.NoError(t, run.Start())

	require.NoError(t, run.SelectAnswer(0))
	res, err := run.Advance()
	require.NoError(t, err)
	assert.Equal(t, 100, res.Percentage)

	select {
	case <-ticker.stopped:
	case <-time.After(time.Second):
		t.Fatal("ticker was not stopped")
	}
	assert.Equal(t, Finished, run.State())
}

func TestRunWithoutTimeLimit(t *testing.T) {
	run, err := NewRun(Quiz{Kind: "group", IsGroup: true, GroupCode: "123456", Questions: []Question{question("q1", 0)}},
		WithTicker(func(time.Duration) (<-chan time.Time, func()) {
			t.Fatal("ticker must not be created without a time limit")
			return nil, nil
		}))
	require.NoError(t, err)
	require.NoError(t, run.Start())

	snap := run.Snapshot()
	assert.False(t, snap.HasTimer)
	assert.Empty(t, snap.Remaining)
	assert.True(t, snap.IsGroup)
	assert.Equal(t, "123456", snap.GroupCode)
	assert.True(t, snap.IsLast)
}

func TestRunObserverSeesTransitions(t *testing.T) {
	var states []State
	run, err := NewRun(Quiz{Questions: []Question{question("q1", 0)}}, WithObserver(func(s Snapshot) {
		states = append(states, s.State)
	}))
	require.NoError(t, err)

	require.NoError(t, run.Start())
	require.NoError(t, run.SelectAnswer(1))
	_, err = run.Advance()
	require.NoError(t, err)

	assert.Equal(t, []State{InProgress, InProgress, Finished}, states)
}

func TestRunDeliversSnapshotsInOrderWhenTickRacesAdvance(t *testing.T) {
	ticker := newManualTicker()
	entered := make(chan struct{})
	release := make(chan struct{})

	var (
		mu   sync.Mutex
		seen []Snapshot
	)
	observer := func(s Snapshot) {
		if s.State == InProgress && s.RemainingSeconds == 59 {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}

	q := Quiz{Questions: []Question{question("q1", 0)}, TimeLimitSeconds: 60}
	run, err := NewRun(q, WithTicker(ticker.fn), WithObserver(observer))
	require.NoError(t, err)
	require.NoError(t, run.Start())

	ticker.tick()
	<-entered

	advanced := make(chan error, 1)
	go func() {
		_, err := run.Advance()
		advanced <- err
	}()
	assert.Eventually(t, func() bool { return run.State() == Finished }, time.Second, time.Millisecond)

	close(release)
	require.NoError(t, <-advanced)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, Finished, seen[len(seen)-1].State)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i].Seq, seen[i-1].Seq)
	}
}

func TestRunDropsStaleSnapshot(t *testing.T) {
	var seen []Snapshot
	run, err := NewRun(twoQuestionQuiz(), WithObserver(func(s Snapshot) { seen = append(seen, s) }))
	require.NoError(t, err)
	require.NoError(t, run.Start())
	require.NoError(t, run.SelectAnswer(1))
	require.Len(t, seen, 2)

	run.notify(seen[0])
	assert.Len(t, seen, 2)
	assert.Equal(t, run.Snapshot().Seq, seen[1].Seq)
}
