package service

import (
	"context"
	"edu_portal_backend/internal/catalog"
	"edu_portal_backend/internal/event"
	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/internal/quiz"
	"edu_portal_backend/internal/util"
	"edu_portal_backend/pkg/logger"
	"edu_portal_backend/pkg/monitoring"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// KindTest 由教师创建的测试启动的测验
const KindTest = "test"

const (
	subscriberBuffer = 16
	persistTimeout   = 5 * time.Second
)

// QuizBackend 测验服务需要的网关能力
type QuizBackend interface {
	GetTests(ctx context.Context, courseID string) gateway.Result[[]model.Test]
	GetTestQuestions(ctx context.Context, testID string) gateway.Result[[]model.Question]
	SubmitTestResult(ctx context.Context, result *model.TestResult) gateway.Result[*model.TestResult]
}

type activeRun struct {
	run         *quiz.Run
	subscribers map[int]chan quiz.Snapshot
	nextID      int
}

// QuizService 每个用户同一时间只有一个测验；新开测验会关闭旧的
type QuizService struct {
	Backend   QuizBackend
	Publisher event.Publisher

	mu     sync.Mutex
	runs   map[string]*activeRun
	ticker quiz.TickerFunc
}

func NewQuizService(backend QuizBackend, publisher event.Publisher) *QuizService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &QuizService{
		Backend:   backend,
		Publisher: publisher,
		runs:      make(map[string]*activeRun),
	}
}

// WithTicker 替换倒计时的时钟源
func (s *QuizService) WithTicker(f quiz.TickerFunc) *QuizService {
	s.ticker = f
	return s
}

func (s *QuizService) Kinds() []string {
	return catalog.Kinds()
}

func (s *QuizService) StartBuiltin(ctx context.Context, userID, kind string) (quiz.Snapshot, error) {
	q, ok := catalog.Quiz(kind)
	if !ok {
		return quiz.Snapshot{}, util.ErrUnknownQuizKind
	}
	return s.start(userID, q)
}

// StartTest 由已保存的测试构建测验，时限为 duration_minutes 分钟
func (s *QuizService) StartTest(ctx context.Context, userID, testID string) (quiz.Snapshot, error) {
	tests := s.Backend.GetTests(ctx, "")
	if tests.Error != nil {
		return quiz.Snapshot{}, tests.Error
	}

	var test *model.Test
	for i := range tests.Data {
		if tests.Data[i].ID == testID {
			test = &tests.Data[i]
			break
		}
	}
	if test == nil {
		return quiz.Snapshot{}, util.ErrTestNotFound
	}

	questions := s.Backend.GetTestQuestions(ctx, testID)
	if questions.Error != nil {
		return quiz.Snapshot{}, questions.Error
	}

	rows := append([]model.Question(nil), questions.Data...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	q := quiz.Quiz{
		Kind:             KindTest,
		Title:            test.Name,
		TestID:           test.ID,
		TimeLimitSeconds: test.DurationMinutes * 60,
	}
	for _, row := range rows {
		q.Questions = append(q.Questions, quiz.Question{Text: row.Text, Options: row.Options, CorrectIndex: row.CorrectIndex})
	}
	return s.start(userID, q)
}

func (s *QuizService) start(userID string, q quiz.Quiz) (quiz.Snapshot, error) {
	active := &activeRun{subscribers: make(map[int]chan quiz.Snapshot)}

	opts := []quiz.Option{
		quiz.WithObserver(func(snap quiz.Snapshot) { s.broadcast(userID, active, snap) }),
		quiz.WithFinishHook(func(res quiz.Result) { s.onFinish(userID, q, res) }),
	}
	if s.ticker != nil {
		opts = append(opts, quiz.WithTicker(s.ticker))
	}

	run, err := quiz.NewRun(q, opts...)
	if err != nil {
		return quiz.Snapshot{}, err
	}
	active.run = run

	s.mu.Lock()
	previous := s.runs[userID]
	s.runs[userID] = active
	s.mu.Unlock()

	if previous != nil {
		s.discard(previous)
	}

	if err := run.Start(); err != nil {
		return quiz.Snapshot{}, err
	}

	logger.Log.Info("Quiz started",
		zap.String("user_id", userID),
		zap.String("kind", q.Kind),
		zap.Int("questions", len(q.Questions)))
	return run.Snapshot(), nil
}

func (s *QuizService) active(userID string) (*activeRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.runs[userID]
	if !ok {
		return nil, util.ErrNoActiveQuiz
	}
	return a, nil
}

func (s *QuizService) Current(userID string) (quiz.Snapshot, error) {
	a, err := s.active(userID)
	if err != nil {
		return quiz.Snapshot{}, err
	}
	return a.run.Snapshot(), nil
}

func (s *QuizService) SelectAnswer(userID string, index int) (quiz.Snapshot, error) {
	a, err := s.active(userID)
	if err != nil {
		return quiz.Snapshot{}, err
	}
	if err := a.run.SelectAnswer(index); err != nil {
		return quiz.Snapshot{}, err
	}
	return a.run.Snapshot(), nil
}

// Next 在最后一题时结束测验，成绩包含在返回的快照中
func (s *QuizService) Next(userID string) (quiz.Snapshot, error) {
	a, err := s.active(userID)
	if err != nil {
		return quiz.Snapshot{}, err
	}
	if _, err := a.run.Advance(); err != nil {
		return quiz.Snapshot{}, err
	}
	return a.run.Snapshot(), nil
}

func (s *QuizService) Prev(userID string) (quiz.Snapshot, error) {
	a, err := s.active(userID)
	if err != nil {
		return quiz.Snapshot{}, err
	}
	if err := a.run.Retreat(); err != nil {
		return quiz.Snapshot{}, err
	}
	return a.run.Snapshot(), nil
}

// Close 关闭并移除当前测验；未完成的测验不保存成绩
func (s *QuizService) Close(userID string) error {
	s.mu.Lock()
	a, ok := s.runs[userID]
	delete(s.runs, userID)
	s.mu.Unlock()

	if !ok {
		return util.ErrNoActiveQuiz
	}
	s.discard(a)
	return nil
}

// Subscribe 返回快照推送通道；测验被关闭或替换时通道关闭
func (s *QuizService) Subscribe(userID string) (<-chan quiz.Snapshot, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.runs[userID]
	if !ok {
		return nil, nil, util.ErrNoActiveQuiz
	}

	id := a.nextID
	a.nextID++
	ch := make(chan quiz.Snapshot, subscriberBuffer)
	a.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := a.subscribers[id]; ok {
			delete(a.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel, nil
}

// Shutdown 关闭全部进行中的测验
func (s *QuizService) Shutdown() {
	s.mu.Lock()
	runs := s.runs
	s.runs = make(map[string]*activeRun)
	s.mu.Unlock()

	for _, a := range runs {
		s.discard(a)
	}
}

func (s *QuizService) discard(a *activeRun) {
	a.run.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range a.subscribers {
		delete(a.subscribers, id)
		close(sub)
	}
}

// broadcast 订阅者缓冲已满时丢弃最旧的快照，保证最新状态总能送达
func (s *QuizService) broadcast(userID string, a *activeRun, snap quiz.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range a.subscribers {
		select {
		case sub <- snap:
			continue
		default:
		}

		logger.Log.Debug("Dropping stale quiz snapshot", zap.String("user_id", userID))
		select {
		case <-sub:
		default:
		}
		select {
		case sub <- snap:
		default:
		}
	}
}

func (s *QuizService) onFinish(userID string, q quiz.Quiz, res quiz.Result) {
	reason := "completed"
	if res.TimedOut {
		reason = "timeout"
	}
	monitoring.QuizRunsFinished.WithLabelValues(q.Kind, reason).Inc()
	monitoring.QuizScore.Observe(float64(res.Percentage))

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	submitted := s.Backend.SubmitTestResult(ctx, &model.TestResult{
		UserID:     userID,
		TestID:     q.TestID,
		QuizKind:   q.Kind,
		Correct:    res.Correct,
		Total:      res.Total,
		Percentage: res.Percentage,
		TimedOut:   res.TimedOut,
	})
	if submitted.Error != nil {
		logger.Log.Warn("Failed to save quiz result",
			zap.String("user_id", userID),
			zap.String("kind", q.Kind),
			zap.Error(submitted.Error))
	}

	err := s.Publisher.Publish(ctx, event.TypeQuizFinished, event.QuizFinished{
		UserID:     userID,
		QuizKind:   q.Kind,
		TestID:     q.TestID,
		Correct:    res.Correct,
		Total:      res.Total,
		Percentage: res.Percentage,
		TimedOut:   res.TimedOut,
		FinishedAt: time.Now(),
	})
	if err != nil {
		logger.Log.Warn("Failed to publish quiz result", zap.String("user_id", userID), zap.Error(err))
	}

	logger.Log.Info("Quiz finished",
		zap.String("user_id", userID),
		zap.String("kind", q.Kind),
		zap.Int("correct", res.Correct),
		zap.Int("total", res.Total),
		zap.Bool("timed_out", res.TimedOut))
}
