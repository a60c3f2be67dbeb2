package service

import (
	"bytes"
	"context"
	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/model"
	"io"
	"sync"
)

const demoURL = "https://example.com/demo.pdf"

// fakeBackend 以离线桩为基础，记录写入并允许覆盖部分读取结果
type fakeBackend struct {
	*gateway.OfflineBackend

	mu        sync.Mutex
	courses   []model.Course
	topics    gateway.Result[[]model.Topic]
	materials gateway.Result[[]model.Material]
	tests     []model.Test
	questions map[string][]model.Question
	submitted []model.TestResult
	created   []*model.Test
	uploads   map[string][]byte
	submitErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		OfflineBackend: gateway.NewOfflineBackend(demoURL),
		questions:      make(map[string][]model.Question),
		uploads:        make(map[string][]byte),
	}
}

func (f *fakeBackend) GetCourses(ctx context.Context) gateway.Result[[]model.Course] {
	return gateway.OK(f.courses)
}

func (f *fakeBackend) GetCourseTopics(ctx context.Context, courseID string) gateway.Result[[]model.Topic] {
	return f.topics
}

func (f *fakeBackend) GetCourseMaterials(ctx context.Context, courseID string) gateway.Result[[]model.Material] {
	return f.materials
}

func (f *fakeBackend) GetTests(ctx context.Context, courseID string) gateway.Result[[]model.Test] {
	return gateway.OK(f.tests)
}

func (f *fakeBackend) GetTestQuestions(ctx context.Context, testID string) gateway.Result[[]model.Question] {
	return gateway.OK(f.questions[testID])
}

func (f *fakeBackend) CreateTest(ctx context.Context, test *model.Test) gateway.Result[*model.Test] {
	f.mu.Lock()
	defer f.mu.Unlock()
	test.ID = "t-new"
	f.created = append(f.created, test)
	return gateway.OK(test)
}

func (f *fakeBackend) SubmitTestResult(ctx context.Context, result *model.TestResult) gateway.Result[*model.TestResult] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return gateway.Fail[*model.TestResult](f.submitErr)
	}
	f.submitted = append(f.submitted, *result)
	return gateway.OK(result)
}

func (f *fakeBackend) UploadFile(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) gateway.Result[string] {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return gateway.Fail[string](err)
	}
	f.mu.Lock()
	f.uploads[bucket+"/"+path] = buf.Bytes()
	f.mu.Unlock()
	return gateway.OK(f.GetFileURL(bucket, path))
}

func (f *fakeBackend) GetFileURL(bucket, path string) string {
	return "/files/" + bucket + "/" + path
}

func (f *fakeBackend) submissions() []model.TestResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.TestResult(nil), f.submitted...)
}

type publishedEvent struct {
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}
