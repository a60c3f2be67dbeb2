package gateway

import (
	"context"
	"edu_portal_backend/internal/model"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// OfflineBackend 后端不可达时使用的离线桩：总是返回合成的成功结果
type OfflineBackend struct {
	FileURL string
	Now     func() time.Time
}

func NewOfflineBackend(fileURL string) *OfflineBackend {
	return &OfflineBackend{FileURL: fileURL, Now: time.Now}
}

// offlineID 形如 offline-<毫秒时间戳>-<8位随机>，同一毫秒登录的离线用户不会共用会话
func (b *OfflineBackend) offlineID() string {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return fmt.Sprintf("offline-%d-%s", now().UnixMilli(), uuid.NewString()[:8])
}

func (b *OfflineBackend) SignUp(ctx context.Context, email, password string, meta Metadata) Result[*Identity] {
	return OK(&Identity{ID: b.offlineID(), Email: email, Metadata: meta})
}

func (b *OfflineBackend) SignIn(ctx context.Context, email, password string) Result[*Identity] {
	return OK(&Identity{ID: b.offlineID(), Email: email})
}

func (b *OfflineBackend) SignOut(ctx context.Context) Result[struct{}] {
	return OK(struct{}{})
}

func (b *OfflineBackend) GetUser(ctx context.Context, userID string) Result[*Identity] {
	return OK[*Identity](nil)
}

func (b *OfflineBackend) GetCourses(ctx context.Context) Result[[]model.Course] {
	return OK([]model.Course{})
}

func (b *OfflineBackend) GetCourseTopics(ctx context.Context, courseID string) Result[[]model.Topic] {
	return OK([]model.Topic{})
}

func (b *OfflineBackend) GetCourseMaterials(ctx context.Context, courseID string) Result[[]model.Material] {
	return OK([]model.Material{})
}

func (b *OfflineBackend) CreateMaterial(ctx context.Context, material *model.Material) Result[*model.Material] {
	if material.ID == "" {
		material.ID = b.offlineID()
	}
	return OK(material)
}

func (b *OfflineBackend) GetTests(ctx context.Context, courseID string) Result[[]model.Test] {
	return OK([]model.Test{})
}

func (b *OfflineBackend) GetTestQuestions(ctx context.Context, testID string) Result[[]model.Question] {
	return OK([]model.Question{})
}

func (b *OfflineBackend) CreateTest(ctx context.Context, test *model.Test) Result[*model.Test] {
	if test.ID == "" {
		test.ID = b.offlineID()
	}
	return OK(test)
}

func (b *OfflineBackend) SubmitTestResult(ctx context.Context, result *model.TestResult) Result[*model.TestResult] {
	return OK[*model.TestResult](nil)
}

func (b *OfflineBackend) GetTestResults(ctx context.Context, userID string) Result[[]model.TestResult] {
	return OK([]model.TestResult{})
}

func (b *OfflineBackend) UploadFile(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) Result[string] {
	return OK(b.FileURL)
}

func (b *OfflineBackend) GetFileURL(bucket, path string) string {
	return b.FileURL
}

func (b *OfflineBackend) DownloadFile(ctx context.Context, bucket, path string) Result[[]byte] {
	return OK([]byte{})
}

func (b *OfflineBackend) GetProfile(ctx context.Context, userID string) Result[*model.Profile] {
	return OK[*model.Profile](nil)
}

func (b *OfflineBackend) UpdateProfile(ctx context.Context, userID string, updates model.ProfileUpdate) Result[*model.Profile] {
	return OK[*model.Profile](nil)
}
