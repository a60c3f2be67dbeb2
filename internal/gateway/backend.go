package gateway

import (
	"context"
	"edu_portal_backend/internal/model"
	"io"
)

// Identity 认证后端返回的用户身份
type Identity struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Metadata Metadata `json:"metadata"`
}

// Metadata 注册时附带的用户信息
type Metadata struct {
	FullName string         `json:"fullName,omitempty"`
	UserType model.UserRole `json:"userType,omitempty"`
}

type AuthAPI interface {
	SignUp(ctx context.Context, email, password string, meta Metadata) Result[*Identity]
	SignIn(ctx context.Context, email, password string) Result[*Identity]
	SignOut(ctx context.Context) Result[struct{}]
	GetUser(ctx context.Context, userID string) Result[*Identity]
}

type CourseAPI interface {
	GetCourses(ctx context.Context) Result[[]model.Course]
	GetCourseTopics(ctx context.Context, courseID string) Result[[]model.Topic]
	GetCourseMaterials(ctx context.Context, courseID string) Result[[]model.Material]
	CreateMaterial(ctx context.Context, material *model.Material) Result[*model.Material]
}

type TestAPI interface {
	// GetTests courseID 为空时返回全部
	GetTests(ctx context.Context, courseID string) Result[[]model.Test]
	GetTestQuestions(ctx context.Context, testID string) Result[[]model.Question]
	CreateTest(ctx context.Context, test *model.Test) Result[*model.Test]
	SubmitTestResult(ctx context.Context, result *model.TestResult) Result[*model.TestResult]
	GetTestResults(ctx context.Context, userID string) Result[[]model.TestResult]
}

type StorageAPI interface {
	UploadFile(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) Result[string]
	// GetFileURL 永不失败，返回尽力而为的公开地址
	GetFileURL(bucket, path string) string
	DownloadFile(ctx context.Context, bucket, path string) Result[[]byte]
}

type ProfileAPI interface {
	GetProfile(ctx context.Context, userID string) Result[*model.Profile]
	UpdateProfile(ctx context.Context, userID string, updates model.ProfileUpdate) Result[*model.Profile]
}

// Backend 五个资源组的统一访问入口，有在线与离线两种实现
type Backend interface {
	AuthAPI
	CourseAPI
	TestAPI
	StorageAPI
	ProfileAPI
}

// Prober 支持启动连通性探测的后端
type Prober interface {
	Probe(ctx context.Context) error
}
