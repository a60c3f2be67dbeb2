package gateway

import (
	"context"
	"edu_portal_backend/internal/model"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// 以下接口由 internal/repository 中的 gorm 仓库实现
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type ProfileStore interface {
	Probe(ctx context.Context) error
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	Upsert(ctx context.Context, id string, updates model.ProfileUpdate) (*model.Profile, error)
}

type CourseStore interface {
	List(ctx context.Context) ([]model.Course, error)
	Topics(ctx context.Context, courseID string) ([]model.Topic, error)
	Materials(ctx context.Context, courseID string) ([]model.Material, error)
	CreateMaterial(ctx context.Context, material *model.Material) error
}

type TestStore interface {
	List(ctx context.Context, courseID string) ([]model.Test, error)
	Questions(ctx context.Context, testID string) ([]model.Question, error)
	Create(ctx context.Context, test *model.Test) error
	CreateResult(ctx context.Context, result *model.TestResult) error
	ResultsByUser(ctx context.Context, userID string) ([]model.TestResult, error)
}

// LiveBackend 直连数据库与对象存储的后端实现
type LiveBackend struct {
	Users    UserStore
	Profiles ProfileStore
	Courses  CourseStore
	Tests    TestStore
	Storage  StorageProvider
}

func NewLiveBackend(users UserStore, profiles ProfileStore, courses CourseStore, tests TestStore, storage StorageProvider) *LiveBackend {
	return &LiveBackend{
		Users:    users,
		Profiles: profiles,
		Courses:  courses,
		Tests:    tests,
		Storage:  storage,
	}
}

func (b *LiveBackend) Probe(ctx context.Context) error {
	return b.Profiles.Probe(ctx)
}

func (b *LiveBackend) SignUp(ctx context.Context, email, password string, meta Metadata) Result[*Identity] {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return Fail[*Identity](NewError(KindAuth, "Email is required"))
	}
	if len(password) < minPasswordLength {
		return Fail[*Identity](NewError(KindAuth, "Password should be at least 6 characters"))
	}

	_, err := b.Users.FindByEmail(ctx, email)
	if err == nil {
		return Fail[*Identity](NewError(KindAuth, "User already registered"))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Fail[*Identity](errors.Wrap(err, "find user by email"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Fail[*Identity](err)
	}

	user := &model.User{
		Email:    email,
		Password: string(hashed),
		FullName: meta.FullName,
		UserType: string(meta.UserType),
	}
	if err := b.Users.Create(ctx, user); err != nil {
		return Fail[*Identity](errors.Wrap(err, "create user"))
	}

	return OK(identityOf(user))
}

func (b *LiveBackend) SignIn(ctx context.Context, email, password string) Result[*Identity] {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := b.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Fail[*Identity](NewError(KindAuth, "Invalid login credentials"))
		}
		return Fail[*Identity](errors.Wrap(err, "find user by email"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return Fail[*Identity](NewError(KindAuth, "Invalid login credentials"))
	}

	return OK(identityOf(user))
}

// SignOut 令牌是无状态的，服务端无需操作
func (b *LiveBackend) SignOut(ctx context.Context) Result[struct{}] {
	return OK(struct{}{})
}

func (b *LiveBackend) GetUser(ctx context.Context, userID string) Result[*Identity] {
	user, err := b.Users.FindByID(ctx, userID)
	if err != nil {
		return Fail[*Identity](errors.Wrap(err, "find user"))
	}
	return OK(identityOf(user))
}

func (b *LiveBackend) GetCourses(ctx context.Context) Result[[]model.Course] {
	courses, err := b.Courses.List(ctx)
	if err != nil {
		return Fail[[]model.Course](errors.Wrap(err, "list courses"))
	}
	return OK(courses)
}

func (b *LiveBackend) GetCourseTopics(ctx context.Context, courseID string) Result[[]model.Topic] {
	topics, err := b.Courses.Topics(ctx, courseID)
	if err != nil {
		return Fail[[]model.Topic](errors.Wrap(err, "list topics"))
	}
	return OK(topics)
}

func (b *LiveBackend) GetCourseMaterials(ctx context.Context, courseID string) Result[[]model.Material] {
	materials, err := b.Courses.Materials(ctx, courseID)
	if err != nil {
		return Fail[[]model.Material](errors.Wrap(err, "list materials"))
	}
	return OK(materials)
}

func (b *LiveBackend) CreateMaterial(ctx context.Context, material *model.Material) Result[*model.Material] {
	if err := b.Courses.CreateMaterial(ctx, material); err != nil {
		return Fail[*model.Material](errors.Wrap(err, "create material"))
	}
	return OK(material)
}

func (b *LiveBackend) GetTests(ctx context.Context, courseID string) Result[[]model.Test] {
	tests, err := b.Tests.List(ctx, courseID)
	if err != nil {
		return Fail[[]model.Test](errors.Wrap(err, "list tests"))
	}
	return OK(tests)
}

func (b *LiveBackend) GetTestQuestions(ctx context.Context, testID string) Result[[]model.Question] {
	questions, err := b.Tests.Questions(ctx, testID)
	if err != nil {
		return Fail[[]model.Question](errors.Wrap(err, "list questions"))
	}
	return OK(questions)
}

func (b *LiveBackend) CreateTest(ctx context.Context, test *model.Test) Result[*model.Test] {
	if err := b.Tests.Create(ctx, test); err != nil {
		return Fail[*model.Test](errors.Wrap(err, "create test"))
	}
	return OK(test)
}

func (b *LiveBackend) SubmitTestResult(ctx context.Context, result *model.TestResult) Result[*model.TestResult] {
	if err := b.Tests.CreateResult(ctx, result); err != nil {
		return Fail[*model.TestResult](errors.Wrap(err, "create test result"))
	}
	return OK(result)
}

func (b *LiveBackend) GetTestResults(ctx context.Context, userID string) Result[[]model.TestResult] {
	results, err := b.Tests.ResultsByUser(ctx, userID)
	if err != nil {
		return Fail[[]model.TestResult](errors.Wrap(err, "list test results"))
	}
	return OK(results)
}

func (b *LiveBackend) UploadFile(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) Result[string] {
	if err := b.Storage.Upload(ctx, bucket, path, reader, size, contentType); err != nil {
		return Fail[string](errors.Wrapf(err, "upload %s/%s", bucket, path))
	}
	return OK(b.Storage.URL(bucket, path))
}

func (b *LiveBackend) GetFileURL(bucket, path string) string {
	return b.Storage.URL(bucket, path)
}

func (b *LiveBackend) DownloadFile(ctx context.Context, bucket, path string) Result[[]byte] {
	data, err := b.Storage.Download(ctx, bucket, path)
	if err != nil {
		return Fail[[]byte](errors.Wrapf(err, "download %s/%s", bucket, path))
	}
	return OK(data)
}

func (b *LiveBackend) GetProfile(ctx context.Context, userID string) Result[*model.Profile] {
	profile, err := b.Profiles.FindByID(ctx, userID)
	if err != nil {
		return Fail[*model.Profile](errors.Wrap(err, "find profile"))
	}
	return OK(profile)
}

func (b *LiveBackend) UpdateProfile(ctx context.Context, userID string, updates model.ProfileUpdate) Result[*model.Profile] {
	if updates.UserType != "" && !updates.UserType.Valid() {
		return Fail[*model.Profile](NewError(KindValidation, "invalid user type: "+string(updates.UserType)))
	}
	profile, err := b.Profiles.Upsert(ctx, userID, updates)
	if err != nil {
		return Fail[*model.Profile](errors.Wrap(err, "update profile"))
	}
	return OK(profile)
}

func identityOf(user *model.User) *Identity {
	return &Identity{
		ID:    user.ID,
		Email: user.Email,
		Metadata: Metadata{
			FullName: user.FullName,
			UserType: model.UserRole(user.UserType),
		},
	}
}
