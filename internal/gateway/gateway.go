package gateway

import (
	"context"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/pkg/logger"
	"edu_portal_backend/pkg/monitoring"
	"edu_portal_backend/pkg/tracing"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var ErrProbeTimeout = errors.New("connection timeout")

// Gateway 对外暴露的后端入口。启动时探测一次在线后端；在线调用出现网络类错误时
// 永久降级为离线桩，并对该次调用重试一次。降级后不会重新探测。
type Gateway struct {
	live         Backend
	offline      Backend
	online       atomic.Bool
	probeTimeout time.Duration
}

// New live 可以为 nil（例如数据库在启动时就不可用），此时直接使用离线桩
func New(live Backend, offline Backend, probeTimeout time.Duration) *Gateway {
	return &Gateway{
		live:         live,
		offline:      offline,
		probeTimeout: probeTimeout,
	}
}

// Probe 在固定超时内对在线后端做一次最小读取，先结束的一方获胜，另一方的结果被丢弃
func (g *Gateway) Probe(ctx context.Context) bool {
	if g.live == nil {
		logger.Log.Warn("Backend unavailable, using offline mode")
		g.setOnline(false)
		return false
	}

	prober, ok := g.live.(Prober)
	if !ok {
		g.setOnline(true)
		return true
	}

	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("probe panicked: %v", r)
			}
		}()
		done <- prober.Probe(probeCtx)
	}()

	timer := time.NewTimer(g.probeTimeout)
	defer timer.Stop()

	var err error
	select {
	case err = <-done:
	case <-timer.C:
		err = ErrProbeTimeout
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		logger.Log.Warn("Backend connection failed, using offline mode", zap.Error(err))
		g.setOnline(false)
		return false
	}

	logger.Log.Info("Backend connected successfully")
	g.setOnline(true)
	return true
}

func (g *Gateway) Connected() bool {
	return g.online.Load()
}

// Mode 供健康检查展示
func (g *Gateway) Mode() string {
	if g.Connected() {
		return "live"
	}
	return "offline"
}

func (g *Gateway) setOnline(online bool) {
	g.online.Store(online)
	if online {
		monitoring.GatewayOnline.Set(1)
	} else {
		monitoring.GatewayOnline.Set(0)
	}
}

func (g *Gateway) current() (Backend, bool) {
	if g.live != nil && g.online.Load() {
		return g.live, true
	}
	return g.offline, false
}

func (g *Gateway) demote(op string, info *ErrorInfo) {
	if g.online.CompareAndSwap(true, false) {
		logger.Log.Warn("Backend request failed with network error, switching to offline mode",
			zap.String("operation", op),
			zap.String("error", info.Message),
		)
		monitoring.GatewayOnline.Set(0)
		monitoring.GatewayDemotions.WithLabelValues(op).Inc()
	}
}

// call 执行一次网关调用：在线时遇到网络类错误降级并对离线桩重试一次
func call[T any](ctx context.Context, g *Gateway, op string, fn func(context.Context, Backend) Result[T]) Result[T] {
	ctx, span := tracing.StartSpan(ctx, "gateway."+op)
	defer span.End()

	backend, live := g.current()
	span.SetAttributes(attribute.Bool("gateway.live", live))

	res := fn(ctx, backend)
	if live && res.Error != nil && res.Error.Kind == KindNetwork {
		span.AddEvent("demoted to offline stub")
		g.demote(op, res.Error)
		res = fn(ctx, g.offline)
	}

	if res.Error != nil {
		span.SetStatus(codes.Error, res.Error.Message)
		span.SetAttributes(attribute.String("gateway.error_kind", string(res.Error.Kind)))
	}
	return res
}

func (g *Gateway) SignUp(ctx context.Context, email, password string, meta Metadata) Result[*Identity] {
	return call(ctx, g, "sign_up", func(ctx context.Context, b Backend) Result[*Identity] {
		return b.SignUp(ctx, email, password, meta)
	})
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) Result[*Identity] {
	return call(ctx, g, "sign_in", func(ctx context.Context, b Backend) Result[*Identity] {
		return b.SignIn(ctx, email, password)
	})
}

func (g *Gateway) SignOut(ctx context.Context) Result[struct{}] {
	return call(ctx, g, "sign_out", func(ctx context.Context, b Backend) Result[struct{}] {
		return b.SignOut(ctx)
	})
}

func (g *Gateway) GetUser(ctx context.Context, userID string) Result[*Identity] {
	return call(ctx, g, "get_user", func(ctx context.Context, b Backend) Result[*Identity] {
		return b.GetUser(ctx, userID)
	})
}

func (g *Gateway) GetCourses(ctx context.Context) Result[[]model.Course] {
	return call(ctx, g, "get_courses", func(ctx context.Context, b Backend) Result[[]model.Course] {
		return b.GetCourses(ctx)
	})
}

func (g *Gateway) GetCourseTopics(ctx context.Context, courseID string) Result[[]model.Topic] {
	return call(ctx, g, "get_course_topics", func(ctx context.Context, b Backend) Result[[]model.Topic] {
		return b.GetCourseTopics(ctx, courseID)
	})
}

func (g *Gateway) GetCourseMaterials(ctx context.Context, courseID string) Result[[]model.Material] {
	return call(ctx, g, "get_course_materials", func(ctx context.Context, b Backend) Result[[]model.Material] {
		return b.GetCourseMaterials(ctx, courseID)
	})
}

func (g *Gateway) CreateMaterial(ctx context.Context, material *model.Material) Result[*model.Material] {
	return call(ctx, g, "create_material", func(ctx context.Context, b Backend) Result[*model.Material] {
		return b.CreateMaterial(ctx, material)
	})
}

func (g *Gateway) GetTests(ctx context.Context, courseID string) Result[[]model.Test] {
	return call(ctx, g, "get_tests", func(ctx context.Context, b Backend) Result[[]model.Test] {
		return b.GetTests(ctx, courseID)
	})
}

func (g *Gateway) GetTestQuestions(ctx context.Context, testID string) Result[[]model.Question] {
	return call(ctx, g, "get_test_questions", func(ctx context.Context, b Backend) Result[[]model.Question] {
		return b.GetTestQuestions(ctx, testID)
	})
}

func (g *Gateway) CreateTest(ctx context.Context, test *model.Test) Result[*model.Test] {
	return call(ctx, g, "create_test", func(ctx context.Context, b Backend) Result[*model.Test] {
		return b.CreateTest(ctx, test)
	})
}

func (g *Gateway) SubmitTestResult(ctx context.Context, result *model.TestResult) Result[*model.TestResult] {
	return call(ctx, g, "submit_test_result", func(ctx context.Context, b Backend) Result[*model.TestResult] {
		return b.SubmitTestResult(ctx, result)
	})
}

func (g *Gateway) GetTestResults(ctx context.Context, userID string) Result[[]model.TestResult] {
	return call(ctx, g, "get_test_results", func(ctx context.Context, b Backend) Result[[]model.TestResult] {
		return b.GetTestResults(ctx, userID)
	})
}

func (g *Gateway) UploadFile(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) Result[string] {
	return call(ctx, g, "upload_file", func(ctx context.Context, b Backend) Result[string] {
		return b.UploadFile(ctx, bucket, path, reader, size, contentType)
	})
}

func (g *Gateway) GetFileURL(bucket, path string) string {
	backend, _ := g.current()
	return backend.GetFileURL(bucket, path)
}

func (g *Gateway) DownloadFile(ctx context.Context, bucket, path string) Result[[]byte] {
	return call(ctx, g, "download_file", func(ctx context.Context, b Backend) Result[[]byte] {
		return b.DownloadFile(ctx, bucket, path)
	})
}

func (g *Gateway) GetProfile(ctx context.Context, userID string) Result[*model.Profile] {
	return call(ctx, g, "get_profile", func(ctx context.Context, b Backend) Result[*model.Profile] {
		return b.GetProfile(ctx, userID)
	})
}

func (g *Gateway) UpdateProfile(ctx context.Context, userID string, updates model.ProfileUpdate) Result[*model.Profile] {
	return call(ctx, g, "update_profile", func(ctx context.Context, b Backend) Result[*model.Profile] {
		return b.UpdateProfile(ctx, userID, updates)
	})
}
