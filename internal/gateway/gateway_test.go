package gateway

import (
	"context"
	"edu_portal_backend/internal/config"
	"edu_portal_backend/internal/model"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLive 嵌入离线桩获得全部方法，只覆盖测试关心的调用
type fakeLive struct {
	*OfflineBackend
	probe       func(ctx context.Context) error
	courses     Result[[]model.Course]
	signIn      Result[*Identity]
	courseCalls atomic.Int32
}

func newFakeLive() *fakeLive {
	return &fakeLive{OfflineBackend: NewOfflineBackend("unused")}
}

func (f *fakeLive) Probe(ctx context.Context) error {
	if f.probe == nil {
		return nil
	}
	return f.probe(ctx)
}

func (f *fakeLive) GetCourses(ctx context.Context) Result[[]model.Course] {
	f.courseCalls.Add(1)
	return f.courses
}

func (f *fakeLive) SignIn(ctx context.Context, email, password string) Result[*Identity] {
	return f.signIn
}

const demoURL = "https://example.com/demo.pdf"

func TestProbeTimeoutUsesOfflineStub(t *testing.T) {
	live := newFakeLive()
	live.probe = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	live.courses = OK([]model.Course{{Name: "Türkçe"}})

	g := New(live, NewOfflineBackend(demoURL), 20*time.Millisecond)
	assert.False(t, g.Probe(context.Background()))
	assert.False(t, g.Connected())
	assert.Equal(t, "offline", g.Mode())

	res := g.GetCourses(context.Background())
	assert.Nil(t, res.Error)
	require.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Zero(t, live.courseCalls.Load())
}

func TestProbeErrorUsesOfflineStub(t *testing.T) {
	live := newFakeLive()
	live.probe = func(ctx context.Context) error { return errors.New("access denied") }

	g := New(live, NewOfflineBackend(demoURL), time.Second)
	assert.False(t, g.Probe(context.Background()))
	assert.Equal(t, demoURL, g.GetFileURL("pdfs", "missing.pdf"))
}

func TestProbePanicUsesOfflineStub(t *testing.T) {
	live := newFakeLive()
	live.probe = func(ctx context.Context) error { panic("driver exploded") }

	g := New(live, NewOfflineBackend(demoURL), time.Second)
	assert.False(t, g.Probe(context.Background()))
}

func TestProbeSuccessUsesLiveBackend(t *testing.T) {
	live := newFakeLive()
	live.courses = OK([]model.Course{{Name: "Rehberlik"}})

	g := New(live, NewOfflineBackend(demoURL), time.Second)
	require.True(t, g.Probe(context.Background()))

	res := g.GetCourses(context.Background())
	require.Nil(t, res.Error)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Rehberlik", res.Data[0].Name)
}

func TestNilLiveBackendIsOffline(t *testing.T) {
	g := New(nil, NewOfflineBackend(demoURL), time.Second)
	assert.False(t, g.Probe(context.Background()))

	res := g.SignIn(context.Background(), "ali@example.com", "whatever")
	require.Nil(t, res.Error)
	assert.Equal(t, "ali@example.com", res.Data.Email)
}

func TestNetworkErrorDemotesAndRetriesOnce(t *testing.T) {
	live := newFakeLive()
	live.courses = Fail[[]model.Course](&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})

	g := New(live, NewOfflineBackend(demoURL), time.Second)
	require.True(t, g.Probe(context.Background()))

	res := g.GetCourses(context.Background())
	assert.Nil(t, res.Error)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.False(t, g.Connected())
	assert.EqualValues(t, 1, live.courseCalls.Load())

	// 降级是永久的，不再访问在线后端
	g.GetCourses(context.Background())
	assert.EqualValues(t, 1, live.courseCalls.Load())
}

func TestAuthErrorIsSurfacedWithoutRetry(t *testing.T) {
	live := newFakeLive()
	live.signIn = Fail[*Identity](NewError(KindAuth, "Invalid login credentials"))

	g := New(live, NewOfflineBackend(demoURL), time.Second)
	require.True(t, g.Probe(context.Background()))

	res := g.SignIn(context.Background(), "a@b.c", "wrong")
	require.NotNil(t, res.Error)
	assert.Equal(t, KindAuth, res.Error.Kind)
	assert.Equal(t, "Invalid login credentials", res.Error.Message)
	assert.True(t, errors.Is(res.Err(), ErrAuth))
	assert.True(t, g.Connected())
}

func TestOfflineSignInMintsIdentity(t *testing.T) {
	offline := NewOfflineBackend(demoURL)
	offline.Now = func() time.Time { return time.UnixMilli(1700000000123) }

	ids := make(map[string]bool)
	for _, email := range []string{"ogrenci@example.com", "", "not-an-email"} {
		res := offline.SignIn(context.Background(), email, "")
		require.Nil(t, res.Error)
		assert.Equal(t, email, res.Data.Email)
		assert.True(t, strings.HasPrefix(res.Data.ID, "offline-1700000000123-"))
		assert.Len(t, res.Data.ID, len("offline-1700000000123-")+8)
		ids[res.Data.ID] = true
	}
	// 同一毫秒内的离线身份互不相同
	assert.Len(t, ids, 3)

	up := offline.SignUp(context.Background(), "yeni@example.com", "x", Metadata{FullName: "Ayşe"})
	require.Nil(t, up.Error)
	assert.True(t, strings.HasPrefix(up.Data.ID, "offline-"))
	assert.Equal(t, "Ayşe", up.Data.Metadata.FullName)
}

func TestOfflineProfileIsEmptySuccess(t *testing.T) {
	offline := NewOfflineBackend(demoURL)
	res := offline.GetProfile(context.Background(), "offline-1")
	assert.Nil(t, res.Error)
	assert.Nil(t, res.Data)
}

func TestDefaultProbeTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, config.DefaultProbeTimeout)
}
