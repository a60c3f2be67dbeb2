package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	*gateway.OfflineBackend
	connected     bool
	signIn        *gateway.Result[*gateway.Identity]
	profile       gateway.Result[*model.Profile]
	profileCalls  int
	updates       []model.ProfileUpdate
	updateErr     error
	signInCalls   int
	signOutCalled bool
}

func newFakeBackend(connected bool) *fakeBackend {
	return &fakeBackend{OfflineBackend: gateway.NewOfflineBackend("https://example.com/demo.pdf"), connected: connected}
}

func (f *fakeBackend) Connected() bool { return f.connected }

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) gateway.Result[*gateway.Identity] {
	f.signInCalls++
	if f.signIn != nil {
		return *f.signIn
	}
	return f.OfflineBackend.SignIn(ctx, email, password)
}

func (f *fakeBackend) GetProfile(ctx context.Context, userID string) gateway.Result[*model.Profile] {
	f.profileCalls++
	return f.profile
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, userID string, updates model.ProfileUpdate) gateway.Result[*model.Profile] {
	f.updates = append(f.updates, updates)
	if f.updateErr != nil {
		return gateway.Fail[*model.Profile](f.updateErr)
	}
	return gateway.OK(&model.Profile{FullName: updates.FullName})
}

func (f *fakeBackend) SignOut(ctx context.Context) gateway.Result[struct{}] {
	f.signOutCalled = true
	return gateway.Fail[struct{}](errors.New("boom"))
}

func liveIdentity(id, email string) *gateway.Result[*gateway.Identity] {
	r := gateway.OK(&gateway.Identity{ID: id, Email: email})
	return &r
}

func TestSignInOfflineEchoesEmail(t *testing.T) {
	backend := newFakeBackend(false)
	store := NewMemoryStore()
	c := NewController(backend, store)

	sess, err := c.SignIn(context.Background(), "ali@example.com", "secret", model.Teacher)
	require.NoError(t, err)
	assert.Equal(t, "ali@example.com", sess.Email)
	assert.Contains(t, sess.UserID, "offline-")
	assert.Equal(t, model.Teacher, sess.Role)
	assert.True(t, sess.Offline)
	assert.Nil(t, sess.Profile)
	assert.Zero(t, backend.profileCalls)

	restored, err := c.Restore(context.Background(), sess.UserID)
	require.NoError(t, err)
	assert.Equal(t, sess.Email, restored.Email)
}

func TestSignInRequiresCredentials(t *testing.T) {
	backend := newFakeBackend(true)
	c := NewController(backend, NewMemoryStore())

	_, err := c.SignIn(context.Background(), "", "secret", model.Student)
	assert.ErrorIs(t, err, gateway.ErrAuth)

	_, err = c.SignIn(context.Background(), "a@b.c", "", model.Student)
	assert.ErrorIs(t, err, gateway.ErrAuth)
	assert.Zero(t, backend.signInCalls)
}

func TestSignInRoleFromProfile(t *testing.T) {
	backend := newFakeBackend(true)
	backend.signIn = liveIdentity("u1", "ayse@example.com")
	backend.profile = gateway.OK(&model.Profile{FullName: "Ayşe", UserType: model.Teacher})
	c := NewController(backend, NewMemoryStore())

	sess, err := c.SignIn(context.Background(), "ayse@example.com", "secret", model.Student)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, model.Teacher, sess.Role)
	require.NotNil(t, sess.Profile)
	assert.Equal(t, "Ayşe", sess.Profile.FullName)
	assert.False(t, sess.Offline)
}

func TestSignInProfileFailureIsSwallowed(t *testing.T) {
	backend := newFakeBackend(true)
	backend.signIn = liveIdentity("u2", "mehmet@example.com")
	backend.profile = gateway.Fail[*model.Profile](gateway.NewError(gateway.KindNotFound, "record not found"))
	store := NewMemoryStore()
	c := NewController(backend, store)

	sess, err := c.SignIn(context.Background(), "mehmet@example.com", "secret", model.Student)
	require.NoError(t, err)
	assert.Equal(t, model.Student, sess.Role)
	assert.Nil(t, sess.Profile)

	_, err = store.Load(context.Background(), "u2")
	require.NoError(t, err)
}

func TestSignInProfileWithoutRoleKeepsSelection(t *testing.T) {
	backend := newFakeBackend(true)
	backend.signIn = liveIdentity("u3", "x@example.com")
	backend.profile = gateway.OK(&model.Profile{FullName: "X"})
	c := NewController(backend, NewMemoryStore())

	sess, err := c.SignIn(context.Background(), "x@example.com", "secret", model.Teacher)
	require.NoError(t, err)
	assert.Equal(t, model.Teacher, sess.Role)
	assert.NotNil(t, sess.Profile)
}

func TestSignInAuthErrorSurfaced(t *testing.T) {
	backend := newFakeBackend(true)
	failed := gateway.Fail[*gateway.Identity](gateway.NewError(gateway.KindAuth, "Invalid login credentials"))
	backend.signIn = &failed
	store := NewMemoryStore()
	c := NewController(backend, store)

	_, err := c.SignIn(context.Background(), "x@example.com", "wrong", model.Student)
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())
	assert.Empty(t, store.sessions)
}

func TestSignUpValidation(t *testing.T) {
	c := NewController(newFakeBackend(true), NewMemoryStore())

	_, err := c.SignUp(context.Background(), "", "a@b.c", "secret", model.Student)
	assert.ErrorIs(t, err, gateway.ErrValidation)

	_, err = c.SignUp(context.Background(), "Ali", "a@b.c", "12345", model.Student)
	assert.ErrorIs(t, err, gateway.ErrValidation)
}

func TestSignUpWritesProfileWhenConnected(t *testing.T) {
	backend := newFakeBackend(true)
	backend.updateErr = gateway.NewError(gateway.KindInternal, "insert failed")
	c := NewController(backend, NewMemoryStore())

	id, err := c.SignUp(context.Background(), "Ali Veli", "ali@example.com", "secret1", model.Teacher)
	require.NoError(t, err)
	require.NotNil(t, id)
	require.Len(t, backend.updates, 1)
	assert.Equal(t, model.ProfileUpdate{FullName: "Ali Veli", Email: "ali@example.com", UserType: model.Teacher}, backend.updates[0])
}

func TestSignUpOfflineSkipsProfile(t *testing.T) {
	backend := newFakeBackend(false)
	c := NewController(backend, NewMemoryStore())

	id, err := c.SignUp(context.Background(), "Ali", "ali@example.com", "secret1", model.Student)
	require.NoError(t, err)
	assert.Equal(t, "ali@example.com", id.Email)
	assert.Empty(t, backend.updates)
}

func TestSignOutClearsStoreEvenOnBackendError(t *testing.T) {
	backend := newFakeBackend(false)
	store := NewMemoryStore()
	c := NewController(backend, store)
	require.NoError(t, store.Save(context.Background(), &Session{UserID: "u1", Email: "a@b.c", CreatedAt: time.Now()}))

	require.NoError(t, c.SignOut(context.Background(), "u1"))
	assert.True(t, backend.signOutCalled)

	_, err := c.Restore(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "currentUser:abc", Key("abc"))
}
