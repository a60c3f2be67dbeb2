package session

import (
	"context"
	"strings"
	"time"

	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/pkg/logger"

	"go.uber.org/zap"
)

// fallbackUserID 后端未返回身份时使用
const fallbackUserID = "offline-user"

const minPasswordLength = 6

// Backend 会话控制器依赖的网关能力
type Backend interface {
	gateway.AuthAPI
	gateway.ProfileAPI
	Connected() bool
}

type Controller struct {
	backend Backend
	store   Store
	now     func() time.Time
}

func NewController(backend Backend, store Store) *Controller {
	return &Controller{backend: backend, store: store, now: time.Now}
}

// SignIn 登录并建立会话。角色优先取资料中的 user_type，否则使用登录时选择的角色；
// 资料获取失败只记录警告。
func (c *Controller) SignIn(ctx context.Context, email, password string, selected model.UserRole) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, gateway.NewError(gateway.KindAuth, "Email and password are required")
	}
	if !selected.Valid() {
		selected = model.Student
	}

	res := c.backend.SignIn(ctx, email, password)
	if res.Error != nil {
		return nil, res.Error
	}

	sess := &Session{
		UserID:    fallbackUserID,
		Email:     email,
		Role:      selected,
		CreatedAt: c.now(),
	}
	if res.Data != nil {
		sess.UserID = res.Data.ID
		sess.Email = res.Data.Email
	}

	connected := c.backend.Connected()
	sess.Offline = !connected
	if connected && res.Data != nil {
		profile, err := c.fetchProfile(ctx, res.Data.ID)
		if err != nil {
			logger.Log.Warn("Profile fetch failed, using selected role",
				zap.String("user_id", res.Data.ID), zap.Error(err))
		}
		if profile != nil {
			sess.Profile = profile
			if profile.UserType.Valid() {
				sess.Role = profile.UserType
			}
		}
	}
	// 资料请求可能触发降级
	if !c.backend.Connected() {
		sess.Offline = true
	}

	c.persist(ctx, sess)
	return sess, nil
}

func (c *Controller) fetchProfile(ctx context.Context, userID string) (*model.Profile, error) {
	res := c.backend.GetProfile(ctx, userID)
	if res.Error != nil {
		return nil, &gateway.ErrorInfo{Kind: gateway.KindProfileFetch, Message: res.Error.Message}
	}
	return res.Data, nil
}

// SignUp 注册但不登录；在线时写入资料行，失败只记录警告
func (c *Controller) SignUp(ctx context.Context, fullName, email, password string, role model.UserRole) (*gateway.Identity, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" || password == "" {
		return nil, gateway.NewError(gateway.KindValidation, "All fields are required")
	}
	if len(password) < minPasswordLength {
		return nil, gateway.NewError(gateway.KindValidation, "Password should be at least 6 characters")
	}
	if !role.Valid() {
		role = model.Student
	}

	res := c.backend.SignUp(ctx, email, password, gateway.Metadata{FullName: fullName, UserType: role})
	if res.Error != nil {
		return nil, res.Error
	}

	if c.backend.Connected() && res.Data != nil {
		upd := c.backend.UpdateProfile(ctx, res.Data.ID, model.ProfileUpdate{
			FullName: fullName,
			UserType: role,
			Email:    email,
		})
		if upd.Error != nil {
			logger.Log.Warn("Profile creation failed, signup succeeded",
				zap.String("user_id", res.Data.ID), zap.Error(upd.Error))
		}
	}
	return res.Data, nil
}

// SignOut 无论后端结果如何都清除持久化会话
func (c *Controller) SignOut(ctx context.Context, userID string) error {
	res := c.backend.SignOut(ctx)
	if res.Error != nil {
		logger.Log.Warn("Backend sign-out failed", zap.String("user_id", userID), zap.Error(res.Error))
	}
	return c.store.Delete(ctx, userID)
}

// Restore 读取持久化会话，用于重启或重新加载后恢复登录状态
func (c *Controller) Restore(ctx context.Context, userID string) (*Session, error) {
	return c.store.Load(ctx, userID)
}

func (c *Controller) persist(ctx context.Context, sess *Session) {
	if err := c.store.Save(ctx, sess); err != nil {
		logger.Log.Error("Failed to persist session", zap.String("user_id", sess.UserID), zap.Error(err))
	}
}
