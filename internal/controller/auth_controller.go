package controller

import (
	"edu_portal_backend/internal/config"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/internal/session"
	"edu_portal_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Sessions *session.Controller
	Cfg      *config.Config
}

func NewAuthController(sessions *session.Controller, cfg *config.Config) *AuthController {
	return &AuthController{Sessions: sessions, Cfg: cfg}
}

// RegisterRequest 注册请求；字段校验由会话控制器完成，以返回统一的错误信息
// swagger:model RegisterRequest
type RegisterRequest struct {
	FullName string         `json:"fullName"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     model.UserRole `json:"role"`
}

// LoginRequest 登录请求；Role 为登录表单上选择的身份，资料中有角色时以资料为准
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     model.UserRole `json:"role"`
}

// LoginResponse 登录结果
// swagger:model LoginResponse
type LoginResponse struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
}

// Register godoc
// @Summary 注册新用户
// @Description 注册后需重新登录；后端不可用时返回离线身份
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=gateway.Identity} "注册成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "邮箱已被注册或密码不符合要求"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	identity, err := c.Sessions.SignUp(ctx.Request.Context(), req.FullName, req.Email, req.Password, req.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, identity)
}

// Login godoc
// @Summary 用户登录
// @Description 登录并返回 JWT；后端不可用时以离线身份登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录凭证"
// @Success 200 {object} util.Response{data=LoginResponse} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "认证失败"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sess, err := c.Sessions.SignIn(ctx.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}

	token, err := util.GenerateJWT(sess.UserID, sess.Email, sess.Role, sess.Offline, c.Cfg.JWT.Secret, c.Cfg.JWT.ExpireTime)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, LoginResponse{Token: token, Session: sess})
}

// Logout godoc
// @Summary 退出登录
// @Tags 认证
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	if err := c.Sessions.SignOut(ctx.Request.Context(), claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Session godoc
// @Summary 当前会话
// @Description 返回持久化的会话，用于页面刷新或服务重启后恢复登录状态
// @Tags 认证
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=session.Session}
// @Failure 401 {object} util.Response
// @Router /api/session [get]
func (c *AuthController) Session(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	sess, err := c.Sessions.Restore(ctx.Request.Context(), claims.UserID)
	if errors.Is(err, session.ErrNoSession) {
		util.Unauthorized(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sess)
}
