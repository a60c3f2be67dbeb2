package controller

import (
	"edu_portal_backend/internal/quiz"
	"edu_portal_backend/internal/service"
	"edu_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Quizzes *service.QuizService
}

func NewQuizController(quizzes *service.QuizService) *QuizController {
	return &QuizController{Quizzes: quizzes}
}

// StartQuizRequest Kind 与 TestID 二选一
// swagger:model StartQuizRequest
type StartQuizRequest struct {
	Kind   string `json:"kind"`
	TestID string `json:"testId"`
}

// AnswerRequest 选项下标 0-3
// swagger:model AnswerRequest
type AnswerRequest struct {
	Index *int `json:"index" binding:"required"`
}

// Kinds godoc
// @Summary 内置测验类型
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/quiz/kinds [get]
func (c *QuizController) Kinds(ctx *gin.Context) {
	util.Success(ctx, c.Quizzes.Kinds())
}

// Start godoc
// @Summary 开始测验
// @Description 开始内置测验或教师创建的测试；已有进行中的测验会被关闭
// @Tags 测验
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body StartQuizRequest true "测验类型或测试ID"
// @Success 201 {object} util.Response{data=quiz.Snapshot}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quiz/runs [post]
func (c *QuizController) Start(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	var req StartQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if (req.Kind == "") == (req.TestID == "") {
		util.BadRequest(ctx, "exactly one of kind or testId is required")
		return
	}

	var (
		snap quiz.Snapshot
		err  error
	)
	if req.TestID != "" {
		snap, err = c.Quizzes.StartTest(ctx.Request.Context(), claims.UserID, req.TestID)
	} else {
		snap, err = c.Quizzes.StartBuiltin(ctx.Request.Context(), claims.UserID, req.Kind)
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, snap)
}

// Current godoc
// @Summary 当前测验状态
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=quiz.Snapshot}
// @Failure 404 {object} util.Response
// @Router /api/quiz/run [get]
func (c *QuizController) Current(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	snap, err := c.Quizzes.Current(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// Answer godoc
// @Summary 选择答案
// @Description 记录当前题目的答案，不会前进
// @Tags 测验
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body AnswerRequest true "选项下标"
// @Success 200 {object} util.Response{data=quiz.Snapshot}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "测验未在进行中"
// @Router /api/quiz/run/answer [post]
func (c *QuizController) Answer(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snap, err := c.Quizzes.SelectAnswer(claims.UserID, *req.Index)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// Next godoc
// @Summary 下一题
// @Description 在最后一题时结束测验，返回的快照包含成绩
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=quiz.Snapshot}
// @Failure 409 {object} util.Response "测验未在进行中"
// @Router /api/quiz/run/next [post]
func (c *QuizController) Next(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	snap, err := c.Quizzes.Next(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// Prev godoc
// @Summary 上一题
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=quiz.Snapshot}
// @Router /api/quiz/run/prev [post]
func (c *QuizController) Prev(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	snap, err := c.Quizzes.Prev(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// Close godoc
// @Summary 关闭测验
// @Description 停止倒计时并丢弃测验，不保存成绩
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/quiz/run [delete]
func (c *QuizController) Close(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	if err := c.Quizzes.Close(claims.UserID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
