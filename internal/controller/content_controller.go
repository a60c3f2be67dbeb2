package controller

import (
	"edu_portal_backend/internal/model"
	"edu_portal_backend/internal/service"
	"edu_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	Content *service.ContentService
}

func NewContentController(content *service.ContentService) *ContentController {
	return &ContentController{Content: content}
}

// ListTests godoc
// @Summary 测试列表
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Param course_id query string false "课程ID"
// @Success 200 {object} util.Response{data=[]model.Test}
// @Router /api/tests [get]
func (c *ContentController) ListTests(ctx *gin.Context) {
	tests, err := c.Content.ListTests(ctx.Request.Context(), ctx.Query("course_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, tests)
}

// Results godoc
// @Summary 我的测验成绩
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.TestResult}
// @Router /api/results [get]
func (c *ContentController) Results(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	results, err := c.Content.Results(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// CreateTest godoc
// @Summary 创建测试
// @Description 每道题四个选项；时长默认 10 分钟
// @Tags 教师
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.TestDraft true "测试内容"
// @Success 201 {object} util.Response{data=model.Test}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/teacher/tests [post]
func (c *ContentController) CreateTest(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	var draft service.TestDraft
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.Content.CreateTest(ctx.Request.Context(), claims.UserID, draft)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, test)
}

// UploadMaterial godoc
// @Summary 上传教学资料
// @Description 支持 PDF、视频和图片；视频时长通过 ffprobe 获取
// @Tags 教师
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param type formData string true "资料类型" Enums(pdf, video, image)
// @Param course_id formData string false "课程ID"
// @Param description formData string false "描述"
// @Param file formData file true "文件"
// @Success 201 {object} util.Response{data=service.MaterialLink}
// @Failure 400 {object} util.Response
// @Failure 413 {object} util.Response
// @Router /api/teacher/materials [post]
func (c *ContentController) UploadMaterial(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, util.ErrMissingUploadFile.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	link, err := c.Content.UploadMaterial(ctx.Request.Context(), claims.UserID, service.MaterialUpload{
		Kind:        model.MaterialType(ctx.PostForm("type")),
		CourseID:    ctx.PostForm("course_id"),
		Description: ctx.PostForm("description"),
		FileName:    file.Filename,
		Size:        file.Size,
		Body:        src,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, link)
}
