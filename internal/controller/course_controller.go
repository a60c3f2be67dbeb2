package controller

import (
	"edu_portal_backend/internal/service"
	"edu_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	Courses *service.CourseService
}

func NewCourseController(courses *service.CourseService) *CourseController {
	return &CourseController{Courses: courses}
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.Courses.ListCourses(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary 课程详情
// @Description 同时返回主题和教学资料
// @Tags 课程
// @Security BearerAuth
// @Produce json
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	detail, err := c.Courses.OpenCourseByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// GetCourseByName godoc
// @Summary 按名称打开课程
// @Description 数据库中不存在时返回内置课程目录（static=true）
// @Tags 课程
// @Security BearerAuth
// @Produce json
// @Param name path string true "课程名称"
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 404 {object} util.Response
// @Router /api/courses/by-name/{name} [get]
func (c *CourseController) GetCourseByName(ctx *gin.Context) {
	detail, err := c.Courses.OpenCourseByName(ctx.Request.Context(), ctx.Param("name"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// MaterialURL godoc
// @Summary 获取 PDF 教材地址
// @Description 不检查文件是否存在；离线模式返回演示文件
// @Tags 课程
// @Security BearerAuth
// @Produce json
// @Param name path string true "文件名"
// @Success 200 {object} util.Response{data=object}
// @Router /api/materials/{name}/url [get]
func (c *CourseController) MaterialURL(ctx *gin.Context) {
	util.Success(ctx, gin.H{"url": c.Courses.MaterialURL(ctx.Param("name"))})
}
