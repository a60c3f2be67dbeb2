package service

import (
	"context"
	"edu_portal_backend/internal/catalog"
	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/internal/util"
	"edu_portal_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CourseBackend 课程浏览需要的网关能力
type CourseBackend interface {
	gateway.CourseAPI
	GetFileURL(bucket, path string) string
}

// CourseDetail 课程详情；Static 表示来自内置目录而非数据库
type CourseDetail struct {
	Course    model.Course   `json:"course"`
	Topics    []model.Topic  `json:"topics"`
	Materials []MaterialLink `json:"materials"`
	Static    bool           `json:"static"`
}

type MaterialLink struct {
	model.Material
	URL string `json:"url"`
}

type CourseService struct {
	Backend CourseBackend
}

func NewCourseService(backend CourseBackend) *CourseService {
	return &CourseService{Backend: backend}
}

func (s *CourseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	res := s.Backend.GetCourses(ctx)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.Data == nil {
		return []model.Course{}, nil
	}
	return res.Data, nil
}

// OpenCourse 并发获取主题和资料并等待两者完成；任一失败时记录警告并以空列表展示
func (s *CourseService) OpenCourse(ctx context.Context, course model.Course) (*CourseDetail, error) {
	var (
		topics    []model.Topic
		materials []model.Material
		g         errgroup.Group
	)

	g.Go(func() error {
		res := s.Backend.GetCourseTopics(ctx, course.ID)
		if res.Error != nil {
			logger.Log.Warn("Failed to load course topics",
				zap.String("course_id", course.ID), zap.Error(res.Error))
			return nil
		}
		topics = res.Data
		return nil
	})
	g.Go(func() error {
		res := s.Backend.GetCourseMaterials(ctx, course.ID)
		if res.Error != nil {
			logger.Log.Warn("Failed to load course materials",
				zap.String("course_id", course.ID), zap.Error(res.Error))
			return nil
		}
		materials = res.Data
		return nil
	})
	_ = g.Wait()

	if topics == nil {
		topics = []model.Topic{}
	}
	return &CourseDetail{
		Course:    course,
		Topics:    topics,
		Materials: s.links(materials),
	}, nil
}

// OpenCourseByID 在课程列表中按 ID 查找后打开
func (s *CourseService) OpenCourseByID(ctx context.Context, id string) (*CourseDetail, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range courses {
		if c.ID == id {
			return s.OpenCourse(ctx, c)
		}
	}
	return nil, util.ErrCourseNotFound
}

// OpenCourseByName 数据库中没有该课程时退回内置目录
func (s *CourseService) OpenCourseByName(ctx context.Context, name string) (*CourseDetail, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range courses {
		if c.Name == name {
			return s.OpenCourse(ctx, c)
		}
	}

	static, ok := catalog.CourseByName(name)
	if !ok {
		return nil, util.ErrCourseNotFound
	}
	return s.staticDetail(static), nil
}

func (s *CourseService) staticDetail(c catalog.Course) *CourseDetail {
	detail := &CourseDetail{
		Course:    model.Course{Name: c.Name},
		Topics:    make([]model.Topic, 0, len(c.Topics)),
		Materials: make([]MaterialLink, 0, len(c.Materials)),
		Static:    true,
	}
	for i, t := range c.Topics {
		detail.Topics = append(detail.Topics, model.Topic{Name: t, Order: i})
	}
	for _, m := range c.Materials {
		detail.Materials = append(detail.Materials, MaterialLink{
			Material: model.Material{Name: m, Type: model.PDF, Bucket: util.BucketPDFs, Path: m},
			URL:      s.MaterialURL(m),
		})
	}
	return detail
}

// MaterialURL PDF 教材的查看地址，不检查文件是否存在
func (s *CourseService) MaterialURL(name string) string {
	return s.Backend.GetFileURL(util.BucketPDFs, name)
}

func (s *CourseService) links(materials []model.Material) []MaterialLink {
	out := make([]MaterialLink, 0, len(materials))
	for _, m := range materials {
		bucket, path := m.Bucket, m.Path
		if bucket == "" {
			bucket = util.BucketPDFs
		}
		if path == "" {
			path = m.Name
		}
		out = append(out, MaterialLink{Material: m, URL: s.Backend.GetFileURL(bucket, path)})
	}
	return out
}
