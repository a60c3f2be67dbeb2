package repository

import (
	"context"
	"edu_portal_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Topics(ctx context.Context, courseID string) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("`order` ASC").
		Find(&topics).Error
	return topics, err
}

func (r *CourseRepository) Materials(ctx context.Context, courseID string) ([]model.Material, error) {
	var materials []model.Material
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&materials).Error
	return materials, err
}

func (r *CourseRepository) CreateMaterial(ctx context.Context, material *model.Material) error {
	return r.DB.WithContext(ctx).Create(material).Error
}
