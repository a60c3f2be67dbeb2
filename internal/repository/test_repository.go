package repository

import (
	"context"
	"edu_portal_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

// List courseID 为空时返回全部测试
func (r *TestRepository) List(ctx context.Context, courseID string) ([]model.Test, error) {
	var tests []model.Test
	query := r.DB.WithContext(ctx).Model(&model.Test{})
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	err := query.Order("created_at DESC").Find(&tests).Error
	return tests, err
}

func (r *TestRepository) Questions(ctx context.Context, testID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("position ASC").
		Find(&questions).Error
	return questions, err
}

// Create 测试与题目在同一事务中写入
// Create 在事务中写入测试和题目；失败时不修改 test.Questions，网关降级重试时题目仍完整
func (r *TestRepository) Create(ctx context.Context, test *model.Test) error {
	questions := make([]model.Question, len(test.Questions))
	copy(questions, test.Questions)

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(test).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].TestID = test.ID
			questions[i].Position = i
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		test.Questions = questions
		return nil
	})
}

func (r *TestRepository) CreateResult(ctx context.Context, result *model.TestResult) error {
	return r.DB.WithContext(ctx).Omit("Test").Create(result).Error
}

func (r *TestRepository) ResultsByUser(ctx context.Context, userID string) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.WithContext(ctx).
		Preload("Test", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "course_id")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error
	return results, err
}
