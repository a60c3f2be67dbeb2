package repository

import (
	"context"
	"edu_portal_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// Probe 启动时的连通性探测：对 profiles 做一次最小读取
func (r *ProfileRepository) Probe(ctx context.Context) error {
	var count int64
	return r.DB.WithContext(ctx).Model(&model.Profile{}).Limit(1).Count(&count).Error
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	return &profile, err
}

// Upsert 按主键写入，已存在时只更新非空字段
func (r *ProfileRepository) Upsert(ctx context.Context, id string, updates model.ProfileUpdate) (*model.Profile, error) {
	profile := &model.Profile{
		UUIDBase: model.UUIDBase{ID: id},
		FullName: updates.FullName,
		Email:    updates.Email,
		UserType: updates.UserType,
	}

	columns := make([]string, 0, 3)
	if updates.FullName != "" {
		columns = append(columns, "full_name")
	}
	if updates.Email != "" {
		columns = append(columns, "email")
	}
	if updates.UserType != "" {
		columns = append(columns, "user_type")
	}
	columns = append(columns, "updated_at")

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(profile).Error
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}
