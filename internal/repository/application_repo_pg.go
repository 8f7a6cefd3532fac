package repository

import (
	"context"

	"gorm.io/gorm"

	"stemgharbiya/siteapi/internal/model"
)

type pgApplicationRepository struct {
	db *gorm.DB
}

func NewPGApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &pgApplicationRepository{db: db}
}

func (r *pgApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *pgApplicationRepository) ExistsByNaturalKey(ctx context.Context, schoolEmail, githubUsername string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("lower(school_email) = lower(?) AND lower(github_username) = lower(?)", schoolEmail, githubUsername).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
