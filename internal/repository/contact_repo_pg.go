package repository

import (
	"context"

	"gorm.io/gorm"

	"stemgharbiya/siteapi/internal/model"
)

type pgContactRepository struct {
	db *gorm.DB
}

func NewPGContactRepository(db *gorm.DB) ContactRepository {
	return &pgContactRepository{db: db}
}

func (r *pgContactRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
