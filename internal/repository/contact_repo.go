package repository

import (
	"context"

	"stemgharbiya/siteapi/internal/model"
)

type ContactRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
}
