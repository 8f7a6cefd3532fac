package repository

import (
	"context"

	"stemgharbiya/siteapi/internal/model"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	// ExistsByNaturalKey reports whether an application with the same
	// (schoolEmail, githubUsername) pair is already stored. The check and
	// the subsequent insert are not atomic; the unique index created in
	// model.AutoMigrate catches the race.
	ExistsByNaturalKey(ctx context.Context, schoolEmail, githubUsername string) (bool, error)
}
