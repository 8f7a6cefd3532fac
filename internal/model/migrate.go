package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
// It is idempotent and runs once at startup, before the server accepts traffic.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Application{},
		&ContactMessage{},
	); err != nil {
		return err
	}

	// Natural key: one application per (school email, GitHub username) pair.
	// The duplicate check on the request path is best-effort; this index is
	// the backstop for the rare race between two identical submissions.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_natural_key " +
			"ON applications ((lower(school_email)), (lower(github_username)))",
	).Error
}
