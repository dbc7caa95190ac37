package database

import (
	"fmt"

	"github.com/yukikurage/todo-team-api/internal/logging"
	"github.com/yukikurage/todo-team-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the ownership and cascade queries
// rely on. Single-column indexes come from the model tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		name    string
		table   string
		columns string
	}{
		// Owned, still-active rows fetched on deactivation
		{&models.Todo{}, "idx_todos_owner_deleted", "todos", "owner_id, deleted"},
		{&models.Project{}, "idx_projects_owner_deleted", "projects", "owner_id, deleted"},
		{&models.Team{}, "idx_teams_owner_deleted", "teams", "owner_id, deleted"},

		// Cascade walks
		{&models.Todo{}, "idx_todos_team_deleted", "todos", "team_id, deleted"},
		{&models.Todo{}, "idx_todos_project_deleted", "todos", "project_id, deleted"},
		{&models.Project{}, "idx_projects_team_deleted", "projects", "team_id, deleted"},

		// Delegate resolution
		{&models.TeamMembership{}, "idx_team_memberships_team_role", "team_memberships", "team_id, role"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			logging.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logging.WithField("index", idx.name).Infof("Created index on %s(%s)", idx.table, idx.columns)
	}

	return nil
}

// MigrateDatabase runs all database migrations
func MigrateDatabase(db *gorm.DB) error {
	logging.Log.Info("Running database migrations...")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	logging.Log.Info("Database migrations completed")
	return nil
}
