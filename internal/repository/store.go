package repository

import (
	"context"
	"time"

	"github.com/yukikurage/todo-team-api/internal/database"
	"github.com/yukikurage/todo-team-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is a GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

// NewRepositories binds every repository to the given handle
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    NewUserRepository(db),
		Todos:    NewTodoRepository(db),
		Projects: NewProjectRepository(db),
		Teams:    NewTeamRepository(db),
	}
}

// Repositories returns repositories bound to the shared pool
func (s *GormStore) Repositories() Repositories {
	return NewRepositories(s.db)
}

// WithinTransaction runs fn inside a single database transaction
func (s *GormStore) WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// forUpdate adds a row lock where the dialect has one. SQLite serializes
// writers on its own.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// softDeleteByIDs marks rows of model deleted. Rows already deleted are
// skipped by gorm's soft-delete scope.
func softDeleteByIDs(ctx context.Context, db *gorm.DB, model interface{}, ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Model(model).
		Where("id IN ?", ids).
		Updates(models.SoftDeleteColumns(at)).Error
}

// reassignOwner sets owner_id on rows of model.
func reassignOwner(ctx context.Context, db *gorm.DB, model interface{}, ids []uint64, ownerID uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Model(model).
		Where("id IN ?", ids).
		Update("owner_id", ownerID).Error
}

// softDeleteInBatches walks every non-deleted row of model matching the
// condition in id order, batchSize ids per round, and soft-deletes each
// batch. It stops on the first short batch, so the whole matching set is
// processed whatever its size.
func softDeleteInBatches(ctx context.Context, db *gorm.DB, model interface{}, batchSize int, at time.Time, query string, args ...interface{}) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1
	}

	var (
		total  int64
		lastID uint64
	)
	for {
		var ids []uint64
		if err := db.WithContext(ctx).Model(model).
			Where(query, args...).
			Scopes(database.After(lastID, batchSize)).
			Pluck("id", &ids).Error; err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}

		if err := softDeleteByIDs(ctx, db, model, ids, at); err != nil {
			return total, err
		}
		total += int64(len(ids))
		lastID = ids[len(ids)-1]

		if len(ids) < batchSize {
			return total, nil
		}
	}
}
