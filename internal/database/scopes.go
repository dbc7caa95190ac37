package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/todo-team-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// After restricts a query to rows with an id above the cursor, in id order,
// at most limit rows. Cascades use it to walk complete result sets.
func After(lastID uint64, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id > ?", lastID).Order("id ASC").Limit(limit)
	}
}
