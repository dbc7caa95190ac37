package models

import "time"

// SoftDeleteColumns returns the column set that marks a row as logically
// removed. Todos, projects and teams share it so the flag and the timestamp
// never drift apart.
func SoftDeleteColumns(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"deleted":    true,
		"deleted_at": now,
	}
}
