package db

import (
	"strings"

	"gorm.io/gorm"
)

// InsertIgnoringConflict turns a plain INSERT into one that skips rows
// colliding on target. MySQL has no ON CONFLICT clause, so it gets INSERT IGNORE.
func InsertIgnoringConflict(conn *gorm.DB, insert, target string) string {
	insert = strings.TrimSpace(insert)
	if conn != nil && conn.Dialector != nil && conn.Dialector.Name() == "mysql" {
		return "INSERT IGNORE" + strings.TrimPrefix(insert, "INSERT")
	}
	return insert + " ON CONFLICT (" + target + ") DO NOTHING"
}
