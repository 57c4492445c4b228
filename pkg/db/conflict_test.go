package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestInsertIgnoringConflict(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	got := InsertIgnoringConflict(conn, "INSERT INTO stores (id) VALUES (?)", "code")
	assert.Equal(t, "INSERT INTO stores (id) VALUES (?) ON CONFLICT (code) DO NOTHING", got)

	my := &gorm.DB{Config: &gorm.Config{Dialector: mysql.New(mysql.Config{SkipInitializeWithVersion: true})}}
	got = InsertIgnoringConflict(my, "INSERT INTO stores (id) VALUES (?)", "code")
	assert.Equal(t, "INSERT IGNORE INTO stores (id) VALUES (?)", got)
}
