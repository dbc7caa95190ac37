package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestFindDelegate_LocksMembershipAndUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .* FROM `team_memberships` JOIN users ON users.id = team_memberships.member_id .*users.is_active = .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "member_id", "role"}).
			AddRow(12, 3, 8, "admin"))

	member, err := NewTeamRepository(db).FindDelegate(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), member.MemberID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAdmins_OnlyActiveUsers(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `team_memberships` JOIN users ON users.id = team_memberships.member_id .*team_memberships.role = .*users.is_active = ").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := NewTeamRepository(db).CountAdmins(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
