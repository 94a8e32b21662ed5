package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/attendsys/attendsysbackend/models"
)

// newTestDB opens an in-memory sqlite database with the full schema. The
// single-connection pool keeps every query on the same in-memory database
// and serializes concurrent writers the way sqlite does in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Attendance{},
		&models.User{},
	))
	return db
}

func createStudent(t *testing.T, repo *StudentRepository, name, roll, email string) *models.Student {
	t.Helper()
	student := &models.Student{Name: name, RollNumber: roll, Email: email}
	require.NoError(t, repo.Create(student))
	return student
}

func createCourse(t *testing.T, repo *CourseRepository, name, code string) *models.Course {
	t.Helper()
	course := &models.Course{Name: name, Code: code}
	require.NoError(t, repo.Create(course))
	return course
}
