package repository

import (
	"github.com/attendsys/attendsysbackend/models"
)

// StudentRepositoryInterface defines the methods for student data operations
type StudentRepositoryInterface interface {
	Create(student *models.Student) error
	GetByID(id uint) (*models.Student, error)
	ListAll() ([]models.Student, error)
	Update(student *models.Student) error
	Delete(id uint) error

	// SetEmbedding stores (or replaces) the face embedding for a student
	SetEmbedding(studentID uint, embedding []float32, model string) error

	// ListEnrolled returns the registry snapshot: every student that has a
	// stored face embedding. Students without one are excluded.
	ListEnrolled() ([]models.Student, error)
}

// CourseRepositoryInterface defines the methods for course data operations
type CourseRepositoryInterface interface {
	Create(course *models.Course) error
	GetByID(id uint) (*models.Course, error)
	GetByCode(code string) (*models.Course, error)
	ListAll() ([]models.Course, error)
	Update(course *models.Course) error
	Delete(id uint) error
}

// AttendanceRepositoryInterface defines the methods for the attendance ledger.
// It owns the once-per-day uniqueness rule for (student, course, date).
type AttendanceRepositoryInterface interface {
	// InsertIfAbsent atomically records a "present" fact for the triple and
	// reports whether a row was actually inserted. A false return with nil
	// error means the fact already existed.
	InsertIfAbsent(studentID, courseID uint, date string) (bool, error)

	// ExistsForDate reports whether a fact exists for the triple.
	ExistsForDate(studentID, courseID uint, date string) (bool, error)

	// ReplaceForDate replaces all attendance rows of a course for one date
	// with the given entries (manual marking).
	ReplaceForDate(courseID uint, date string, entries []models.Attendance) error

	ListByCourseAndDate(courseID uint, date string) ([]models.Attendance, error)
}

// UserRepository defines the methods for user data operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Count() (int64, error)
}
