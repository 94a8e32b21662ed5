package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/attendsys/attendsysbackend/models"
)

// AttendanceRepository handles database operations for the attendance ledger.
// The unique index on (student_id, course_id, date) is the single authority
// for the once-per-day rule; InsertIfAbsent never races into a duplicate.
type AttendanceRepository struct {
	DB *gorm.DB
}

// Ensure AttendanceRepository implements AttendanceRepositoryInterface
var _ AttendanceRepositoryInterface = (*AttendanceRepository)(nil)

// NewAttendanceRepository creates a new instance of AttendanceRepository
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

// InsertIfAbsent atomically records a "present" fact for (student, course,
// date) and reports whether a row was actually inserted. The insert is a
// single ON CONFLICT DO NOTHING statement, so two concurrent callers can
// never both succeed.
func (r *AttendanceRepository) InsertIfAbsent(studentID, courseID uint, date string) (bool, error) {
	record := models.Attendance{
		StudentID: studentID,
		CourseID:  courseID,
		Date:      date,
		Status:    true,
		CreatedAt: time.Now().Unix(),
	}

	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&record)

	if result.Error != nil {
		return false, fmt.Errorf("failed to insert attendance for student %d, course %d, date %s: %w",
			studentID, courseID, date, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ExistsForDate reports whether a fact exists for (student, course, date)
func (r *AttendanceRepository) ExistsForDate(studentID, courseID uint, date string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Attendance{}).
		Where("student_id = ? AND course_id = ? AND date = ?", studentID, courseID, date).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check attendance for student %d, course %d, date %s: %w",
			studentID, courseID, date, err)
	}
	return count > 0, nil
}

// ReplaceForDate replaces all attendance rows of a course for one date with
// the given entries. Used by manual marking, which rewrites the whole day.
func (r *AttendanceRepository) ReplaceForDate(courseID uint, date string, entries []models.Attendance) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ? AND date = ?", courseID, date).
			Delete(&models.Attendance{}).Error; err != nil {
			return fmt.Errorf("failed to clear attendance for course %d on %s: %w", courseID, date, err)
		}
		now := time.Now().Unix()
		for i := range entries {
			entries[i].CourseID = courseID
			entries[i].Date = date
			if entries[i].CreatedAt == 0 {
				entries[i].CreatedAt = now
			}
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to write attendance for course %d on %s: %w", courseID, date, err)
		}
		return nil
	})
}

// ListByCourseAndDate retrieves all attendance rows of a course for one date,
// with the student preloaded.
func (r *AttendanceRepository) ListByCourseAndDate(courseID uint, date string) ([]models.Attendance, error) {
	var records []models.Attendance
	err := r.DB.Preload("Student").
		Where("course_id = ? AND date = ?", courseID, date).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for course %d on %s: %w", courseID, date, err)
	}
	return records, nil
}
