package models

import "time"

// DateLayout is the storage format for attendance dates (date only, no time).
const DateLayout = "2006-01-02"

// Today returns the current date in attendance storage format.
func Today() string {
	return time.Now().Format(DateLayout)
}

// Attendance represents one attendance fact for a student in a course on a
// given date. It corresponds to the 'attendance_records' table.
//
// The composite unique index is the authority for the once-per-day rule:
// inserts for an existing (student, course, date) triple conflict at the
// database level, so concurrent recognition requests can never record the
// same student twice on one day.
type Attendance struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID uint   `gorm:"not null;index:idx_attendance_unique,unique" json:"student_id"`
	CourseID  uint   `gorm:"not null;index:idx_attendance_unique,unique" json:"course_id"`
	Date      string `gorm:"not null;index:idx_attendance_unique,unique" json:"date"` // YYYY-MM-DD
	Status    bool   `gorm:"not null;default:false" json:"status"`                    // true for present, false for absent

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Course  *Course  `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Attendance) TableName() string {
	return "attendance_records"
}
