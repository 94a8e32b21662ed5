package models

// Course represents a course for which attendance is taken.
// It corresponds to the 'courses' table.
type Course struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Code string `gorm:"uniqueIndex;not null" json:"code"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp

	// Relationships
	Attendance []Attendance `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"attendance,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Course) TableName() string {
	return "courses"
}
