package models

import "math"

// Student represents an enrollable student in the database using GORM.
// It corresponds to the 'students' table.
type Student struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"not null" json:"name"`
	RollNumber string `gorm:"uniqueIndex;not null" json:"roll_number"`
	Email      string `gorm:"uniqueIndex;not null" json:"email"`

	// EmbeddingData holds the student's face embedding vector as a BLOB,
	// or NULL while the student is not enrolled for face recognition.
	EmbeddingData  []byte `gorm:"column:embedding_data" json:"-"`
	EmbeddingModel string `gorm:"column:embedding_model" json:"embedding_model,omitempty"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"` // Stored as INTEGER in SQLite, Unix timestamp

	// Relationships
	Attendance []Attendance `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"attendance,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Student) TableName() string {
	return "students"
}

// HasEmbedding reports whether the student has a stored face embedding.
func (s *Student) HasEmbedding() bool {
	return len(s.EmbeddingData) > 0
}

// GetEmbedding converts the BLOB data to []float32
func (s *Student) GetEmbedding() []float32 {
	if len(s.EmbeddingData) == 0 {
		return nil
	}

	embedding := make([]float32, len(s.EmbeddingData)/4) // 4 bytes per float32
	for i := 0; i < len(embedding); i++ {
		offset := i * 4
		bits := uint32(s.EmbeddingData[offset]) |
			uint32(s.EmbeddingData[offset+1])<<8 |
			uint32(s.EmbeddingData[offset+2])<<16 |
			uint32(s.EmbeddingData[offset+3])<<24
		embedding[i] = math.Float32frombits(bits)
	}
	return embedding
}

// SetEmbedding converts []float32 to BLOB data
func (s *Student) SetEmbedding(embedding []float32) {
	if len(embedding) == 0 {
		s.EmbeddingData = nil
		return
	}

	s.EmbeddingData = make([]byte, len(embedding)*4) // 4 bytes per float32
	for i, val := range embedding {
		offset := i * 4
		bits := math.Float32bits(val)
		s.EmbeddingData[offset] = byte(bits)
		s.EmbeddingData[offset+1] = byte(bits >> 8)
		s.EmbeddingData[offset+2] = byte(bits >> 16)
		s.EmbeddingData[offset+3] = byte(bits >> 24)
	}
}
