package repository

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/facette/natsort"
	"gorm.io/gorm"

	"github.com/attendsys/attendsysbackend/models"
)

// StudentRepository handles database operations for Student entities
type StudentRepository struct {
	DB *gorm.DB
}

// Ensure StudentRepository implements StudentRepositoryInterface
var _ StudentRepositoryInterface = (*StudentRepository)(nil)

// NewStudentRepository creates a new instance of StudentRepository
func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

// Create creates a new student record in the database
func (r *StudentRepository) Create(student *models.Student) error {
	now := time.Now().Unix()
	if student.CreatedAt == 0 {
		student.CreatedAt = now
	}
	if student.UpdatedAt == 0 {
		student.UpdatedAt = now
	}

	err := r.DB.Create(student).Error
	if err != nil {
		return fmt.Errorf("failed to create student %s: %w", student.RollNumber, err)
	}
	return nil
}

// GetByID retrieves a student by their ID
func (r *StudentRepository) GetByID(id uint) (*models.Student, error) {
	var student models.Student
	err := r.DB.First(&student, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get student by ID %d: %w", id, err)
	}
	return &student, nil
}

// ListAll retrieves all students, naturally ordered by roll number so that
// e.g. CS-9 sorts before CS-10.
func (r *StudentRepository) ListAll() ([]models.Student, error) {
	var students []models.Student
	err := r.DB.Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	sort.Slice(students, func(i, j int) bool {
		return natsort.Compare(students[i].RollNumber, students[j].RollNumber)
	})
	return students, nil
}

// Update updates an existing student's details (not the embedding)
func (r *StudentRepository) Update(student *models.Student) error {
	student.UpdatedAt = time.Now().Unix()
	result := r.DB.Model(&models.Student{ID: student.ID}).Updates(models.Student{
		Name:       student.Name,
		RollNumber: student.RollNumber,
		Email:      student.Email,
		UpdatedAt:  student.UpdatedAt,
	})

	if result.Error != nil {
		return fmt.Errorf("failed to update student ID %d: %w", student.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a student and their attendance records
func (r *StudentRepository) Delete(id uint) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return fmt.Errorf("failed to delete attendance for student ID %d: %w", id, err)
		}
		result := tx.Delete(&models.Student{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete student ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return err
}

// SetEmbedding stores (or replaces) the face embedding for a student
func (r *StudentRepository) SetEmbedding(studentID uint, embedding []float32, model string) error {
	var student models.Student
	student.SetEmbedding(embedding)

	result := r.DB.Model(&models.Student{ID: studentID}).Updates(map[string]interface{}{
		"embedding_data":  student.EmbeddingData,
		"embedding_model": model,
		"updated_at":      time.Now().Unix(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to store embedding for student ID %d: %w", studentID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListEnrolled returns all students that have a stored face embedding
func (r *StudentRepository) ListEnrolled() ([]models.Student, error) {
	var students []models.Student
	err := r.DB.Where("embedding_data IS NOT NULL").Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled students: %w", err)
	}
	return students, nil
}
