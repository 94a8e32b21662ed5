package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/attendsys/attendsysbackend/models"
)

// CourseRepository handles database operations for Course entities
type CourseRepository struct {
	DB *gorm.DB
}

// Ensure CourseRepository implements CourseRepositoryInterface
var _ CourseRepositoryInterface = (*CourseRepository)(nil)

// NewCourseRepository creates a new instance of CourseRepository
func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// Create creates a new course record in the database
func (r *CourseRepository) Create(course *models.Course) error {
	now := time.Now().Unix()
	if course.CreatedAt == 0 {
		course.CreatedAt = now
	}
	if course.UpdatedAt == 0 {
		course.UpdatedAt = now
	}

	err := r.DB.Create(course).Error
	if err != nil {
		return fmt.Errorf("failed to create course %s: %w", course.Code, err)
	}
	return nil
}

// GetByID retrieves a course by its ID
func (r *CourseRepository) GetByID(id uint) (*models.Course, error) {
	var course models.Course
	err := r.DB.First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get course by ID %d: %w", id, err)
	}
	return &course, nil
}

// GetByCode retrieves a course by its unique code
func (r *CourseRepository) GetByCode(code string) (*models.Course, error) {
	var course models.Course
	err := r.DB.Where("code = ?", code).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get course by code %s: %w", code, err)
	}
	return &course, nil
}

// ListAll retrieves all courses, ordered by code
func (r *CourseRepository) ListAll() ([]models.Course, error) {
	var courses []models.Course
	err := r.DB.Order("code ASC").Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// Update updates an existing course's details
func (r *CourseRepository) Update(course *models.Course) error {
	course.UpdatedAt = time.Now().Unix()
	result := r.DB.Model(&models.Course{ID: course.ID}).Updates(models.Course{
		Name:      course.Name,
		Code:      course.Code,
		UpdatedAt: course.UpdatedAt,
	})

	if result.Error != nil {
		return fmt.Errorf("failed to update course ID %d: %w", course.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a course and its attendance records
func (r *CourseRepository) Delete(id uint) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return fmt.Errorf("failed to delete attendance for course ID %d: %w", id, err)
		}
		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete course ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return err
}
