package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/attendsys/attendsysbackend/models"
)

// GormUserRepository handles database operations for User entities
type GormUserRepository struct {
	DB *gorm.DB
}

// Ensure GormUserRepository implements UserRepository
var _ UserRepository = (*GormUserRepository)(nil)

// NewUserRepository creates a new instance of GormUserRepository
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{DB: db}
}

// Create creates a new user record in the database
func (r *GormUserRepository) Create(user *models.User) error {
	err := r.DB.Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username
func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// Count returns the number of users
func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&models.User{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
