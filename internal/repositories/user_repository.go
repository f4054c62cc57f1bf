package repositories

import (
	"github.com/dots-fit/dots-backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByFirebaseUID(firebaseUID string) (*models.User, error)
	GetDiscoverableUsers(excludeIDs []uint) ([]models.User, error)
	UpdateUser(user *models.User) error
	ReplaceSports(user *models.User, sports []models.Sport) error
	ReplaceGoals(user *models.User, goals []models.Goal) error
	DeleteUser(id uint) error
	SearchUsers(query string) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user with sports and goals resolved
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Sports").Preload("Goals").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *PostgresUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Sports").Preload("Goals").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID
func (r *PostgresUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Sports").Preload("Goals").Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetDiscoverableUsers retrieves all active, discoverable users excluding the
// given IDs, with sports and goals resolved for scoring
func (r *PostgresUserRepository) GetDiscoverableUsers(excludeIDs []uint) ([]models.User, error) {
	var users []models.User
	q := r.db.Preload("Sports").Preload("Goals").
		Where("is_active = ? AND is_discoverable = ?", true, true)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN (?)", excludeIDs)
	}
	if err := q.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser updates an existing user in PostgreSQL
func (r *PostgresUserRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// ReplaceSports replaces the user's whole sports set
func (r *PostgresUserRepository) ReplaceSports(user *models.User, sports []models.Sport) error {
	return r.db.Model(user).Association("Sports").Replace(sports)
}

// ReplaceGoals replaces the user's whole goals set
func (r *PostgresUserRepository) ReplaceGoals(user *models.User, goals []models.Goal) error {
	return r.db.Model(user).Association("Goals").Replace(goals)
}

// DeleteUser deletes a user by ID
func (r *PostgresUserRepository) DeleteUser(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}

// SearchUsers searches for users by name or email (case-insensitive)
func (r *PostgresUserRepository) SearchUsers(query string) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", "%"+query+"%", "%"+query+"%").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
