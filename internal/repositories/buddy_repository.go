package repositories

import (
	"github.com/dots-fit/dots-backend/internal/models"
	"gorm.io/gorm"
)

// BuddyRepository defines the interface for buddy link data operations
type BuddyRepository interface {
	CreateBuddy(buddy *models.Buddy) error
	GetBuddyByID(id uint) (*models.Buddy, error)
	// FindBuddyBetween checks both orderings of the pair and returns
	// gorm.ErrRecordNotFound when no link exists in either direction.
	FindBuddyBetween(userA, userB uint) (*models.Buddy, error)
	ListBuddiesForUser(userID uint, status string) ([]models.Buddy, error)
	// GetBuddyUserIDs returns the ids of everyone linked with userID in
	// either direction, regardless of status.
	GetBuddyUserIDs(userID uint) ([]uint, error)
	UpdateBuddyStatus(id uint, status string) error
	DeleteBuddy(id uint) error
}

// PostgresBuddyRepository implements BuddyRepository for PostgreSQL
type PostgresBuddyRepository struct {
	db *gorm.DB
}

// NewPostgresBuddyRepository creates a new PostgresBuddyRepository
func NewPostgresBuddyRepository(db *gorm.DB) *PostgresBuddyRepository {
	return &PostgresBuddyRepository{db: db}
}

// CreateBuddy inserts a new buddy link
func (r *PostgresBuddyRepository) CreateBuddy(buddy *models.Buddy) error {
	return r.db.Create(buddy).Error
}

// GetBuddyByID retrieves a buddy link by ID
func (r *PostgresBuddyRepository) GetBuddyByID(id uint) (*models.Buddy, error) {
	var buddy models.Buddy
	if err := r.db.First(&buddy, id).Error; err != nil {
		return nil, err
	}
	return &buddy, nil
}

// FindBuddyBetween retrieves the link between two users, checking both orderings
func (r *PostgresBuddyRepository) FindBuddyBetween(userA, userB uint) (*models.Buddy, error) {
	var buddy models.Buddy
	err := r.db.Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)",
		userA, userB, userB, userA).First(&buddy).Error
	if err != nil {
		return nil, err
	}
	return &buddy, nil
}

// ListBuddiesForUser retrieves all links a user participates in, optionally
// filtered by status
func (r *PostgresBuddyRepository) ListBuddiesForUser(userID uint, status string) ([]models.Buddy, error) {
	var buddies []models.Buddy
	q := r.db.Where("user1_id = ? OR user2_id = ?", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&buddies).Error; err != nil {
		return nil, err
	}
	return buddies, nil
}

// GetBuddyUserIDs returns the counterpart user id of every link the user is
// in, unioning the two directional lookups
func (r *PostgresBuddyRepository) GetBuddyUserIDs(userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Buddy{}).Where("user1_id = ?", userID).Pluck("user2_id", &ids).Error; err != nil {
		return nil, err
	}
	var reverse []uint
	if err := r.db.Model(&models.Buddy{}).Where("user2_id = ?", userID).Pluck("user1_id", &reverse).Error; err != nil {
		return nil, err
	}
	return append(ids, reverse...), nil
}

// UpdateBuddyStatus updates the status of a buddy link
func (r *PostgresBuddyRepository) UpdateBuddyStatus(id uint, status string) error {
	return r.db.Model(&models.Buddy{}).Where("id = ?", id).Update("status", status).Error
}

// DeleteBuddy deletes a buddy link
func (r *PostgresBuddyRepository) DeleteBuddy(id uint) error {
	return r.db.Delete(&models.Buddy{}, id).Error
}
