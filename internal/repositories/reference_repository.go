package repositories

import (
	"github.com/dots-fit/dots-backend/internal/models"
	"gorm.io/gorm"
)

// ReferenceRepository serves the sports and goals reference tables. They are
// written only by the seed process, so there are no mutation methods here.
type ReferenceRepository interface {
	ListSports() ([]models.Sport, error)
	ListGoals() ([]models.Goal, error)
	GetSportsByIDs(ids []uint) ([]models.Sport, error)
	GetGoalsByIDs(ids []uint) ([]models.Goal, error)
	GetSportByID(id uint) (*models.Sport, error)
}

// PostgresReferenceRepository implements ReferenceRepository for PostgreSQL
type PostgresReferenceRepository struct {
	db *gorm.DB
}

// NewPostgresReferenceRepository creates a new PostgresReferenceRepository
func NewPostgresReferenceRepository(db *gorm.DB) *PostgresReferenceRepository {
	return &PostgresReferenceRepository{db: db}
}

func (r *PostgresReferenceRepository) ListSports() ([]models.Sport, error) {
	var sports []models.Sport
	if err := r.db.Order("name").Find(&sports).Error; err != nil {
		return nil, err
	}
	return sports, nil
}

func (r *PostgresReferenceRepository) ListGoals() ([]models.Goal, error) {
	var goals []models.Goal
	if err := r.db.Order("name").Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *PostgresReferenceRepository) GetSportsByIDs(ids []uint) ([]models.Sport, error) {
	var sports []models.Sport
	if len(ids) == 0 {
		return sports, nil
	}
	if err := r.db.Where("id IN (?)", ids).Find(&sports).Error; err != nil {
		return nil, err
	}
	return sports, nil
}

func (r *PostgresReferenceRepository) GetGoalsByIDs(ids []uint) ([]models.Goal, error) {
	var goals []models.Goal
	if len(ids) == 0 {
		return goals, nil
	}
	if err := r.db.Where("id IN (?)", ids).Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *PostgresReferenceRepository) GetSportByID(id uint) (*models.Sport, error) {
	var sport models.Sport
	if err := r.db.First(&sport, id).Error; err != nil {
		return nil, err
	}
	return &sport, nil
}
