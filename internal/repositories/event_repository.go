package repositories

import (
	"time"

	"github.com/dots-fit/dots-backend/internal/models"
	"gorm.io/gorm"
)

// EventFilter narrows the event listing
type EventFilter struct {
	SportID   uint
	Location  string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

// EventRepository defines the interface for event and RSVP data operations
type EventRepository interface {
	CreateEvent(event *models.Event) error
	GetEventByID(id uint) (*models.Event, error)
	ListEvents(filter EventFilter) ([]models.Event, error)
	UpdateEvent(event *models.Event) error
	CreateRSVP(eventID, userID uint) error
	DeleteRSVP(eventID, userID uint) error
	HasRSVP(eventID, userID uint) (bool, error)
	CountRSVPs(eventID uint) (int64, error)
	GetParticipantIDs(eventID uint) ([]uint, error)
	GetParticipants(eventID uint) ([]models.User, error)
	GetEventIDsForUser(userID uint) ([]uint, error)
	SetAttended(eventID, userID uint, attended bool) error
	// CountApprovedAttendances is the activity-level collaborator: the
	// number of events the user was marked as having attended.
	CountApprovedAttendances(userID uint) (int64, error)
}

// PostgresEventRepository implements EventRepository for PostgreSQL
type PostgresEventRepository struct {
	db *gorm.DB
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(db *gorm.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) CreateEvent(event *models.Event) error {
	return r.db.Create(event).Error
}

func (r *PostgresEventRepository) GetEventByID(id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.Preload("Sport").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *PostgresEventRepository) ListEvents(filter EventFilter) ([]models.Event, error) {
	var events []models.Event
	q := r.db.Preload("Sport").Where("is_cancelled = ?", false)
	if filter.SportID != 0 {
		q = q.Where("sport_id = ?", filter.SportID)
	}
	if filter.Location != "" {
		q = q.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.StartDate != nil {
		q = q.Where("start_time >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("start_time <= ?", *filter.EndDate)
	}
	if filter.Search != "" {
		q = q.Where("title ILIKE ? OR description ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if err := q.Order("start_time").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresEventRepository) UpdateEvent(event *models.Event) error {
	return r.db.Save(event).Error
}

func (r *PostgresEventRepository) CreateRSVP(eventID, userID uint) error {
	return r.db.Create(&models.EventRSVP{EventID: eventID, UserID: userID}).Error
}

func (r *PostgresEventRepository) DeleteRSVP(eventID, userID uint) error {
	return r.db.Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&models.EventRSVP{}).Error
}

func (r *PostgresEventRepository) HasRSVP(eventID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.EventRSVP{}).Where("event_id = ? AND user_id = ?", eventID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresEventRepository) CountRSVPs(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.EventRSVP{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (r *PostgresEventRepository) GetParticipantIDs(eventID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.EventRSVP{}).Where("event_id = ?", eventID).Pluck("user_id", &ids).Error
	return ids, err
}

func (r *PostgresEventRepository) GetParticipants(eventID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("id IN (?)",
		r.db.Model(&models.EventRSVP{}).Select("user_id").Where("event_id = ?", eventID),
	).Find(&users).Error
	return users, err
}

// GetEventIDsForUser returns the events the user has RSVP'd to
func (r *PostgresEventRepository) GetEventIDsForUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.EventRSVP{}).Where("user_id = ?", userID).Pluck("event_id", &ids).Error
	return ids, err
}

func (r *PostgresEventRepository) SetAttended(eventID, userID uint, attended bool) error {
	res := r.db.Model(&models.EventRSVP{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Update("attended", attended)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresEventRepository) CountApprovedAttendances(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.EventRSVP{}).Where("user_id = ? AND attended = ?", userID, true).Count(&count).Error
	return count, err
}
