package matching

import (
	"errors"
	"log"

	"github.com/dots-fit/dots-backend/internal/models"
	"gorm.io/gorm"
)

// Caller-visible, non-retryable request errors
var (
	ErrSelfBuddy      = errors.New("cannot buddy with yourself")
	ErrDuplicateBuddy = errors.New("buddy link already exists between these users")
	ErrUserNotFound   = errors.New("user not found")
)

// DefaultScore is persisted when scoring collaborators fail during request
// creation; the insert must still succeed.
const DefaultScore = 50.0

// UserStore is the slice of the user repository the service needs
type UserStore interface {
	GetUserByID(id uint) (*models.User, error)
}

// Service creates buddy requests, computing the compatibility score at
// creation time
type Service struct {
	users    UserStore
	links    LinkStore
	activity ActivityCounter
}

// NewService creates a new Service
func NewService(users UserStore, links LinkStore, activity ActivityCounter) *Service {
	return &Service{users: users, links: links, activity: activity}
}

// CreateBuddyRequest creates a pending buddy link from requester to target.
// The duplicate check covers both orderings of the pair. It is a
// check-then-act sequence: two concurrent requests for the same pair can
// both pass it, which the backing store's pair index catches for the
// same-direction case.
func (s *Service) CreateBuddyRequest(requesterID, targetID uint) (*models.Buddy, error) {
	if requesterID == targetID {
		return nil, ErrSelfBuddy
	}

	target, err := s.users.GetUserByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.links.FindBuddyBetween(requesterID, targetID); err == nil {
		return nil, ErrDuplicateBuddy
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	buddy := &models.Buddy{
		User1ID:            requesterID,
		User2ID:            targetID,
		CompatibilityScore: s.scoreOrDefault(requesterID, target),
		Status:             models.BuddyStatusPending,
	}
	if err := s.links.CreateBuddy(buddy); err != nil {
		return nil, err
	}
	return buddy, nil
}

// scoreOrDefault computes the pair's compatibility score, substituting
// DefaultScore when the requester profile cannot be resolved. Activity
// lookups degrade inside the scorer and never force the default.
func (s *Service) scoreOrDefault(requesterID uint, target *models.User) float64 {
	requester, err := s.users.GetUserByID(requesterID)
	if err != nil {
		log.Printf("scoring fallback for buddy request %d->%d: %v", requesterID, target.ID, err)
		return DefaultScore
	}
	return Score(requester, target, s.lookup(requesterID), s.lookup(target.ID))
}

func (s *Service) lookup(userID uint) ActivityLevel {
	count, err := s.activity.CountApprovedAttendances(userID)
	if err != nil {
		return ActivityLevel{}
	}
	return ActivityLevel{Count: int(count), Known: true}
}
