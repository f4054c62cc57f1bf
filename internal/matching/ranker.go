package matching

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/dots-fit/dots-backend/internal/models"
)

// ProfileStore is the slice of the user repository the ranker needs
type ProfileStore interface {
	GetDiscoverableUsers(excludeIDs []uint) ([]models.User, error)
}

// LinkStore is the slice of the buddy repository the matching package needs
type LinkStore interface {
	FindBuddyBetween(userA, userB uint) (*models.Buddy, error)
	GetBuddyUserIDs(userID uint) ([]uint, error)
	CreateBuddy(buddy *models.Buddy) error
}

// ActivityCounter resolves a user's approved event attendance count. A
// failing counter is expected and handled: the activity factor falls back to
// its neutral default.
type ActivityCounter interface {
	CountApprovedAttendances(userID uint) (int64, error)
}

// Candidate is one ranked buddy suggestion
type Candidate struct {
	User  models.User `json:"user"`
	Score float64     `json:"score"`
}

// Ranker produces ranked, filtered buddy suggestions for a user
type Ranker struct {
	users    ProfileStore
	links    LinkStore
	activity ActivityCounter
}

// NewRanker creates a new Ranker
func NewRanker(users ProfileStore, links LinkStore, activity ActivityCounter) *Ranker {
	return &Ranker{users: users, links: links, activity: activity}
}

// maxConcurrentLookups bounds the parallel activity-count lookups issued per
// ranking pass. Candidates are independent, so full parallelism is safe.
const maxConcurrentLookups = 8

// Suggest returns every eligible candidate for the user, scored and sorted
// descending by score. No minimum-score threshold is applied here; filtering
// and pagination belong to the caller. The sort is stable over the candidate
// enumeration order, so repeated calls over the same pool return the same
// sequence.
func (r *Ranker) Suggest(ctx context.Context, user *models.User) ([]Candidate, error) {
	buddyIDs, err := r.links.GetBuddyUserIDs(user.ID)
	if err != nil {
		return nil, err
	}
	exclude := append([]uint{user.ID}, buddyIDs...)

	candidates, err := r.users.GetDiscoverableUsers(exclude)
	if err != nil {
		return nil, err
	}

	userAct := r.lookupActivity(ctx, user.ID)

	ranked := make([]Candidate, len(candidates))
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentLookups)
	for i := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			cand := candidates[i]
			ranked[i] = Candidate{
				User:  cand,
				Score: Score(user, &cand, userAct, r.lookupActivity(ctx, cand.ID)),
			}
		}(i)
	}
	wg.Wait()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// lookupActivity resolves one activity level, honoring context cancellation
// and degrading to unknown on any failure
func (r *Ranker) lookupActivity(ctx context.Context, userID uint) ActivityLevel {
	if ctx.Err() != nil {
		return ActivityLevel{}
	}
	count, err := r.activity.CountApprovedAttendances(userID)
	if err != nil {
		log.Printf("activity count lookup failed for user %d: %v", userID, err)
		return ActivityLevel{}
	}
	return ActivityLevel{Count: int(count), Known: true}
}

// FilterByMinScore returns the candidates scoring at or above min. It is a
// caller-side post-filter, not part of ranking.
func FilterByMinScore(candidates []Candidate, min float64) []Candidate {
	filtered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= min {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Page applies offset/limit over an already-sorted candidate list
func Page(candidates []Candidate, offset, limit int) []Candidate {
	if offset >= len(candidates) {
		return []Candidate{}
	}
	end := offset + limit
	if end > len(candidates) {
		end = len(candidates)
	}
	return candidates[offset:end]
}
