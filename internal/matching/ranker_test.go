package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProfileStore struct {
	users       []models.User
	err         error
	lastExclude []uint
}

func (f *fakeProfileStore) GetDiscoverableUsers(excludeIDs []uint) ([]models.User, error) {
	f.lastExclude = excludeIDs
	if f.err != nil {
		return nil, f.err
	}
	excluded := make(map[uint]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	out := []models.User{}
	for _, u := range f.users {
		if _, ok := excluded[u.ID]; !ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeLinkStore struct {
	buddyIDs []uint
	links    []models.Buddy
	created  []*models.Buddy
	idsErr   error
	findErr  error
	saveErr  error
}

func (f *fakeLinkStore) GetBuddyUserIDs(userID uint) ([]uint, error) {
	return f.buddyIDs, f.idsErr
}

func (f *fakeLinkStore) FindBuddyBetween(userA, userB uint) (*models.Buddy, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for i := range f.links {
		l := f.links[i]
		if (l.User1ID == userA && l.User2ID == userB) || (l.User1ID == userB && l.User2ID == userA) {
			return &l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLinkStore) CreateBuddy(buddy *models.Buddy) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	buddy.ID = uint(len(f.created) + 1)
	f.created = append(f.created, buddy)
	return nil
}

type fakeActivityCounter struct {
	counts map[uint]int64
	err    error
}

func (f *fakeActivityCounter) CountApprovedAttendances(userID uint) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[userID], nil
}

func discoverable(id uint, sports []uint, location string, age int) models.User {
	u := models.User{ID: id, Location: location, Age: age}
	for _, sid := range sports {
		u.Sports = append(u.Sports, models.Sport{ID: sid})
	}
	return u
}

func TestSuggestExcludesSelfAndBuddies(t *testing.T) {
	me := discoverable(1, []uint{1}, "prague", 30)
	store := &fakeProfileStore{users: []models.User{
		me,
		discoverable(2, []uint{1}, "prague", 30),
		discoverable(3, []uint{1}, "prague", 30),
		discoverable(4, []uint{1}, "prague", 30),
	}}
	links := &fakeLinkStore{buddyIDs: []uint{3}}
	ranker := NewRanker(store, links, &fakeActivityCounter{})

	ranked, err := ranker.Suggest(context.Background(), &me)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint{1, 3}, store.lastExclude)
	ids := []uint{}
	for _, c := range ranked {
		ids = append(ids, c.User.ID)
	}
	assert.ElementsMatch(t, []uint{2, 4}, ids)
}

func TestSuggestOrdersByScoreDescending(t *testing.T) {
	me := discoverable(1, []uint{1, 2}, "prague", 30)
	store := &fakeProfileStore{users: []models.User{
		discoverable(2, []uint{5}, "oslo", 60),       // weak match
		discoverable(3, []uint{1, 2}, "prague", 30),  // strong match
		discoverable(4, []uint{1}, "prague 7", 33),   // medium match
	}}
	ranker := NewRanker(store, &fakeLinkStore{}, &fakeActivityCounter{counts: map[uint]int64{}})

	ranked, err := ranker.Suggest(context.Background(), &me)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, uint(3), ranked[0].User.ID)
	assert.Equal(t, uint(4), ranked[1].User.ID)
	assert.Equal(t, uint(2), ranked[2].User.ID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestSuggestIsDeterministic(t *testing.T) {
	me := discoverable(1, []uint{1}, "prague", 30)
	store := &fakeProfileStore{users: []models.User{
		discoverable(2, []uint{1}, "prague", 30),
		discoverable(3, []uint{1}, "prague", 30),
		discoverable(4, []uint{2}, "oslo", 50),
	}}
	ranker := NewRanker(store, &fakeLinkStore{}, &fakeActivityCounter{})

	first, err := ranker.Suggest(context.Background(), &me)
	require.NoError(t, err)
	second, err := ranker.Suggest(context.Background(), &me)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSuggestDegradesOnActivityFailure(t *testing.T) {
	me := discoverable(1, []uint{1}, "", 0)
	store := &fakeProfileStore{users: []models.User{discoverable(2, []uint{1}, "", 0)}}
	ranker := NewRanker(store, &fakeLinkStore{}, &fakeActivityCounter{err: errors.New("db down")})

	ranked, err := ranker.Suggest(context.Background(), &me)
	require.NoError(t, err)
	require.Len(t, ranked, 1)

	// sports jaccard 1.0 + neutral goals + missing location + unknown activity
	assert.Equal(t, 57.5, ranked[0].Score)
}

func TestSuggestPropagatesStoreErrors(t *testing.T) {
	me := discoverable(1, nil, "", 0)

	_, err := NewRanker(&fakeProfileStore{err: errors.New("boom")}, &fakeLinkStore{}, &fakeActivityCounter{}).
		Suggest(context.Background(), &me)
	assert.Error(t, err)

	_, err = NewRanker(&fakeProfileStore{}, &fakeLinkStore{idsErr: errors.New("boom")}, &fakeActivityCounter{}).
		Suggest(context.Background(), &me)
	assert.Error(t, err)
}

func TestFilterByMinScore(t *testing.T) {
	candidates := []Candidate{
		{User: models.User{ID: 1}, Score: 80},
		{User: models.User{ID: 2}, Score: 20},
		{User: models.User{ID: 3}, Score: 19.99},
	}

	filtered := FilterByMinScore(candidates, 20)
	require.Len(t, filtered, 2)
	assert.Equal(t, uint(1), filtered[0].User.ID)
	assert.Equal(t, uint(2), filtered[1].User.ID)
}

func TestPage(t *testing.T) {
	candidates := []Candidate{
		{Score: 90}, {Score: 80}, {Score: 70}, {Score: 60}, {Score: 50},
	}

	assert.Len(t, Page(candidates, 0, 2), 2)
	assert.Equal(t, 70.0, Page(candidates, 2, 2)[0].Score)
	assert.Len(t, Page(candidates, 4, 10), 1)
	assert.Empty(t, Page(candidates, 5, 10))
	assert.Empty(t, Page(nil, 0, 10))
}

// Paging a filtered list never reorders it: page N+1 starts where page N
// ended.
func TestPagePrefixConsistency(t *testing.T) {
	candidates := []Candidate{
		{Score: 90}, {Score: 80}, {Score: 70}, {Score: 60},
	}

	first := Page(candidates, 0, 2)
	second := Page(candidates, 2, 2)
	joined := append(append([]Candidate{}, first...), second...)
	assert.Equal(t, candidates, joined)
}
