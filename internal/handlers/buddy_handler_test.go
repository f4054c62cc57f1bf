package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dots-fit/dots-backend/internal/matching"
	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/dots-fit/dots-backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users map[uint]*models.User
}

func (s *stubUserRepo) CreateUser(user *models.User) error { return nil }

func (s *stubUserRepo) GetUserByID(id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) GetUserByEmail(email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) GetDiscoverableUsers(excludeIDs []uint) ([]models.User, error) {
	excluded := make(map[uint]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	out := []models.User{}
	for _, u := range s.users {
		if _, ok := excluded[u.ID]; !ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *stubUserRepo) UpdateUser(user *models.User) error { return nil }

func (s *stubUserRepo) ReplaceSports(user *models.User, sports []models.Sport) error { return nil }

func (s *stubUserRepo) ReplaceGoals(user *models.User, goals []models.Goal) error { return nil }

func (s *stubUserRepo) DeleteUser(id uint) error { return nil }

func (s *stubUserRepo) SearchUsers(query string) ([]models.User, error) { return nil, nil }

type stubBuddyRepo struct {
	buddies map[uint]*models.Buddy
	updated map[uint]string
	deleted []uint
	nextID  uint
}

func newStubBuddyRepo() *stubBuddyRepo {
	return &stubBuddyRepo{buddies: map[uint]*models.Buddy{}, updated: map[uint]string{}, nextID: 1}
}

func (s *stubBuddyRepo) CreateBuddy(buddy *models.Buddy) error {
	buddy.ID = s.nextID
	s.nextID++
	s.buddies[buddy.ID] = buddy
	return nil
}

func (s *stubBuddyRepo) GetBuddyByID(id uint) (*models.Buddy, error) {
	if b, ok := s.buddies[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBuddyRepo) FindBuddyBetween(userA, userB uint) (*models.Buddy, error) {
	for _, b := range s.buddies {
		if (b.User1ID == userA && b.User2ID == userB) || (b.User1ID == userB && b.User2ID == userA) {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBuddyRepo) ListBuddiesForUser(userID uint, status string) ([]models.Buddy, error) {
	out := []models.Buddy{}
	for _, b := range s.buddies {
		if b.User1ID != userID && b.User2ID != userID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (s *stubBuddyRepo) GetBuddyUserIDs(userID uint) ([]uint, error) {
	out := []uint{}
	for _, b := range s.buddies {
		switch userID {
		case b.User1ID:
			out = append(out, b.User2ID)
		case b.User2ID:
			out = append(out, b.User1ID)
		}
	}
	return out, nil
}

func (s *stubBuddyRepo) UpdateBuddyStatus(id uint, status string) error {
	s.updated[id] = status
	if b, ok := s.buddies[id]; ok {
		b.Status = status
	}
	return nil
}

func (s *stubBuddyRepo) DeleteBuddy(id uint) error {
	s.deleted = append(s.deleted, id)
	delete(s.buddies, id)
	return nil
}

type stubActivityCounter struct {
	counts map[uint]int64
}

func (s *stubActivityCounter) CountApprovedAttendances(userID uint) (int64, error) {
	return s.counts[userID], nil
}

func newTestContext(t *testing.T, method, target, body string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &models.JwtCustomClaims{UserID: userID})
	return c, rec
}

func profileUser(id uint, sportIDs []uint, location string, age int) *models.User {
	u := &models.User{ID: id, Name: "user", Location: location, Age: age, IsActive: true, IsDiscoverable: true}
	for _, sid := range sportIDs {
		u.Sports = append(u.Sports, models.Sport{ID: sid})
	}
	return u
}

func newBuddyHandler(users *stubUserRepo, buddies *stubBuddyRepo) *BuddyHandler {
	activity := &stubActivityCounter{counts: map[uint]int64{}}
	ranker := matching.NewRanker(users, buddies, activity)
	service := matching.NewService(users, buddies, activity)
	return NewBuddyHandler(buddies, users, ranker, service)
}

func TestGetSuggestedBuddiesRanksAndPaginates(t *testing.T) {
	users := &stubUserRepo{users: map[uint]*models.User{
		1: profileUser(1, []uint{1, 2}, "prague", 30),
		2: profileUser(2, []uint{1, 2}, "prague", 30),
		3: profileUser(3, []uint{1}, "prague", 33),
		4: profileUser(4, []uint{9}, "oslo", 60),
	}}
	h := newBuddyHandler(users, newStubBuddyRepo())

	c, rec := newTestContext(t, http.MethodGet, "/buddies/suggested?limit=2", "", 1)
	require.NoError(t, h.GetSuggestedBuddies(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var page []matching.Candidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 2)
	assert.Equal(t, uint(2), page[0].User.ID)
	assert.Equal(t, uint(3), page[1].User.ID)
	assert.GreaterOrEqual(t, page[0].Score, page[1].Score)
}

func TestGetSuggestedBuddiesExcludesLinkedUsers(t *testing.T) {
	users := &stubUserRepo{users: map[uint]*models.User{
		1: profileUser(1, []uint{1}, "prague", 30),
		2: profileUser(2, []uint{1}, "prague", 30),
		3: profileUser(3, []uint{1}, "prague", 30),
	}}
	buddies := newStubBuddyRepo()
	require.NoError(t, buddies.CreateBuddy(&models.Buddy{User1ID: 1, User2ID: 2, Status: models.BuddyStatusRejected}))
	h := newBuddyHandler(users, buddies)

	c, rec := newTestContext(t, http.MethodGet, "/buddies/suggested", "", 1)
	require.NoError(t, h.GetSuggestedBuddies(c))

	var page []matching.Candidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 1)
	assert.Equal(t, uint(3), page[0].User.ID)
}

func TestGetSuggestedBuddiesWidensThresholdOnShortPage(t *testing.T) {
	// candidate 2 scores 17.5: below the default threshold of 20, above the
	// widened threshold of 10
	users := &stubUserRepo{users: map[uint]*models.User{
		1: profileUser(1, []uint{1}, "prague", 20),
		2: profileUser(2, []uint{2}, "oslo", 50),
	}}
	h := newBuddyHandler(users, newStubBuddyRepo())

	c, rec := newTestContext(t, http.MethodGet, "/buddies/suggested", "", 1)
	require.NoError(t, h.GetSuggestedBuddies(c))

	var page []matching.Candidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 1)
	assert.Equal(t, uint(2), page[0].User.ID)

	// an explicit min_score above the widened threshold still filters
	c, rec = newTestContext(t, http.MethodGet, "/buddies/suggested?min_score=99", "", 1)
	require.NoError(t, h.GetSuggestedBuddies(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page, 1) // widened to 10, candidate at 17.5 passes
}

func TestCreateBuddyStatusMapping(t *testing.T) {
	users := &stubUserRepo{users: map[uint]*models.User{
		1: profileUser(1, []uint{1}, "prague", 30),
		2: profileUser(2, []uint{1}, "prague", 30),
	}}
	buddies := newStubBuddyRepo()
	h := newBuddyHandler(users, buddies)

	// self request
	c, _ := newTestContext(t, http.MethodPost, "/buddies", `{"user2_id":1}`, 1)
	err := h.CreateBuddy(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	// unknown target
	c, _ = newTestContext(t, http.MethodPost, "/buddies", `{"user2_id":99}`, 1)
	err = h.CreateBuddy(c)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)

	// success
	c, rec := newTestContext(t, http.MethodPost, "/buddies", `{"user2_id":2}`, 1)
	require.NoError(t, h.CreateBuddy(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Buddy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.BuddyStatusPending, created.Status)
	assert.Greater(t, created.CompatibilityScore, 0.0)

	// duplicate, reversed direction
	c, _ = newTestContext(t, http.MethodPost, "/buddies", `{"user2_id":1}`, 2)
	err = h.CreateBuddy(c)
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestUpdateBuddyStatusReceiverOnly(t *testing.T) {
	users := &stubUserRepo{users: map[uint]*models.User{
		1: profileUser(1, nil, "", 0),
		2: profileUser(2, nil, "", 0),
	}}
	buddies := newStubBuddyRepo()
	require.NoError(t, buddies.CreateBuddy(&models.Buddy{User1ID: 1, User2ID: 2, Status: models.BuddyStatusPending}))
	h := newBuddyHandler(users, buddies)

	// the requester cannot accept their own request
	c, _ := newTestContext(t, http.MethodPut, "/buddies/1/status", `{"status":"accepted"}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := h.UpdateBuddyStatus(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)

	// the receiver can
	c, rec := newTestContext(t, http.MethodPut, "/buddies/1/status", `{"status":"accepted"}`, 2)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateBuddyStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.BuddyStatusAccepted, buddies.updated[1])

	// only accepted/rejected are valid transitions
	c, _ = newTestContext(t, http.MethodPut, "/buddies/1/status", `{"status":"pending"}`, 2)
	c.SetParamNames("id")
	c.SetParamValues("1")
	assert.Error(t, h.UpdateBuddyStatus(c))
}

func TestDeleteBuddyEitherParticipant(t *testing.T) {
	users := &stubUserRepo{users: map[uint]*models.User{
		1: profileUser(1, nil, "", 0),
		2: profileUser(2, nil, "", 0),
	}}
	buddies := newStubBuddyRepo()
	require.NoError(t, buddies.CreateBuddy(&models.Buddy{User1ID: 1, User2ID: 2, Status: models.BuddyStatusAccepted}))
	h := newBuddyHandler(users, buddies)

	// a stranger cannot delete
	c, _ := newTestContext(t, http.MethodDelete, "/buddies/1", "", 9)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := h.DeleteBuddy(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)

	// the requester can
	c, rec := newTestContext(t, http.MethodDelete, "/buddies/1", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteBuddy(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uint{1}, buddies.deleted)
}

func TestListBuddiesFilterValidation(t *testing.T) {
	users := &stubUserRepo{users: map[uint]*models.User{1: profileUser(1, nil, "", 0)}}
	h := newBuddyHandler(users, newStubBuddyRepo())

	c, _ := newTestContext(t, http.MethodGet, "/buddies?status=bogus", "", 1)
	err := h.ListBuddies(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)

	c, rec := newTestContext(t, http.MethodGet, "/buddies?status=pending", "", 1)
	require.NoError(t, h.ListBuddies(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
