package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dots-fit/dots-backend/internal/matching"
	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/dots-fit/dots-backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Suggestion paging defaults; the widened threshold is used when a page
// would come up short at the requested min_score.
const (
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 50
	defaultMinScore        = 20.0
	widenedMinScore        = 10.0
)

// BuddyHandler handles HTTP requests related to buddy links
type BuddyHandler struct {
	buddyRepository repositories.BuddyRepository
	userRepository  repositories.UserRepository
	ranker          *matching.Ranker
	service         *matching.Service
}

// NewBuddyHandler creates a new BuddyHandler
func NewBuddyHandler(
	buddyRepo repositories.BuddyRepository,
	userRepo repositories.UserRepository,
	ranker *matching.Ranker,
	service *matching.Service,
) *BuddyHandler {
	return &BuddyHandler{
		buddyRepository: buddyRepo,
		userRepository:  userRepo,
		ranker:          ranker,
		service:         service,
	}
}

// RegisterBuddyRoutes registers buddy-related routes
func (h *BuddyHandler) RegisterBuddyRoutes(g *echo.Group) {
	g.GET("/buddies/suggested", h.GetSuggestedBuddies)
	g.POST("/buddies", h.CreateBuddy)
	g.GET("/buddies", h.ListBuddies)
	g.PUT("/buddies/:id/status", h.UpdateBuddyStatus)
	g.DELETE("/buddies/:id", h.DeleteBuddy)
}

// GetSuggestedBuddies returns ranked buddy suggestions for the current user
// with pagination. When the requested page would come up short at the given
// min_score, the ranking is re-filtered at a widened threshold.
func (h *BuddyHandler) GetSuggestedBuddies(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > maxSuggestionLimit {
		limit = defaultSuggestionLimit
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}
	minScore := defaultMinScore
	if raw := c.QueryParam("min_score"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 100 {
			minScore = v
		}
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	ranked, err := h.ranker.Suggest(c.Request().Context(), user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	candidates := matching.FilterByMinScore(ranked, minScore)
	// Widening retry: the full ranking is already in hand, so re-filter at
	// the lower threshold rather than re-ranking
	if len(candidates) < offset+limit {
		candidates = matching.FilterByMinScore(ranked, widenedMinScore)
	}

	return c.JSON(http.StatusOK, matching.Page(candidates, offset, limit))
}

// CreateBuddy handles sending a buddy request
func (h *BuddyHandler) CreateBuddy(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateBuddyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	buddy, err := h.service.CreateBuddyRequest(userID, req.User2ID)
	if err != nil {
		switch {
		case errors.Is(err, matching.ErrSelfBuddy):
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot buddy with yourself")
		case errors.Is(err, matching.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		case errors.Is(err, matching.ErrDuplicateBuddy):
			return echo.NewHTTPError(http.StatusConflict, "Buddy link already exists between these users")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, buddy)
}

// ListBuddies retrieves all buddy links for the current user, optionally
// filtered by status, with both user profiles resolved
func (h *BuddyHandler) ListBuddies(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	status := c.QueryParam("status")
	switch status {
	case "", models.BuddyStatusPending, models.BuddyStatusAccepted, models.BuddyStatusRejected:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status filter")
	}

	buddies, err := h.buddyRepository.ListBuddiesForUser(userID, status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result := make([]models.BuddyDetail, 0, len(buddies))
	for _, buddy := range buddies {
		detail := models.BuddyDetail{Buddy: buddy}
		if u1, err := h.userRepository.GetUserByID(buddy.User1ID); err == nil {
			detail.User1 = u1.Compact()
		}
		if u2, err := h.userRepository.GetUserByID(buddy.User2ID); err == nil {
			detail.User2 = u2.Compact()
		}
		result = append(result, detail)
	}

	return c.JSON(http.StatusOK, result)
}

// UpdateBuddyStatus accepts or rejects a buddy request; only the receiver
// may do this
func (h *BuddyHandler) UpdateBuddyStatus(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	buddyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid buddy ID")
	}

	var req models.UpdateBuddyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	buddy, err := h.buddyRepository.GetBuddyByID(uint(buddyID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Buddy link not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if buddy.User2ID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the receiver can update buddy status")
	}

	if err := h.buddyRepository.UpdateBuddyStatus(buddy.ID, req.Status); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	buddy.Status = req.Status
	return c.JSON(http.StatusOK, buddy)
}

// DeleteBuddy removes a buddy link; either participant may do this at any time
func (h *BuddyHandler) DeleteBuddy(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	buddyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid buddy ID")
	}

	buddy, err := h.buddyRepository.GetBuddyByID(uint(buddyID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Buddy link not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if buddy.User1ID != userID && buddy.User2ID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to delete this buddy link")
	}

	if err := h.buddyRepository.DeleteBuddy(buddy.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
