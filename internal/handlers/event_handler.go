package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/dots-fit/dots-backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// EventHandler handles HTTP requests related to events and RSVPs
type EventHandler struct {
	eventRepository     repositories.EventRepository
	userRepository      repositories.UserRepository
	referenceRepository repositories.ReferenceRepository
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	refRepo repositories.ReferenceRepository,
) *EventHandler {
	return &EventHandler{
		eventRepository:     eventRepo,
		userRepository:      userRepo,
		referenceRepository: refRepo,
	}
}

// RegisterEventRoutes registers event-related routes
func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.POST("/events", h.CreateEvent)
	g.GET("/events", h.ListEvents)
	g.GET("/events/:id", h.GetEvent)
	g.PUT("/events/:id", h.UpdateEvent)
	g.POST("/events/:id/rsvp", h.RSVP)
	g.DELETE("/events/:id/rsvp", h.CancelRSVP)
	g.PUT("/events/:id/attendance", h.MarkAttendance)
}

// CreateEvent creates an event hosted by the current user. The host is
// RSVP'd automatically.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.referenceRepository.GetSportByID(req.SportID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown sport")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return echo.NewHTTPError(http.StatusBadRequest, "End time must be after start time")
	}

	event := models.Event{
		Title:           req.Title,
		Description:     req.Description,
		SportID:         req.SportID,
		HostID:          userID,
		Location:        req.Location,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		MaxParticipants: req.MaxParticipants,
	}

	if err := h.eventRepository.CreateEvent(&event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.eventRepository.CreateRSVP(event.ID, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	created, err := h.eventRepository.GetEventByID(event.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, models.EventResponse{Event: *created, ParticipantCount: 1})
}

// ListEvents retrieves upcoming events matching the optional filters
func (h *EventHandler) ListEvents(c echo.Context) error {
	if _, err := getUserIDFromContext(c); err != nil {
		return err
	}

	filter := repositories.EventFilter{
		Location: c.QueryParam("location"),
		Search:   c.QueryParam("search"),
	}
	if raw := c.QueryParam("sport_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid sport_id")
		}
		filter.SportID = uint(id)
	}
	if raw := c.QueryParam("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid start_date, expected RFC3339")
		}
		filter.StartDate = &t
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid end_date, expected RFC3339")
		}
		filter.EndDate = &t
	}

	events, err := h.eventRepository.ListEvents(filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	result := make([]models.EventResponse, 0, len(events))
	for _, event := range events {
		count, err := h.eventRepository.CountRSVPs(event.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		result = append(result, models.EventResponse{Event: event, ParticipantCount: count})
	}

	return c.JSON(http.StatusOK, result)
}

// GetEvent retrieves a single event with its host and participants
func (h *EventHandler) GetEvent(c echo.Context) error {
	if _, err := getUserIDFromContext(c); err != nil {
		return err
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event ID")
	}

	event, err := h.eventRepository.GetEventByID(uint(eventID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	participants, err := h.eventRepository.GetParticipants(event.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	detail := models.EventDetail{
		Event:            *event,
		ParticipantCount: int64(len(participants)),
		Participants:     make([]models.UserCompact, 0, len(participants)),
	}
	if host, err := h.userRepository.GetUserByID(event.HostID); err == nil {
		detail.Host = host.Compact()
	}
	for i := range participants {
		detail.Participants = append(detail.Participants, participants[i].Compact())
	}

	return c.JSON(http.StatusOK, detail)
}

// UpdateEvent updates an event; only the host may do this
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event ID")
	}

	event, err := h.eventRepository.GetEventByID(uint(eventID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if event.HostID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the host can update this event")
	}

	var req models.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != "" {
		event.Location = req.Location
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = req.EndTime
	}
	if req.MaxParticipants != nil {
		event.MaxParticipants = *req.MaxParticipants
	}
	if req.IsCancelled != nil {
		event.IsCancelled = *req.IsCancelled
	}

	if event.EndTime != nil && !event.EndTime.After(event.StartTime) {
		return echo.NewHTTPError(http.StatusBadRequest, "End time must be after start time")
	}

	if err := h.eventRepository.UpdateEvent(event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, event)
}

// RSVP registers the current user for an event
func (h *EventHandler) RSVP(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event ID")
	}

	event, err := h.eventRepository.GetEventByID(uint(eventID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if event.IsCancelled {
		return echo.NewHTTPError(http.StatusBadRequest, "Event is cancelled")
	}

	exists, err := h.eventRepository.HasRSVP(event.ID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if exists {
		return echo.NewHTTPError(http.StatusConflict, "Already registered for this event")
	}

	if event.MaxParticipants > 0 {
		count, err := h.eventRepository.CountRSVPs(event.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if count >= int64(event.MaxParticipants) {
			return echo.NewHTTPError(http.StatusConflict, "Event is full")
		}
	}

	if err := h.eventRepository.CreateRSVP(event.ID, userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "RSVP created"})
}

// CancelRSVP removes the current user's RSVP; the host cannot leave their
// own event
func (h *EventHandler) CancelRSVP(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event ID")
	}

	event, err := h.eventRepository.GetEventByID(uint(eventID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if event.HostID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Host cannot leave their own event")
	}

	if err := h.eventRepository.DeleteRSVP(event.ID, userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "No RSVP for this event")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// MarkAttendance lets the host mark whether a participant actually showed
// up. Attended counts feed buddy suggestions.
func (h *EventHandler) MarkAttendance(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event ID")
	}

	event, err := h.eventRepository.GetEventByID(uint(eventID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if event.HostID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the host can mark attendance")
	}

	var req models.MarkAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.eventRepository.SetAttended(event.ID, req.UserID, req.Attended); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User has no RSVP for this event")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Attendance updated"})
}
