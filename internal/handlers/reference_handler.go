package handlers

import (
	"net/http"

	"github.com/dots-fit/dots-backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ReferenceHandler serves the sports and goals reference lists
type ReferenceHandler struct {
	referenceRepository repositories.ReferenceRepository
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(refRepo repositories.ReferenceRepository) *ReferenceHandler {
	return &ReferenceHandler{referenceRepository: refRepo}
}

// RegisterReferenceRoutes registers reference data routes
func (h *ReferenceHandler) RegisterReferenceRoutes(g *echo.Group) {
	g.GET("/sports", h.ListSports)
	g.GET("/goals", h.ListGoals)
}

// ListSports lists all available sports
func (h *ReferenceHandler) ListSports(c echo.Context) error {
	sports, err := h.referenceRepository.ListSports()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sports)
}

// ListGoals lists all available fitness goals
func (h *ReferenceHandler) ListGoals(c echo.Context) error {
	goals, err := h.referenceRepository.ListGoals()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, goals)
}
