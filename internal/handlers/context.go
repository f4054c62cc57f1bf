package handlers

import (
	"net/http"

	"github.com/dots-fit/dots-backend/internal/models"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext extracts the authenticated user's id from the JWT
// claims placed in context by the auth middleware
func getUserIDFromContext(c echo.Context) (uint, error) {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims.UserID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return claims.UserID, nil
}
