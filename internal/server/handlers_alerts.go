package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gmomorfaruk/community-guardian/internal/domain"
	apperrors "github.com/gmomorfaruk/community-guardian/internal/errors"
)

func (s *Server) handleSubmitAlert(c echo.Context) error {
	var payload domain.SOSPayload
	if err := c.Bind(&payload); err != nil {
		return apperrors.ValidationError("request body must be valid JSON")
	}

	alert, err := s.app.ReceiveAlert(c.Request().Context(), payload)
	if err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			return apperrors.UnavailableError("failed to store alert", err)
		}
		return err
	}

	return c.JSON(http.StatusCreated, alert)
}

func (s *Server) handleListAlerts(c echo.Context) error {
	alerts, err := s.app.ListAlerts(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			return apperrors.UnavailableError("failed to load alerts", err)
		}
		return err
	}

	return c.JSON(http.StatusOK, alerts)
}
