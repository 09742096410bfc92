package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gmomorfaruk/community-guardian/internal/domain"
	apperrors "github.com/gmomorfaruk/community-guardian/internal/errors"
	"github.com/gmomorfaruk/community-guardian/internal/metrics"
)

// Service coordinates alert ingestion: validate the payload, persist it, and
// only then hand the canonical record to the broadcaster. Implements
// domain.AlertService.
type Service struct {
	alerts      domain.AlertRepository
	broadcaster domain.AlertBroadcaster
}

// NewService creates the ingestion service.
func NewService(alerts domain.AlertRepository, broadcaster domain.AlertBroadcaster) *Service {
	return &Service{
		alerts:      alerts,
		broadcaster: broadcaster,
	}
}

// ReceiveAlert validates and persists an incoming SOS payload, then pushes
// the stored alert to connected dashboards. The broadcast happens strictly
// after the insert commits, so any alert a dashboard sees live is already
// recoverable via ListAlerts. Broadcast delivery is best-effort: once the
// row is committed the submission succeeds regardless of fan-out outcome.
func (s *Service) ReceiveAlert(ctx context.Context, payload domain.SOSPayload) (*domain.Alert, error) {
	input, err := validatePayload(payload)
	if err != nil {
		return nil, err
	}

	alert, err := s.alerts.Insert(ctx, *input)
	if err != nil {
		metrics.AlertPersistFailures.Inc()
		return nil, err
	}

	metrics.AlertsIngested.Inc()
	slog.Info("SOS alert persisted",
		"alert_id", alert.ID,
		"alert_type", alert.AlertType,
		"submitter", alert.SubmitterName,
	)

	s.broadcaster.Broadcast(alert)

	return alert, nil
}

// ListAlerts returns all persisted alerts, newest first.
func (s *Service) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	return s.alerts.ListAll(ctx)
}

// validatePayload checks required fields and normalizes the client timestamp
// to UTC. Coordinates are stored as received; range checks are a documented
// extension point, not applied here.
func validatePayload(p domain.SOSPayload) (*domain.AlertInput, error) {
	if strings.TrimSpace(p.SubmitterName) == "" {
		return nil, apperrors.ValidationError("submitterName is required")
	}
	if strings.TrimSpace(p.AlertType) == "" {
		return nil, apperrors.ValidationError("alertType is required")
	}
	if p.Location == nil {
		return nil, apperrors.ValidationError("location is required")
	}
	if p.Location.Latitude == nil {
		return nil, apperrors.ValidationError("location.latitude is required").WithField("field", "location.latitude")
	}
	if p.Location.Longitude == nil {
		return nil, apperrors.ValidationError("location.longitude is required").WithField("field", "location.longitude")
	}
	if p.Location.Timestamp == nil {
		return nil, apperrors.ValidationError("location.timestamp is required").WithField("field", "location.timestamp")
	}
	if *p.Location.Timestamp <= 0 {
		return nil, apperrors.ValidationError("location.timestamp must be positive epoch milliseconds").
			WithField("timestamp", *p.Location.Timestamp)
	}

	return &domain.AlertInput{
		Timestamp:     time.UnixMilli(*p.Location.Timestamp).UTC(),
		Latitude:      *p.Location.Latitude,
		Longitude:     *p.Location.Longitude,
		SubmitterName: strings.TrimSpace(p.SubmitterName),
		AlertType:     p.AlertType,
	}, nil
}
