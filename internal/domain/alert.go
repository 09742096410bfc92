package domain

import (
	"context"
	"time"
)

// Alert is a single persisted SOS event. Once stored it is immutable; the ID
// is assigned by the database and is strictly increasing in insertion order.
type Alert struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	SubmitterName string    `json:"submitterName"`
	AlertType     string    `json:"alertType"`
}

// AlertInput is a validated, normalized candidate ready for insertion.
// Timestamp is already converted to UTC.
type AlertInput struct {
	Timestamp     time.Time
	Latitude      float64
	Longitude     float64
	SubmitterName string
	AlertType     string
}

// Location is the coordinate block of an SOS submission. Pointer fields
// distinguish "missing" from a legitimate zero value. Speed and accuracy are
// reported by mobile clients but not persisted.
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Speed     *float64 `json:"speed,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Timestamp *int64   `json:"timestamp"`
}

// SOSPayload is the raw submit-alert request body as sent by the mobile app.
// The timestamp inside Location is epoch milliseconds from the client.
type SOSPayload struct {
	SubmitterName string    `json:"submitterName"`
	Location      *Location `json:"location"`
	AlertType     string    `json:"alertType"`
}

// AlertRepository is the durable alert store. Insert assigns the ID and
// returns the canonical record; ListAll returns every alert, newest first.
type AlertRepository interface {
	Insert(ctx context.Context, input AlertInput) (*Alert, error)
	ListAll(ctx context.Context) ([]Alert, error)
}

// AlertBroadcaster pushes a persisted alert to all connected dashboards.
// Delivery is best-effort; implementations never report per-subscriber
// failures to the caller.
type AlertBroadcaster interface {
	Broadcast(alert *Alert)
}

// AlertService is the ingestion coordinator consumed by the HTTP layer.
type AlertService interface {
	ReceiveAlert(ctx context.Context, payload SOSPayload) (*Alert, error)
	ListAlerts(ctx context.Context) ([]Alert, error)
}
