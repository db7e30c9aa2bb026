package bus

import (
	"context"

	"github.com/Ashfaaq98/caseportal/internal/logging"
	"github.com/sirupsen/logrus"
)

// ActivityStream is the Redis stream session activity is published to.
const ActivityStream = "portal.activity"

// ActivityMessage is one session action as published on the bus.
type ActivityMessage struct {
	ID         string            `json:"id,omitempty"`
	SessionID  string            `json:"session_id"`
	CaseNumber string            `json:"case_number"`
	Action     string            `json:"action"`
	Actor      string            `json:"actor"`
	Details    map[string]string `json:"details,omitempty"`
	Timestamp  int64             `json:"timestamp"`
}

// Bus defines the interface for activity bus implementations
type Bus interface {
	// PublishActivity appends a message to the activity stream
	PublishActivity(ctx context.Context, msg ActivityMessage) error

	// RecentActivity returns up to count messages, newest first. A count
	// of zero or less returns everything retained
	RecentActivity(ctx context.Context, count int64) ([]ActivityMessage, error)

	// GetStats returns basic statistics about the bus
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// HealthCheck performs a health check on the bus connection
	HealthCheck(ctx context.Context) error

	// Close closes the bus connection
	Close() error
}

// NewBus creates a new bus instance based on the Redis URL.
// If redisURL is empty or Redis is unreachable, returns a NullBus.
func NewBus(redisURL string, logger *logrus.Logger) Bus {
	entry := logging.Component(logger, "bus")

	if redisURL == "" {
		return NewNullBus(entry)
	}

	redisBus, err := NewRedisBus(redisURL, entry)
	if err == nil {
		return redisBus
	}

	entry.WithError(err).Warn("Redis unavailable, activity will not be published")
	return NewNullBus(entry)
}
