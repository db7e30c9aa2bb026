package bus

import (
	"context"

	"github.com/Ashfaaq98/caseportal/internal/logging"
	"github.com/sirupsen/logrus"
)

// NullBus is a no-op implementation of the bus interface for when Redis is disabled
type NullBus struct {
	logger *logrus.Entry
}

// NewNullBus creates a new null bus instance
func NewNullBus(logger *logrus.Entry) *NullBus {
	if logger == nil {
		logger = logging.Component(nil, "bus")
	}
	return &NullBus{logger: logger}
}

// Close is a no-op for null bus
func (nb *NullBus) Close() error {
	return nil
}

// PublishActivity logs the message but doesn't actually publish it
func (nb *NullBus) PublishActivity(ctx context.Context, msg ActivityMessage) error {
	nb.logger.WithFields(logrus.Fields{
		"action":      msg.Action,
		"case_number": msg.CaseNumber,
	}).Debug("would publish activity (Redis disabled)")
	return nil
}

// RecentActivity always returns nothing for null bus
func (nb *NullBus) RecentActivity(ctx context.Context, count int64) ([]ActivityMessage, error) {
	return nil, nil
}

// GetStats returns empty stats for null bus
func (nb *NullBus) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"type":   "null",
		"status": "disabled",
	}, nil
}

// HealthCheck always returns nil for null bus
func (nb *NullBus) HealthCheck(ctx context.Context) error {
	return nil
}
