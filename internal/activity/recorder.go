// Package activity fans session activity out to the local audit log and the
// activity bus.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/Ashfaaq98/caseportal/internal/bus"
	"github.com/Ashfaaq98/caseportal/internal/logging"
	"github.com/Ashfaaq98/caseportal/internal/session"
	"github.com/sirupsen/logrus"
)

// publishTimeout bounds how long a bus publish may hold up the caller.
const publishTimeout = 2 * time.Second

// AuditLog is the part of the audit store the recorder writes to.
type AuditLog interface {
	LogSessionAction(ctx context.Context, caseNumber, sessionID, action, actor string, details map[string]interface{}) error
}

// Recorder implements session.Recorder. Either sink may be nil. Failures are
// logged and never reach the session.
type Recorder struct {
	audit  AuditLog
	bus    bus.Bus
	logger *logrus.Entry
}

var _ session.Recorder = (*Recorder)(nil)

// NewRecorder creates a recorder writing to audit and publishing to b.
func NewRecorder(audit AuditLog, b bus.Bus, logger *logrus.Entry) *Recorder {
	if logger == nil {
		logger = logging.Component(nil, "activity")
	}
	return &Recorder{audit: audit, bus: b, logger: logger}
}

// Record stores and publishes a.
func (r *Recorder) Record(ctx context.Context, a session.Activity) {
	now := time.Now()

	if r.audit != nil {
		err := r.audit.LogSessionAction(ctx, a.CaseNumber, a.SessionID, a.Action, a.Actor, a.Details)
		if err != nil {
			r.logger.WithError(err).WithField("action", a.Action).Warn("failed to write audit entry")
		}
	}

	if r.bus != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		err := r.bus.PublishActivity(pubCtx, bus.ActivityMessage{
			SessionID:  a.SessionID,
			CaseNumber: a.CaseNumber,
			Action:     a.Action,
			Actor:      a.Actor,
			Details:    stringify(a.Details),
			Timestamp:  now.Unix(),
		})
		if err != nil {
			r.logger.WithError(err).WithField("action", a.Action).Warn("failed to publish activity")
		}
	}
}

// stringify flattens details for the stream, which carries strings only.
func stringify(details map[string]interface{}) map[string]string {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]string, len(details))
	for k, v := range details {
		out[k] = fmt.Sprint(v)
	}
	return out
}
