package activity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Ashfaaq98/caseportal/internal/bus"
	"github.com/Ashfaaq98/caseportal/internal/session"
	"github.com/Ashfaaq98/caseportal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureBus struct {
	bus.NullBus
	mu   sync.Mutex
	msgs []bus.ActivityMessage
	err  error
}

func (b *captureBus) PublishActivity(ctx context.Context, msg bus.ActivityMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
	return b.err
}

type failingAudit struct{ calls int }

func (f *failingAudit) LogSessionAction(ctx context.Context, caseNumber, sessionID, action, actor string, details map[string]interface{}) error {
	f.calls++
	return errors.New("disk full")
}

func TestRecorderWritesAuditAndPublishes(t *testing.T) {
	st, err := store.NewStore(":memory:")
	require.NoError(t, err)
	defer st.Close()

	b := &captureBus{}
	r := NewRecorder(st, b, nil)

	r.Record(context.Background(), session.Activity{
		SessionID:  "sess-1",
		CaseNumber: "21456",
		Action:     session.ActionDashboardLoaded,
		Actor:      "client",
		Details:    map[string]interface{}{"documents": 4},
	})

	entries, err := st.GetAuditEntries(context.Background(), "21456", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, session.ActionDashboardLoaded, entries[0].Action)
	assert.Equal(t, "client", entries[0].Actor)

	require.Len(t, b.msgs, 1)
	assert.Equal(t, "sess-1", b.msgs[0].SessionID)
	assert.Equal(t, map[string]string{"documents": "4"}, b.msgs[0].Details)
	assert.NotZero(t, b.msgs[0].Timestamp)
}

func TestRecorderSwallowsSinkFailures(t *testing.T) {
	audit := &failingAudit{}
	b := &captureBus{err: errors.New("redis down")}
	r := NewRecorder(audit, b, nil)

	assert.NotPanics(t, func() {
		r.Record(context.Background(), session.Activity{CaseNumber: "21456", Action: session.ActionLogout})
	})
	assert.Equal(t, 1, audit.calls)
	assert.Len(t, b.msgs, 1)
	assert.Nil(t, b.msgs[0].Details)
}

func TestRecorderWithoutSinks(t *testing.T) {
	r := NewRecorder(nil, nil, nil)
	assert.NotPanics(t, func() {
		r.Record(context.Background(), session.Activity{Action: session.ActionLogout})
	})
}
