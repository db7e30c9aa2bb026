// Package session holds the authenticated case for the lifetime of a
// portal session. A Controller is either logged out or logged in with
// exactly one case; there are no other states.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Ashfaaq98/caseportal/internal/casedata"
	"github.com/Ashfaaq98/caseportal/internal/logging"
	"github.com/Ashfaaq98/caseportal/internal/portalapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DemoCaseNumber is used when the API omits the case number from a login
// response. It is a demo artifact and can be disabled via Options.
const DemoCaseNumber = "21456"

var (
	ErrAlreadyLoggedIn    = errors.New("already logged in")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrLoginInProgress    = errors.New("login already in progress")
	ErrLoadInProgress     = errors.New("dashboard load already in progress")
	ErrSessionEnded       = errors.New("session ended before the request completed")
	ErrEmptyPatch         = errors.New("status update contains no changes")
	ErrMissingCaseNumber  = errors.New("login response did not include a case number")
	ErrMissingCredentials = errors.New("case number and access code are required")
)

// Recorded activity actions.
const (
	ActionLoginSucceeded     = "login_succeeded"
	ActionLoginFailed        = "login_failed"
	ActionLogout             = "logout"
	ActionDashboardLoaded    = "dashboard_loaded"
	ActionDashboardFailed    = "dashboard_failed"
	ActionStatusUpdated      = "status_updated"
	ActionStatusUpdateFailed = "status_update_failed"
)

// State is the controller's login state.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// API is the subset of the case API the controller drives.
type API interface {
	Authenticate(ctx context.Context, caseNumber, accessCode string) (*portalapi.AuthResult, error)
	GetCase(ctx context.Context, caseNumber string) (*casedata.Case, error)
	FetchTimeline(ctx context.Context, caseNumber string) ([]casedata.TimelineEvent, error)
	FetchDocuments(ctx context.Context, caseNumber string) ([]casedata.Document, error)
	UpdateStatus(ctx context.Context, caseNumber string, patch casedata.StatusPatch) (*casedata.Case, error)
}

// Activity is one recorded session action.
type Activity struct {
	SessionID  string
	CaseNumber string
	Action     string
	Actor      string
	Details    map[string]interface{}
}

// Recorder receives session activity. Implementations must not block for
// long and handle their own failures.
type Recorder interface {
	Record(ctx context.Context, a Activity)
}

// Options configures a Controller.
type Options struct {
	// DefaultCaseNumber replaces a case number missing from the login
	// response. Empty makes such a response a login failure.
	DefaultCaseNumber string
	// Actor labels recorded activity ("client", "cli").
	Actor    string
	Recorder Recorder
	Logger   *logrus.Entry
}

// Snapshot is everything the dashboard shows for one load.
type Snapshot struct {
	Case      casedata.Case
	Timeline  []casedata.TimelineEvent
	Documents []casedata.Document
	LoadedAt  time.Time
}

// Controller is the session state machine.
type Controller struct {
	api  API
	opts Options
	log  *logrus.Entry

	mu         sync.Mutex
	state      State
	current    *casedata.Case
	id         string
	generation uint64
	loggingIn  bool
	loading    bool

	// sessionCtx is cancelled on logout to abort in-flight requests.
	sessionCtx    context.Context
	cancelSession context.CancelFunc
}

// NewController returns a controller in the LoggedOut state.
func NewController(api API, opts Options) *Controller {
	if opts.Actor == "" {
		opts.Actor = "client"
	}
	log := opts.Logger
	if log == nil {
		log = logging.Component(nil, "session")
	}
	return &Controller{api: api, opts: opts, log: log, state: LoggedOut}
}

// State returns the current login state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ID returns the current session id, or "" when logged out.
func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Case returns a copy of the held case.
func (c *Controller) Case() (casedata.Case, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return casedata.Case{}, false
	}
	return *c.current, true
}

// Login authenticates and, on success, moves to LoggedIn. On failure the
// controller stays LoggedOut and the error is returned for display.
func (c *Controller) Login(ctx context.Context, caseNumber, accessCode string) error {
	caseNumber = strings.TrimSpace(caseNumber)
	if caseNumber == "" || strings.TrimSpace(accessCode) == "" {
		return ErrMissingCredentials
	}

	c.mu.Lock()
	switch {
	case c.state == LoggedIn:
		c.mu.Unlock()
		return ErrAlreadyLoggedIn
	case c.loggingIn:
		c.mu.Unlock()
		return ErrLoginInProgress
	}
	c.loggingIn = true
	c.mu.Unlock()

	res, err := c.api.Authenticate(ctx, caseNumber, accessCode)

	c.mu.Lock()
	c.loggingIn = false
	if err == nil && res.Case.CaseNumber == "" {
		if c.opts.DefaultCaseNumber == "" {
			err = &portalapi.AuthenticationError{Message: portalapi.DefaultAuthMessage, Err: ErrMissingCaseNumber}
		} else {
			c.log.WithField("fallback", c.opts.DefaultCaseNumber).Warn("login response missing case number, using fallback")
			res.Case.CaseNumber = c.opts.DefaultCaseNumber
		}
	}
	if err != nil {
		c.mu.Unlock()
		c.record(ctx, Activity{
			CaseNumber: caseNumber,
			Action:     ActionLoginFailed,
			Details: map[string]interface{}{
				"error":  portalapi.UserMessage(err),
				"status": portalapi.StatusCode(err),
			},
		})
		return err
	}

	held := res.Case
	c.current = &held
	c.state = LoggedIn
	c.id = uuid.NewString()
	c.generation++
	c.sessionCtx, c.cancelSession = context.WithCancel(context.Background())
	sessionID := c.id
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"case_number": held.CaseNumber, "session_id": sessionID}).Info("logged in")
	c.record(ctx, Activity{SessionID: sessionID, CaseNumber: held.CaseNumber, Action: ActionLoginSucceeded})
	return nil
}

// Logout discards the held case and returns to LoggedOut. In-flight loads
// are cancelled and their results dropped.
func (c *Controller) Logout() error {
	c.mu.Lock()
	if c.state != LoggedIn {
		c.mu.Unlock()
		return ErrNotLoggedIn
	}
	caseNumber := c.current.CaseNumber
	sessionID := c.id
	c.cancelSession()
	c.state = LoggedOut
	c.current = nil
	c.id = ""
	c.generation++
	c.sessionCtx, c.cancelSession = nil, nil
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"case_number": caseNumber, "session_id": sessionID}).Info("logged out")
	c.record(context.Background(), Activity{SessionID: sessionID, CaseNumber: caseNumber, Action: ActionLogout})
	return nil
}

// LoadDashboard refreshes the held case and fetches the timeline and
// documents concurrently. All three must succeed; the first failure cancels
// the others and is returned. Nothing partial is ever returned.
func (c *Controller) LoadDashboard(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if c.state != LoggedIn {
		c.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	if c.loading {
		c.mu.Unlock()
		return nil, ErrLoadInProgress
	}
	c.loading = true
	gen := c.generation
	held := *c.current
	sessionID := c.id
	sessionCtx := c.sessionCtx
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sessionCtx, cancel)
	defer stop()

	var (
		fresh     *casedata.Case
		timeline  []casedata.TimelineEvent
		documents []casedata.Document
	)
	g, gctx := errgroup.WithContext(loadCtx)
	g.Go(func() error {
		var err error
		fresh, err = c.api.GetCase(gctx, held.CaseNumber)
		return err
	})
	g.Go(func() error {
		var err error
		timeline, err = c.api.FetchTimeline(gctx, held.CaseNumber)
		return err
	})
	g.Go(func() error {
		var err error
		documents, err = c.api.FetchDocuments(gctx, held.CaseNumber)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	if c.generation != gen || c.state != LoggedIn {
		c.mu.Unlock()
		return nil, ErrSessionEnded
	}
	if err == nil {
		if fresh.CaseNumber == "" {
			fresh.CaseNumber = held.CaseNumber
		}
		held = *fresh
		refreshed := held
		c.current = &refreshed
	}
	c.mu.Unlock()

	if err != nil {
		c.log.WithError(err).WithField("case_number", held.CaseNumber).Warn("dashboard load failed")
		c.record(ctx, Activity{
			SessionID:  sessionID,
			CaseNumber: held.CaseNumber,
			Action:     ActionDashboardFailed,
			Details:    map[string]interface{}{"error": portalapi.UserMessage(err)},
		})
		return nil, err
	}

	c.record(ctx, Activity{
		SessionID:  sessionID,
		CaseNumber: held.CaseNumber,
		Action:     ActionDashboardLoaded,
		Details: map[string]interface{}{
			"timeline_events": len(timeline),
			"documents":       len(documents),
		},
	})
	return &Snapshot{Case: held, Timeline: timeline, Documents: documents, LoadedAt: time.Now()}, nil
}

// UpdateStatus applies patch to the held case remotely and keeps the
// server's updated record.
func (c *Controller) UpdateStatus(ctx context.Context, patch casedata.StatusPatch) (*casedata.Case, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}

	c.mu.Lock()
	if c.state != LoggedIn {
		c.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	gen := c.generation
	caseNumber := c.current.CaseNumber
	sessionID := c.id
	c.mu.Unlock()

	updated, err := c.api.UpdateStatus(ctx, caseNumber, patch)
	if err != nil {
		c.record(ctx, Activity{
			SessionID:  sessionID,
			CaseNumber: caseNumber,
			Action:     ActionStatusUpdateFailed,
			Details:    map[string]interface{}{"error": portalapi.UserMessage(err)},
		})
		return nil, err
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return nil, ErrSessionEnded
	}
	if updated.CaseNumber == "" {
		updated.CaseNumber = caseNumber
	}
	held := *updated
	c.current = &held
	c.mu.Unlock()

	c.record(ctx, Activity{
		SessionID:  sessionID,
		CaseNumber: caseNumber,
		Action:     ActionStatusUpdated,
		Details:    patchDetails(patch),
	})
	return updated, nil
}

func (c *Controller) record(ctx context.Context, a Activity) {
	if c.opts.Recorder == nil {
		return
	}
	if a.Actor == "" {
		a.Actor = c.opts.Actor
	}
	c.opts.Recorder.Record(context.WithoutCancel(ctx), a)
}

func patchDetails(p casedata.StatusPatch) map[string]interface{} {
	d := map[string]interface{}{}
	if p.CurrentStatus != nil {
		d["current_status"] = *p.CurrentStatus
	}
	if p.CurrentStep != nil {
		d["current_step"] = *p.CurrentStep
	}
	if p.TotalSteps != nil {
		d["total_steps"] = *p.TotalSteps
	}
	if p.PaymentStatus != nil {
		d["payment_status"] = *p.PaymentStatus
	}
	if p.HearingDate != nil {
		d["hearing_date"] = p.HearingDate.String()
	}
	return d
}

// Describe is a one-line summary for logs and the CLI.
func (c *Controller) Describe() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != LoggedIn {
		return "logged out"
	}
	return fmt.Sprintf("logged in as case %s (session %s)", c.current.CaseNumber, c.id)
}
