package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Ashfaaq98/caseportal/internal/casedata"
	"github.com/Ashfaaq98/caseportal/internal/portalapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI lets each test script the remote calls.
type fakeAPI struct {
	authenticate func(ctx context.Context, caseNumber, accessCode string) (*portalapi.AuthResult, error)
	getCase      func(ctx context.Context, caseNumber string) (*casedata.Case, error)
	timeline     func(ctx context.Context, caseNumber string) ([]casedata.TimelineEvent, error)
	documents    func(ctx context.Context, caseNumber string) ([]casedata.Document, error)
	update       func(ctx context.Context, caseNumber string, patch casedata.StatusPatch) (*casedata.Case, error)
}

func (f *fakeAPI) Authenticate(ctx context.Context, caseNumber, accessCode string) (*portalapi.AuthResult, error) {
	return f.authenticate(ctx, caseNumber, accessCode)
}

// GetCase echoes the login record unless a test scripts it.
func (f *fakeAPI) GetCase(ctx context.Context, caseNumber string) (*casedata.Case, error) {
	if f.getCase == nil {
		return &casedata.Case{CaseNumber: caseNumber, ClientName: "John Smith", CurrentStep: 4, TotalSteps: 7}, nil
	}
	return f.getCase(ctx, caseNumber)
}

func (f *fakeAPI) FetchTimeline(ctx context.Context, caseNumber string) ([]casedata.TimelineEvent, error) {
	return f.timeline(ctx, caseNumber)
}

func (f *fakeAPI) FetchDocuments(ctx context.Context, caseNumber string) ([]casedata.Document, error) {
	return f.documents(ctx, caseNumber)
}

func (f *fakeAPI) UpdateStatus(ctx context.Context, caseNumber string, patch casedata.StatusPatch) (*casedata.Case, error) {
	return f.update(ctx, caseNumber, patch)
}

type memRecorder struct {
	mu   sync.Mutex
	acts []Activity
}

func (m *memRecorder) Record(ctx context.Context, a Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acts = append(m.acts, a)
}

func (m *memRecorder) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.acts))
	for i, a := range m.acts {
		out[i] = a.Action
	}
	return out
}

func okAuth(caseNumber string) func(context.Context, string, string) (*portalapi.AuthResult, error) {
	return func(ctx context.Context, n, code string) (*portalapi.AuthResult, error) {
		return &portalapi.AuthResult{Case: casedata.Case{CaseNumber: caseNumber, ClientName: "John Smith", CurrentStep: 4, TotalSteps: 7}}, nil
	}
}

func okTimeline(ctx context.Context, n string) ([]casedata.TimelineEvent, error) {
	return []casedata.TimelineEvent{{ID: 1, Title: "Notice to Vacate", Status: casedata.StepCompleted}}, nil
}

func okDocuments(ctx context.Context, n string) ([]casedata.Document, error) {
	return []casedata.Document{{ID: 1, Name: "Lease Agreement"}}, nil
}

func TestLoginSuccess(t *testing.T) {
	rec := &memRecorder{}
	c := NewController(&fakeAPI{authenticate: okAuth("21456")}, Options{DefaultCaseNumber: DemoCaseNumber, Recorder: rec})
	assert.Equal(t, LoggedOut, c.State())

	require.NoError(t, c.Login(context.Background(), "21456", "test123"))
	assert.Equal(t, LoggedIn, c.State())
	assert.NotEmpty(t, c.ID())

	held, ok := c.Case()
	require.True(t, ok)
	assert.Equal(t, "21456", held.CaseNumber)
	assert.Equal(t, []string{ActionLoginSucceeded}, rec.actions())
	assert.Contains(t, c.Describe(), "21456")
}

func TestLoginFailureStaysLoggedOut(t *testing.T) {
	rec := &memRecorder{}
	api := &fakeAPI{authenticate: func(ctx context.Context, n, code string) (*portalapi.AuthResult, error) {
		return nil, &portalapi.AuthenticationError{Message: "Invalid credentials", StatusCode: 401}
	}}
	c := NewController(api, Options{Recorder: rec})

	err := c.Login(context.Background(), "21456", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", portalapi.UserMessage(err))
	assert.Equal(t, LoggedOut, c.State())
	_, ok := c.Case()
	assert.False(t, ok)

	require.Len(t, rec.acts, 1)
	assert.Equal(t, ActionLoginFailed, rec.acts[0].Action)
	assert.Equal(t, "21456", rec.acts[0].CaseNumber)
	assert.Equal(t, "Invalid credentials", rec.acts[0].Details["error"])
}

func TestLoginRequiresCredentials(t *testing.T) {
	c := NewController(&fakeAPI{}, Options{})
	assert.ErrorIs(t, c.Login(context.Background(), " ", "code"), ErrMissingCredentials)
	assert.ErrorIs(t, c.Login(context.Background(), "21456", ""), ErrMissingCredentials)
}

func TestLoginFallbackCaseNumber(t *testing.T) {
	c := NewController(&fakeAPI{authenticate: okAuth("")}, Options{DefaultCaseNumber: DemoCaseNumber})
	require.NoError(t, c.Login(context.Background(), "777", "code"))

	held, _ := c.Case()
	assert.Equal(t, "21456", held.CaseNumber)
}

func TestLoginWithoutFallbackRejectsMissingCaseNumber(t *testing.T) {
	c := NewController(&fakeAPI{authenticate: okAuth("")}, Options{})
	err := c.Login(context.Background(), "777", "code")

	var authErr *portalapi.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.ErrorIs(t, err, ErrMissingCaseNumber)
	assert.Equal(t, LoggedOut, c.State())
}

func TestTransitions(t *testing.T) {
	c := NewController(&fakeAPI{authenticate: okAuth("21456")}, Options{})

	assert.ErrorIs(t, c.Logout(), ErrNotLoggedIn)

	require.NoError(t, c.Login(context.Background(), "21456", "test123"))
	assert.ErrorIs(t, c.Login(context.Background(), "21456", "test123"), ErrAlreadyLoggedIn)

	first := c.ID()
	require.NoError(t, c.Logout())
	assert.Equal(t, LoggedOut, c.State())
	assert.Equal(t, "", c.ID())
	assert.Equal(t, "logged out", c.Describe())

	require.NoError(t, c.Login(context.Background(), "21456", "test123"))
	assert.NotEqual(t, first, c.ID(), "each login gets a fresh session id")
}

func TestLoadDashboardRequiresLogin(t *testing.T) {
	c := NewController(&fakeAPI{}, Options{})
	_, err := c.LoadDashboard(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLoadDashboardFetchesConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(3)
	bothStarted := make(chan struct{})
	go func() { wg.Wait(); close(bothStarted) }()

	wait := func(ctx context.Context) error {
		wg.Done()
		select {
		case <-bothStarted:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("fetches were not concurrent")
		}
	}

	rec := &memRecorder{}
	api := &fakeAPI{
		authenticate: okAuth("21456"),
		getCase: func(ctx context.Context, n string) (*casedata.Case, error) {
			if err := wait(ctx); err != nil {
				return nil, err
			}
			return &casedata.Case{CaseNumber: n, CurrentStep: 4, TotalSteps: 7}, nil
		},
		timeline: func(ctx context.Context, n string) ([]casedata.TimelineEvent, error) {
			if err := wait(ctx); err != nil {
				return nil, err
			}
			return okTimeline(ctx, n)
		},
		documents: func(ctx context.Context, n string) ([]casedata.Document, error) {
			if err := wait(ctx); err != nil {
				return nil, err
			}
			return okDocuments(ctx, n)
		},
	}
	c := NewController(api, Options{Recorder: rec})
	require.NoError(t, c.Login(context.Background(), "21456", "test123"))

	snap, err := c.LoadDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "21456", snap.Case.CaseNumber)
	assert.Len(t, snap.Timeline, 1)
	assert.Len(t, snap.Documents, 1)
	assert.False(t, snap.LoadedAt.IsZero())
	assert.Equal(t, []string{ActionLoginSucceeded, ActionDashboardLoaded}, rec.actions())
}

func TestLoadDashboardRefreshesHeldCase(t *testing.T) {
	api := &fakeAPI{
		authenticate: okAuth("21456"),
		getCase: func(ctx context.Context, n string) (*casedata.Case, error) {
			return &casedata.Case{CaseNumber: n, CurrentStatus: "Judgment Issued", CurrentStep: 5, TotalSteps: 7, PaymentStatus: "Paid"}, nil
		},
		timeline:  okTimeline,
		documents: okDocuments,
	}
	c := NewController(api, Options{})
	require.NoError(t, c.Login(context.Background(), "21456", "test123"))

	snap, err := c.LoadDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Judgment Issued", snap.Case.CurrentStatus)
	assert.Equal(t, 5, snap.Case.CurrentStep)

	held, _ := c.Case()
	assert.Equal(t, "Paid", held.PaymentStatus, "later loads and updates start from the refreshed record")
}

func TestLoadDashboardCaseFetchFailure(t *testing.T) {
	rec := &memRecorder{}
	api := &fakeAPI{
		authenticate: okAuth("21456"),
		getCase: func(ctx context.Context, n string) (*casedata.Case, error) {
			return nil, &portalapi.FetchError{Resource: portalapi.ResourceCase, Message: portalapi.DefaultCaseMessage, StatusCode: 500}
		},
		timeline:  okTimeline,
		documents: okDocuments,
	}
	c := NewController(api, Options{Recorder: rec})
	require.NoError(t, c.Login(context.Background(), "21456", "test123"))

	snap, err := c.LoadDashboard(context.Background())
	assert.Nil(t, snap)
	assert.Equal(t, "Failed to fetch case details", portalapi.UserMessage(err))

	held, _ := c.Case()
	assert.Equal(t, 4, held.CurrentStep, "login record kept on failure")
	assert.Equal(t, ActionDashboardFailed, rec.actions()[1])
}

func TestLoadDashboardFailsWhenEitherFetchFails(t *testing.T) {
	docsErr := &portalapi.FetchError{Resource: portalapi.ResourceDocuments, Message: portalapi.DefaultDocumentsMessage, StatusCode: 500}

	rec := &memRecorder{}
	api := &fakeAPI{
		authenticate: okAuth("21456"),
		timeline:     okTimeline,
		documents: func(ctx context.Context, n string) ([]casedata.Document, error) {
			return nil, docsErr
		},
	}
	c := NewController(api, Options{Recorder: rec})
	require.NoError(t, c.Login(context.Background(), "21456", "test123"))

	snap, err := c.LoadDashboard(context.Background())
	assert.Nil(t, snap, "no partial dashboard")
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch case documents", portalapi.UserMessage(err))
	assert.Equal(t, LoggedIn, c.State(), "a failed load does not log out")
	assert.Equal(t, ActionDashboardFailed, rec.actions()[1])
}

func TestLoadDashboardCancelsSiblingOnFailure(t *testing.T) {
	siblingCancelled := make(chan struct{})
	api := &fakeAPI{
		authenticate: okAuth("21456"),
		timeline: func(ctx context.Context, n string) ([]casedata.TimelineEvent, error) {
			return nil, &portalapi.FetchError{Resource: portalapi.ResourceTimeline, Message: "Case not found", StatusCode: 404}
		},
		documents: func(ctx context.Context, n string) ([]casedata.Document, error) {
			<-ctx.Done()
			close(siblingCancelled)
			return nil, ctx.Err()
		},
	}
	c := NewController(api, Options{})
	require.NoError(t, c.Login(context.Background(), "21456", "test123"))

	_, err := c.LoadDashboard(context.Background())
	assert.Equal(t, "Case not found", portalapi.UserMessage(err))

	select {
	case <-siblingCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("documents fetch was not cancelled")
	}
}

func TestLogoutDuringLoadDiscardsResult(t *testing.T) {
	started := make(chan struct{}, 2)
	api := &fakeAPI{
		authenticate: okAuth("21456"),
		timeline: func(ctx context.Context, n string) ([]casedata.TimelineEvent, error) {
			started <- struct{}{}
			<-ctx.Done()
			return nil, ctx.Err()
		},
		documents: func(ctx context.Context, n string) ([]casedata.Document, error) {
			started <- struct{}{}
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	c := NewController(api, Options{})
	require.NoError(t, c.Login(context.Background(), "21456", "test123"))

	errCh := make(chan error, 1)
	go func() {
		_, err := c.LoadDashboard(context.Background())
		errCh <- err
	}()

	<-started
	<-started
	require.NoError(t, c.Logout())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSessionEnded)
	case <-time.After(2 * time.Second):
		t.Fatal("logout did not abort the in-flight load")
	}
}

func TestUpdateStatus(t *testing.T) {
	rec := &memRecorder{}
	var gotPatch casedata.StatusPatch
	api := &fakeAPI{
		authenticate: okAuth("21456"),
		update: func(ctx context.Context, n string, patch casedata.StatusPatch) (*casedata.Case, error) {
			gotPatch = patch
			return &casedata.Case{CaseNumber: n, CurrentStatus: *patch.CurrentStatus, CurrentStep: 5, TotalSteps: 7}, nil
		},
	}
	c := NewController(api, Options{Recorder: rec, Actor: "cli"})

	status := "Judgment Issued"
	_, err := c.UpdateStatus(context.Background(), casedata.StatusPatch{CurrentStatus: &status})
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, c.Login(context.Background(), "21456", "test123"))

	_, err = c.UpdateStatus(context.Background(), casedata.StatusPatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	updated, err := c.UpdateStatus(context.Background(), casedata.StatusPatch{CurrentStatus: &status})
	require.NoError(t, err)
	assert.Equal(t, "Judgment Issued", updated.CurrentStatus)
	assert.Equal(t, "Judgment Issued", *gotPatch.CurrentStatus)

	held, _ := c.Case()
	assert.Equal(t, 5, held.CurrentStep)

	last := rec.acts[len(rec.acts)-1]
	assert.Equal(t, ActionStatusUpdated, last.Action)
	assert.Equal(t, "cli", last.Actor)
	assert.Equal(t, "Judgment Issued", last.Details["current_status"])
}

func TestUpdateStatusFailureKeepsCase(t *testing.T) {
	api := &fakeAPI{
		authenticate: okAuth("21456"),
		update: func(ctx context.Context, n string, patch casedata.StatusPatch) (*casedata.Case, error) {
			return nil, &portalapi.UpdateError{Message: portalapi.DefaultUpdateMessage, StatusCode: 500}
		},
	}
	c := NewController(api, Options{})
	require.NoError(t, c.Login(context.Background(), "21456", "test123"))

	step := 9
	_, err := c.UpdateStatus(context.Background(), casedata.StatusPatch{CurrentStep: &step})
	assert.Equal(t, "Failed to update case status", portalapi.UserMessage(err))

	held, _ := c.Case()
	assert.Equal(t, 4, held.CurrentStep)
}
