package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ashfaaq98/caseportal/internal/casedata"
	"github.com/Ashfaaq98/caseportal/internal/dashboard"
	"github.com/Ashfaaq98/caseportal/internal/portalapi"
	"github.com/Ashfaaq98/caseportal/internal/progress"
	"github.com/Ashfaaq98/caseportal/internal/session"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu      sync.Mutex
	state   session.State
	logouts int
	loads   int
}

func (f *fakeController) Login(ctx context.Context, caseNumber, accessCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = session.LoggedIn
	return nil
}

func (f *fakeController) Logout() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != session.LoggedIn {
		return session.ErrNotLoggedIn
	}
	f.state = session.LoggedOut
	f.logouts++
	return nil
}

func (f *fakeController) LoadDashboard(ctx context.Context) (*session.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return &session.Snapshot{Case: testCase()}, nil
}

func (f *fakeController) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func testCase() casedata.Case {
	return casedata.Case{
		CaseNumber:      "21456",
		ClientName:      "John Smith",
		PropertyAddress: "123 Main St",
		CurrentStatus:   "Hearing Scheduled",
		CurrentStep:     4,
		TotalSteps:      7,
		HearingDate:     casedata.NewDateTime(2024, time.April, 2, 9, 30),
	}
}

func testView(t *testing.T) *dashboard.View {
	t.Helper()
	v, err := dashboard.Build(testCase(), []casedata.TimelineEvent{
		{StepNumber: 1, Title: "Notice to Vacate", Status: casedata.StepCompleted, EventDate: casedata.NewDate(2024, time.March, 1)},
		{StepNumber: 2, Title: "Court Hearing", Status: casedata.StepCurrent, EventDate: casedata.NewDate(2024, time.April, 2)},
		{StepNumber: 3, Title: "Judgment", Status: casedata.StepPending},
	}, []casedata.Document{{Name: "Lease Agreement", UploadedDate: casedata.NewDate(2024, time.February, 28)}})
	require.NoError(t, err)
	return v
}

func newTestUI(t *testing.T, ctrl Controller) *UI {
	t.Helper()
	ui := NewUI(context.Background(), ctrl, Options{
		Builder:  dashboard.Builder{Contact: dashboard.DefaultContact()},
		DemoHint: "Demo: Case 21456 / Code test123",
	})
	t.Cleanup(ui.cancel)
	return ui
}

func TestNewUIStartsOnLogin(t *testing.T) {
	ui := newTestUI(t, &fakeController{})

	assert.Equal(t, pageLogin, ui.current)
	assert.Equal(t, ThemeDark, ui.themeName)
	assert.Equal(t, labelSubmit, ui.loginForm.GetButton(0).GetLabel())
	assert.Contains(t, ui.loginHint.GetText(true), "test123")
}

func TestLoginFailureShowsMessage(t *testing.T) {
	ui := newTestUI(t, &fakeController{})
	ui.submitting = 1
	ui.setSubmitting(true)
	assert.Equal(t, labelSubmitting, ui.loginForm.GetButton(0).GetLabel())

	ui.finishLogin(&portalapi.AuthenticationError{Message: "Invalid credentials", StatusCode: 401})

	assert.Equal(t, pageLogin, ui.current)
	assert.Equal(t, "Invalid credentials", strings.TrimSpace(ui.loginError.GetText(true)))
	assert.Equal(t, labelSubmit, ui.loginForm.GetButton(0).GetLabel())
	assert.Equal(t, int32(0), ui.submitting)
}

func TestRenderViewFillsPanels(t *testing.T) {
	ui := newTestUI(t, &fakeController{})
	ui.showPage(pageDashboard)
	ui.renderView(testView(t))

	hero := ui.hero.GetText(true)
	assert.Contains(t, hero, "Hearing Scheduled")
	assert.Contains(t, hero, "57%")
	assert.Contains(t, hero, "Court Hearing at 9:30 AM")
	assert.Contains(t, ui.header.GetText(true), "DFW Eviction Pros")
	assert.Contains(t, ui.contact.GetText(true), "(945) 998-0643")
	assert.Contains(t, ui.payment.GetText(true), "Payment Pending")
	assert.Contains(t, ui.documents.GetText(true), "Uploaded Feb 28, 2024")
	assert.Contains(t, ui.next.GetText(true), "Attend the hearing on Apr 2, 2024, 9:30 AM")

	// header + 3 steps + 2 connectors
	assert.Equal(t, 6, ui.timeline.GetRowCount())
	assert.Equal(t, "Notice to Vacate", ui.timeline.GetCell(1, 1).Text)
	assert.Equal(t, "┃", ui.timeline.GetCell(2, 0).Text)
	assert.Equal(t, "Current Step", ui.timeline.GetCell(3, 3).Text)
	assert.Equal(t, "│", ui.timeline.GetCell(4, 0).Text)
	assert.Equal(t, "TBD", ui.timeline.GetCell(5, 2).Text)
}

func TestLoadErrorOffersReturnToLogin(t *testing.T) {
	ctrl := &fakeController{state: session.LoggedIn}
	ui := newTestUI(t, ctrl)
	ui.showPage(pageDashboard)

	ui.finishLoad(nil, &portalapi.FetchError{Resource: portalapi.ResourceTimeline, Message: "Failed to fetch case timeline"})
	assert.Equal(t, pageError, ui.current)

	ui.logout()
	assert.Equal(t, pageLogin, ui.current)
	assert.Equal(t, 1, ctrl.logouts)
	assert.Equal(t, session.LoggedOut, ctrl.State())
}

func TestLoadAfterLogoutIsDropped(t *testing.T) {
	ui := newTestUI(t, &fakeController{})
	ui.finishLoad(nil, session.ErrSessionEnded)
	assert.Equal(t, pageLogin, ui.current)
	assert.Nil(t, ui.view)
}

func TestCtrlLLogsOut(t *testing.T) {
	ctrl := &fakeController{state: session.LoggedIn}
	ui := newTestUI(t, ctrl)
	ui.showPage(pageDashboard)
	ui.renderView(testView(t))

	out := ui.handleKey(tcell.NewEventKey(tcell.KeyCtrlL, 0, tcell.ModCtrl))
	assert.Nil(t, out)
	assert.Equal(t, pageLogin, ui.current)
	assert.Nil(t, ui.view)
	assert.Equal(t, 1, ctrl.logouts)
}

func TestKeysPassThroughOnLogin(t *testing.T) {
	ui := newTestUI(t, &fakeController{})
	ev := tcell.NewEventKey(tcell.KeyCtrlL, 0, tcell.ModCtrl)
	assert.Equal(t, ev, ui.handleKey(ev))
}

func TestThemeToggle(t *testing.T) {
	ui := newTestUI(t, &fakeController{})
	ui.renderView(testView(t))

	ui.handleKey(tcell.NewEventKey(tcell.KeyCtrlT, 0, tcell.ModCtrl))
	assert.Equal(t, pageLogin, ui.current, "theme keys are ignored on the login page")

	ui.showPage(pageDashboard)
	ui.handleKey(tcell.NewEventKey(tcell.KeyCtrlT, 0, tcell.ModCtrl))
	assert.Equal(t, ThemeLight, ui.themeName)
	assert.Contains(t, ui.hero.GetText(false), themeLight().TagAccent)
}

func TestThemeByName(t *testing.T) {
	_, name := ThemeByName("LIGHT")
	assert.Equal(t, ThemeLight, name)
	_, name = ThemeByName("solarized")
	assert.Equal(t, ThemeDark, name)
	assert.Equal(t, ThemeDark, nextTheme(ThemeLight))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "", progressBar(50, 0))
	assert.Equal(t, "█████░░░░░", progressBar(50, 10))
	assert.Equal(t, "░░░░", progressBar(-5, 4))
	assert.Equal(t, "████", progressBar(250, 4))
}

func TestStepGlyphs(t *testing.T) {
	assert.Equal(t, "●", stepMarker(progress.IconCompleted))
	assert.Equal(t, "◉", stepMarker(progress.IconCurrent))
	assert.Equal(t, "○", stepMarker(progress.IconPending))
	assert.Equal(t, "", connectorGlyph(progress.ConnectorNone))
}

func TestRowsTextAligns(t *testing.T) {
	th := themeDark()
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetText(rowsText([]dashboard.Row{{Label: "County", Value: "Dallas"}, {Label: "Case Number", Value: "21456"}}, th))
	lines := strings.Split(tv.GetText(true), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "County"+strings.Repeat(" ", 7)+"Dallas")
	assert.Contains(t, lines[1], "Case Number  21456")
}

func TestDocumentsTextEmpty(t *testing.T) {
	assert.Contains(t, documentsText(nil, themeDark()), "No documents yet")
}

func TestLoadErrorMessage(t *testing.T) {
	ui := newTestUI(t, &fakeController{})
	ui.finishLoad(nil, errors.New("boom"))
	assert.Equal(t, pageError, ui.current)
}

func TestStopFromAnotherGoroutine(t *testing.T) {
	ui := newTestUI(t, &fakeController{})

	done := make(chan struct{})
	go func() {
		ui.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Error(t, ui.ctx.Err(), "Stop cancels the UI context")
}
