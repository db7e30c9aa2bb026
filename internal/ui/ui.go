// Package ui is the terminal front end: a login page and the case dashboard.
// Network calls run on goroutines and results are applied with
// QueueUpdateDraw.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Ashfaaq98/caseportal/internal/dashboard"
	"github.com/Ashfaaq98/caseportal/internal/logging"
	"github.com/Ashfaaq98/caseportal/internal/portalapi"
	"github.com/Ashfaaq98/caseportal/internal/session"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"
)

const (
	pageLogin     = "login"
	pageDashboard = "dashboard"
	pageError     = "error"

	labelCaseNumber = "Case Number"
	labelAccessCode = "Access Code"
	labelSubmit     = "Access My Case"
	labelSubmitting = "Accessing..."

	loadingText = "Loading case data..."
)

// Controller is the session surface the UI drives.
type Controller interface {
	Login(ctx context.Context, caseNumber, accessCode string) error
	Logout() error
	LoadDashboard(ctx context.Context) (*session.Snapshot, error)
	State() session.State
}

// Options configures the UI.
type Options struct {
	Builder  dashboard.Builder
	Theme    string
	DemoHint string
	Logger   *logrus.Entry
}

// UI represents the terminal user interface
type UI struct {
	app     *tview.Application
	pages   *tview.Pages
	ctrl    Controller
	builder dashboard.Builder
	log     *logrus.Entry

	// Login page
	loginForm  *tview.Form
	loginError *tview.TextView
	loginHint  *tview.TextView
	loginPage  tview.Primitive

	// Dashboard page
	header    *tview.TextView
	hero      *tview.TextView
	details   *tview.TextView
	dates     *tview.TextView
	contact   *tview.TextView
	timeline  *tview.Table
	documents *tview.TextView
	payment   *tview.TextView
	next      *tview.TextView
	statusBar *tview.TextView
	dashPage  *tview.Flex

	// Error page
	errorModal *tview.Modal

	// State
	view       *dashboard.View
	submitting int32
	loading    int32
	current    string

	theme     Theme
	themeName string
	demoHint  string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewUI builds the application with the login page showing.
func NewUI(ctx context.Context, ctrl Controller, opts Options) *UI {
	log := opts.Logger
	if log == nil {
		log = logging.Component(nil, "ui")
	}
	uiCtx, cancel := context.WithCancel(ctx)

	ui := &UI{
		app:      tview.NewApplication(),
		ctrl:     ctrl,
		builder:  opts.Builder,
		log:      log,
		demoHint: opts.DemoHint,
		ctx:      uiCtx,
		cancel:   cancel,
	}
	ui.theme, ui.themeName = ThemeByName(opts.Theme)

	ui.setupLogin()
	ui.setupDashboard()
	ui.setupError()

	ui.pages = tview.NewPages().
		AddPage(pageLogin, ui.loginPage, true, true).
		AddPage(pageDashboard, ui.dashPage, true, false).
		AddPage(pageError, ui.errorModal, true, false)
	ui.current = pageLogin

	ui.app.SetRoot(ui.pages, true)
	ui.app.SetInputCapture(ui.handleKey)
	ui.applyTheme()
	return ui
}

// Start runs the application until it is stopped or ctx is cancelled.
func (ui *UI) Start(ctx context.Context) error {
	ui.log.Info("starting TUI")
	go func() {
		select {
		case <-ctx.Done():
		case <-ui.ctx.Done():
		}
		ui.cancel()
		ui.app.Stop()
	}()

	ui.app.SetFocus(ui.loginForm)
	err := ui.app.Run()
	ui.log.WithError(err).Info("TUI stopped")
	return err
}

// Stop stops the application.
func (ui *UI) Stop() {
	ui.cancel()
	ui.app.Stop()
}

func (ui *UI) setupLogin() {
	ui.loginForm = tview.NewForm().
		AddInputField(labelCaseNumber, "", 24, nil, nil).
		AddPasswordField(labelAccessCode, "", 24, '*', nil).
		AddButton(labelSubmit, ui.submitLogin)
	ui.loginForm.SetBorder(true)
	ui.loginForm.SetTitle(" Case Portal ")
	ui.loginForm.SetTitleAlign(tview.AlignCenter)

	ui.loginError = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	ui.loginHint = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)

	box := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.loginForm, 9, 0, true).
		AddItem(ui.loginError, 1, 0, false).
		AddItem(ui.loginHint, 2, 0, false)

	ui.loginPage = tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(box, 12, 0, true).
			AddItem(nil, 0, 1, false), 52, 0, true).
		AddItem(nil, 0, 1, false)
}

func (ui *UI) setupDashboard() {
	panel := func(title string) *tview.TextView {
		tv := tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
		tv.SetBorder(true)
		tv.SetTitle(fmt.Sprintf(" %s ", title))
		tv.SetTitleAlign(tview.AlignLeft)
		return tv
	}

	ui.header = tview.NewTextView().SetDynamicColors(true)
	ui.hero = panel("Case Progress")
	ui.details = panel("Case Details")
	ui.dates = panel("Important Dates")
	ui.contact = panel("Contact Information")
	ui.documents = panel("Documents")
	ui.documents.SetScrollable(true)
	ui.payment = panel("Payment Status")
	ui.next = panel("What's Next?")

	ui.timeline = tview.NewTable()
	ui.timeline.SetBorder(true)
	ui.timeline.SetTitle(" Case Timeline ")
	ui.timeline.SetTitleAlign(tview.AlignLeft)
	ui.timeline.SetSelectable(true, false)
	ui.timeline.SetFixed(1, 0)

	ui.statusBar = tview.NewTextView().SetDynamicColors(true)

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.details, 6, 0, false).
		AddItem(ui.dates, 5, 0, false).
		AddItem(ui.contact, 0, 1, false)
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.documents, 0, 1, false).
		AddItem(ui.payment, 4, 0, false).
		AddItem(ui.next, 0, 1, false)
	body := tview.NewFlex().
		AddItem(left, 0, 1, false).
		AddItem(ui.timeline, 0, 2, true).
		AddItem(right, 0, 1, false)

	ui.dashPage = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.header, 1, 0, false).
		AddItem(ui.hero, 9, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)
}

func (ui *UI) setupError() {
	ui.errorModal = tview.NewModal().
		AddButtons([]string{"Return to Login"}).
		SetDoneFunc(func(int, string) { ui.logout() })
	ui.errorModal.SetTitle(" Unable to load case ")
}

func (ui *UI) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ui.current == pageLogin {
		return ev
	}
	switch ev.Key() {
	case tcell.KeyCtrlL:
		ui.logout()
		return nil
	case tcell.KeyCtrlR:
		if ui.current == pageDashboard {
			ui.startLoad()
		}
		return nil
	case tcell.KeyCtrlT:
		ui.setTheme(nextTheme(ui.themeName))
		return nil
	}
	return ev
}

func (ui *UI) showPage(name string) {
	ui.current = name
	ui.pages.SwitchToPage(name)
	switch name {
	case pageLogin:
		ui.app.SetFocus(ui.loginForm)
	case pageDashboard:
		ui.app.SetFocus(ui.timeline)
	case pageError:
		ui.app.SetFocus(ui.errorModal)
	}
}

func (ui *UI) fieldText(label string) string {
	item := ui.loginForm.GetFormItemByLabel(label)
	if field, ok := item.(*tview.InputField); ok {
		return field.GetText()
	}
	return ""
}

func (ui *UI) clearLoginForm() {
	for _, label := range []string{labelCaseNumber, labelAccessCode} {
		if field, ok := ui.loginForm.GetFormItemByLabel(label).(*tview.InputField); ok {
			field.SetText("")
		}
	}
	ui.loginForm.SetFocus(0)
}

// setSubmitting toggles the in-flight state of the login button.
func (ui *UI) setSubmitting(on bool) {
	label := labelSubmit
	if on {
		label = labelSubmitting
	}
	if btn := ui.loginForm.GetButton(0); btn != nil {
		btn.SetLabel(label)
	}
}

func (ui *UI) submitLogin() {
	if !atomic.CompareAndSwapInt32(&ui.submitting, 0, 1) {
		return
	}
	caseNumber := strings.TrimSpace(ui.fieldText(labelCaseNumber))
	accessCode := ui.fieldText(labelAccessCode)
	ui.setSubmitting(true)
	ui.loginError.SetText("")

	go func() {
		err := ui.ctrl.Login(ui.ctx, caseNumber, accessCode)
		ui.app.QueueUpdateDraw(func() {
			ui.finishLogin(err)
		})
	}()
}

func (ui *UI) finishLogin(err error) {
	atomic.StoreInt32(&ui.submitting, 0)
	ui.setSubmitting(false)
	if err != nil {
		ui.log.WithError(err).Warn("login failed")
		ui.loginError.SetText(fmt.Sprintf("[%s]%s[-]", ui.theme.TagError, tview.Escape(portalapi.UserMessage(err))))
		return
	}
	ui.clearLoginForm()
	ui.showPage(pageDashboard)
	ui.startLoad()
}

// startLoad shows the loading state and fetches the dashboard in the
// background. Overlapping loads are ignored.
func (ui *UI) startLoad() {
	if !atomic.CompareAndSwapInt32(&ui.loading, 0, 1) {
		return
	}
	ui.showLoading()

	go func() {
		snap, err := ui.ctrl.LoadDashboard(ui.ctx)
		var view *dashboard.View
		if err == nil {
			view, err = ui.builder.Build(snap.Case, snap.Timeline, snap.Documents)
		}
		ui.app.QueueUpdateDraw(func() {
			atomic.StoreInt32(&ui.loading, 0)
			ui.finishLoad(view, err)
		})
	}()
}

func (ui *UI) finishLoad(view *dashboard.View, err error) {
	switch {
	case errors.Is(err, session.ErrSessionEnded):
		return
	case err != nil:
		ui.log.WithError(err).Warn("dashboard load failed")
		ui.showLoadError(portalapi.UserMessage(err))
	default:
		ui.renderView(view)
	}
}

func (ui *UI) showLoading() {
	ui.view = nil
	for _, tv := range []*tview.TextView{ui.hero, ui.details, ui.dates, ui.contact, ui.documents, ui.payment, ui.next} {
		tv.Clear()
	}
	ui.hero.SetText(fmt.Sprintf("[%s]%s[-]", ui.theme.TagMuted, loadingText))
	ui.timeline.Clear()
	ui.setStatus(loadingText)
}

func (ui *UI) showLoadError(msg string) {
	ui.errorModal.SetText(msg)
	ui.showPage(pageError)
}

// renderView draws v into the dashboard panels. Must run on the UI
// goroutine.
func (ui *UI) renderView(v *dashboard.View) {
	ui.view = v
	ui.header.SetText(fmt.Sprintf(" [%s::b]%s[-:-:-]  [%s]%s[-]",
		ui.theme.TagAccent, tview.Escape(v.Contact.FirmName),
		ui.theme.TagMuted, tview.Escape(v.ClientName)))
	ui.hero.SetText(heroText(v.Hero, ui.theme))
	ui.details.SetText(rowsText(v.Details, ui.theme))
	ui.dates.SetText(rowsText(v.ImportantDates, ui.theme))
	ui.contact.SetText(contactText(v.Contact, ui.theme))
	ui.documents.SetText(documentsText(v.Documents, ui.theme))
	ui.payment.SetText(paymentText(v.Payment, ui.theme))
	ui.next.SetText(whatsNextText(v.WhatsNext, ui.theme))
	fillTimeline(ui.timeline, v.Timeline, ui.theme)
	ui.setStatus("Case loaded")
}

func (ui *UI) logout() {
	if err := ui.ctrl.Logout(); err != nil && !errors.Is(err, session.ErrNotLoggedIn) {
		ui.log.WithError(err).Warn("logout failed")
	}
	ui.view = nil
	ui.loginError.SetText("")
	ui.showPage(pageLogin)
}

func (ui *UI) setStatus(msg string) {
	ui.statusBar.SetText(fmt.Sprintf(" [%s]%s[-] [%s]|[-] [%s]Ctrl-L[-]:logout [%s]Ctrl-R[-]:reload [%s]Ctrl-T[-]:theme [%s]Ctrl-C[-]:quit",
		ui.theme.TagTextPrimary, tview.Escape(msg),
		ui.theme.TagMuted,
		ui.theme.TagAccent, ui.theme.TagAccent, ui.theme.TagAccent, ui.theme.TagAccent))
}

func (ui *UI) setTheme(name string) {
	ui.theme, ui.themeName = ThemeByName(name)
	ui.log.WithField("theme", ui.themeName).Debug("theme changed")
	ui.applyTheme()
	if ui.view != nil {
		ui.renderView(ui.view)
	}
}

func (ui *UI) applyTheme() {
	th := ui.theme

	ui.loginForm.SetBackgroundColor(th.Surface)
	ui.loginForm.SetBorderColor(th.FocusBorder)
	ui.loginForm.SetTitleColor(th.Header)
	ui.loginForm.SetLabelColor(th.TextPrimary)
	ui.loginForm.SetFieldBackgroundColor(th.SelectionBg)
	ui.loginForm.SetFieldTextColor(th.SelectionFg)
	ui.loginForm.SetButtonBackgroundColor(th.Accent)
	ui.loginForm.SetButtonTextColor(th.Surface)
	ui.loginError.SetBackgroundColor(th.Bg)
	ui.loginHint.SetBackgroundColor(th.Bg)
	ui.loginHint.SetText(ui.hintText())

	for _, tv := range []*tview.TextView{ui.hero, ui.details, ui.dates, ui.contact, ui.documents, ui.payment, ui.next} {
		tv.SetBackgroundColor(th.Surface)
		tv.SetTextColor(th.TextPrimary)
		tv.SetBorderColor(th.Border)
		tv.SetTitleColor(th.Header)
	}
	ui.header.SetBackgroundColor(th.Surface)
	ui.statusBar.SetBackgroundColor(th.Surface)
	ui.statusBar.SetTextColor(th.TextPrimary)

	ui.timeline.SetBackgroundColor(th.Surface)
	ui.timeline.SetBorderColor(th.FocusBorder)
	ui.timeline.SetTitleColor(th.Header)
	ui.timeline.SetSelectedStyle(tcell.StyleDefault.Background(th.SelectionBg).Foreground(th.SelectionFg))

	ui.errorModal.SetBackgroundColor(th.Surface)
	ui.errorModal.SetTextColor(th.Error)
	ui.errorModal.SetBorderColor(th.Error)
	ui.errorModal.SetButtonBackgroundColor(th.SelectionBg)
	ui.errorModal.SetButtonTextColor(th.SelectionFg)

	ui.pages.SetBackgroundColor(th.Bg)
}

func (ui *UI) hintText() string {
	if ui.demoHint == "" {
		return ""
	}
	return fmt.Sprintf("[%s]%s[-]", ui.theme.TagMuted, tview.Escape(ui.demoHint))
}
