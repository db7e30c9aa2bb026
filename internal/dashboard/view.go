// Package dashboard turns a loaded case into the rows and panels the
// presentation layers draw. It holds no state and performs no I/O.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/Ashfaaq98/caseportal/internal/casedata"
	"github.com/Ashfaaq98/caseportal/internal/progress"
)

const (
	DefaultFirmName  = "DFW Eviction Pros"
	DefaultFirmPhone = "(945) 998-0643"
	DefaultFirmEmail = "support@dfw-eviction.com"

	defaultHeadline  = "Case Active"
	awaitingSchedule = "Awaiting schedule"
)

// Contact is the firm contact block.
type Contact struct {
	FirmName string `json:"firm_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// DefaultContact returns the built-in firm contact details.
func DefaultContact() Contact {
	return Contact{FirmName: DefaultFirmName, Phone: DefaultFirmPhone, Email: DefaultFirmEmail}
}

// Row is a label/value pair.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Hero is the summary panel at the top of the dashboard.
type Hero struct {
	Percent  int              `json:"percent"`
	Headline string           `json:"headline"`
	Address  string           `json:"address"`
	CaseRef  string           `json:"case_ref"`
	Hearing  progress.Hearing `json:"next_hearing"`
	NextStep string           `json:"next_step"`
	StepText string           `json:"step_text"`
	// CurrentStep is the title of the timeline step marked current, or "".
	CurrentStep string `json:"current_step,omitempty"`
}

// TimelineRow is one rendered timeline step.
type TimelineRow struct {
	Step      int                `json:"step"`
	Title     string             `json:"title"`
	Detail    string             `json:"detail,omitempty"`
	DateLabel string             `json:"date"`
	Status    string             `json:"status"`
	Icon      progress.Icon      `json:"-"`
	Connector progress.Connector `json:"-"`
}

// DocumentRow is one document listing.
type DocumentRow struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Uploaded string `json:"uploaded"`
}

// Payment is the payment status panel.
type Payment struct {
	Paid    bool   `json:"paid"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NextItem is one entry of the "What's Next?" list.
type NextItem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// View is the assembled dashboard.
type View struct {
	ClientName     string        `json:"client_name"`
	Hero           Hero          `json:"hero"`
	Details        []Row         `json:"case_details"`
	ImportantDates []Row         `json:"important_dates"`
	Timeline       []TimelineRow `json:"timeline"`
	Documents      []DocumentRow `json:"documents"`
	Payment        Payment       `json:"payment"`
	WhatsNext      []NextItem    `json:"whats_next"`
	Contact        Contact       `json:"contact"`
}

// Builder assembles views with a fixed contact block.
type Builder struct {
	Contact Contact
	// DefaultCounty and DefaultCourt stand in for a case that lacks them.
	// Empty shows "Not set".
	DefaultCounty string
	DefaultCourt  string
}

// Build assembles a view using the default contact block.
func Build(c casedata.Case, timeline []casedata.TimelineEvent, documents []casedata.Document) (*View, error) {
	return Builder{Contact: DefaultContact()}.Build(c, timeline, documents)
}

// Build assembles the view. It fails only when the case's step pair cannot
// produce a percentage.
func (b Builder) Build(c casedata.Case, timeline []casedata.TimelineEvent, documents []casedata.Document) (*View, error) {
	percent, err := progress.RoundedPercentage(c.CurrentStep, c.TotalSteps)
	if err != nil {
		return nil, err
	}

	hearing := progress.NextHearingFor(c, timeline)
	var current string
	if ev, ok := progress.CurrentStep(timeline); ok {
		current = strings.TrimSpace(ev.Title)
	}
	v := &View{
		ClientName: c.ClientName,
		Hero: Hero{
			Percent:     percent,
			Headline:    headline(c),
			Address:     c.PropertyAddress,
			CaseRef:     "Case #" + c.CaseNumber,
			Hearing:     hearing,
			NextStep:    nextStep(hearing),
			StepText:    fmt.Sprintf("Step %d of %d", c.CurrentStep, c.TotalSteps),
			CurrentStep: current,
		},
		Details: []Row{
			{Label: "Case Number", Value: c.CaseNumber},
			{Label: "County", Value: orNotSet(firstSet(c.County, b.DefaultCounty))},
			{Label: "Court", Value: orNotSet(firstSet(c.Court, b.DefaultCourt))},
			{Label: "Filed Date", Value: progress.FormatDate(c.FiledDate)},
		},
		ImportantDates: []Row{
			{Label: "Notice Served", Value: progress.FormatDate(c.NoticeServedDate)},
			{Label: "Hearing Date", Value: progress.FormatDateTime(c.HearingDate)},
			{Label: "Response Deadline", Value: progress.FormatDate(c.ResponseDeadline)},
		},
		Timeline:  timelineRows(timeline),
		Documents: documentRows(documents),
		Payment:   payment(c),
		WhatsNext: whatsNext(c),
		Contact:   b.contact(),
	}
	return v, nil
}

func (b Builder) contact() Contact {
	def := DefaultContact()
	out := b.Contact
	if out.FirmName == "" {
		out.FirmName = def.FirmName
	}
	if out.Phone == "" {
		out.Phone = def.Phone
	}
	if out.Email == "" {
		out.Email = def.Email
	}
	return out
}

func headline(c casedata.Case) string {
	if s := strings.TrimSpace(c.CurrentStatus); s != "" {
		return s
	}
	return defaultHeadline
}

func nextStep(h progress.Hearing) string {
	switch {
	case !h.Scheduled():
		return awaitingSchedule
	case h.Time != "":
		return casedata.HearingStepTitle + " at " + h.Time
	default:
		return casedata.HearingStepTitle
	}
}

func timelineRows(events []casedata.TimelineEvent) []TimelineRow {
	states := progress.RenderTimeline(events)
	rows := make([]TimelineRow, len(states))
	for i, st := range states {
		rows[i] = TimelineRow{
			Step:      st.Event.StepNumber,
			Title:     st.Event.Title,
			Detail:    st.Event.Description,
			DateLabel: progress.StepDateLabel(st.Event),
			Status:    progress.StatusLabel(st.Event.Status),
			Icon:      st.Icon,
			Connector: st.Connector,
		}
	}
	return rows
}

func documentRows(docs []casedata.Document) []DocumentRow {
	rows := make([]DocumentRow, len(docs))
	for i, d := range docs {
		rows[i] = DocumentRow{
			Name:     d.Name,
			Type:     d.DocumentType,
			Uploaded: progress.FormatDate(d.UploadedDate),
		}
	}
	return rows
}

func payment(c casedata.Case) Payment {
	if c.IsPaid() {
		return Payment{Paid: true, Title: "Paid in Full", Message: "All service fees have been paid"}
	}
	return Payment{Title: "Payment Pending", Message: "Payment required to proceed"}
}

func whatsNext(c casedata.Case) []NextItem {
	appearance := "Hearing date to be scheduled"
	if c.HearingDate.IsSet() {
		appearance = "Attend the hearing on " + progress.FormatDateTime(c.HearingDate)
	}
	return []NextItem{
		{Title: "Prepare for Hearing", Detail: "Review your case documents before the court date"},
		{Title: "Court Appearance", Detail: appearance},
	}
}

func firstSet(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func orNotSet(s string) string {
	if strings.TrimSpace(s) == "" {
		return progress.NotSet
	}
	return s
}
