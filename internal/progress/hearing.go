package progress

import (
	"strings"

	"github.com/Ashfaaq98/caseportal/internal/casedata"
)

// Hearing summarizes the next scheduled court date. Time is empty when no
// time of day is known.
type Hearing struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// TBD is the placeholder for an unscheduled hearing.
const TBD = "TBD"

// Scheduled reports whether a hearing date is known.
func (h Hearing) Scheduled() bool {
	return h.Date != TBD
}

// NextHearing looks for the first current "Court Hearing" step with a date.
// The time comes from the step's own timestamp when it has one.
func NextHearing(timeline []casedata.TimelineEvent) Hearing {
	ev, ok := hearingStep(timeline)
	if !ok {
		return Hearing{Date: TBD}
	}
	return Hearing{Date: FormatDate(ev.EventDate), Time: FormatTime(ev.EventDate)}
}

// NextHearingFor is NextHearing with a fallback for date-only steps: the
// case's hearing_date supplies the time when it falls on the same day.
func NextHearingFor(c casedata.Case, timeline []casedata.TimelineEvent) Hearing {
	h := NextHearing(timeline)
	if !h.Scheduled() || h.Time != "" {
		return h
	}
	ev, _ := hearingStep(timeline)
	if c.HearingDate.SameDay(ev.EventDate) {
		h.Time = FormatTime(c.HearingDate)
	}
	return h
}

func hearingStep(timeline []casedata.TimelineEvent) (casedata.TimelineEvent, bool) {
	for _, ev := range timeline {
		if normalizeStatus(ev.Status) != casedata.StepCurrent {
			continue
		}
		if strings.TrimSpace(ev.Title) != casedata.HearingStepTitle {
			continue
		}
		if !ev.EventDate.IsSet() {
			return casedata.TimelineEvent{}, false
		}
		return ev, true
	}
	return casedata.TimelineEvent{}, false
}
