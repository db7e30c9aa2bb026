package progress

import (
	"strings"

	"github.com/Ashfaaq98/caseportal/internal/casedata"
)

// Icon is the visual state of a step marker.
type Icon int

const (
	IconPending Icon = iota
	IconCurrent
	IconCompleted
)

func (i Icon) String() string {
	switch i {
	case IconCompleted:
		return "completed"
	case IconCurrent:
		return "current"
	default:
		return "pending"
	}
}

// Connector is the line drawn from a step to the one after it.
type Connector int

const (
	ConnectorNone Connector = iota
	ConnectorEmpty
	ConnectorFilled
)

// StepState is the rendered form of one timeline event.
type StepState struct {
	Event     casedata.TimelineEvent
	Icon      Icon
	Connector Connector
}

// RenderStep maps an event to its icon and outgoing connector. The connector
// depends only on this step: it is filled iff the step is completed. The last
// step has no connector. Unknown statuses render as pending.
func RenderStep(ev casedata.TimelineEvent, isLast bool) StepState {
	st := StepState{Event: ev, Icon: iconFor(ev.Status)}
	switch {
	case isLast:
		st.Connector = ConnectorNone
	case st.Icon == IconCompleted:
		st.Connector = ConnectorFilled
	default:
		st.Connector = ConnectorEmpty
	}
	return st
}

// RenderTimeline renders every event in order.
func RenderTimeline(events []casedata.TimelineEvent) []StepState {
	out := make([]StepState, len(events))
	for i, ev := range events {
		out[i] = RenderStep(ev, i == len(events)-1)
	}
	return out
}

// FilledConnectors counts filled connectors in a rendered timeline.
func FilledConnectors(states []StepState) int {
	n := 0
	for _, st := range states {
		if st.Connector == ConnectorFilled {
			n++
		}
	}
	return n
}

// StatusLabel is the short caption shown beside a step.
func StatusLabel(status casedata.StepStatus) string {
	switch normalizeStatus(status) {
	case casedata.StepCompleted:
		return "Completed"
	case casedata.StepCurrent:
		return "Current Step"
	default:
		return "Pending"
	}
}

// StepDateLabel prefers the actual date, then the estimate, then "TBD".
func StepDateLabel(ev casedata.TimelineEvent) string {
	if ev.EventDate.IsSet() {
		return FormatDate(ev.EventDate)
	}
	if ev.EstimatedDate.IsSet() {
		return "Est. " + FormatDate(ev.EstimatedDate)
	}
	return "TBD"
}

// CurrentStep returns the first event marked current.
func CurrentStep(events []casedata.TimelineEvent) (casedata.TimelineEvent, bool) {
	for _, ev := range events {
		if normalizeStatus(ev.Status) == casedata.StepCurrent {
			return ev, true
		}
	}
	return casedata.TimelineEvent{}, false
}

func iconFor(status casedata.StepStatus) Icon {
	switch normalizeStatus(status) {
	case casedata.StepCompleted:
		return IconCompleted
	case casedata.StepCurrent:
		return IconCurrent
	default:
		return IconPending
	}
}

func normalizeStatus(status casedata.StepStatus) casedata.StepStatus {
	return casedata.StepStatus(strings.ToLower(strings.TrimSpace(string(status))))
}
