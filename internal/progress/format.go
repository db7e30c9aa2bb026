package progress

import "github.com/Ashfaaq98/caseportal/internal/casedata"

// NotSet is shown in place of a missing date.
const NotSet = "Not set"

const (
	displayDate     = "Jan 2, 2006"
	displayDateTime = "Jan 2, 2006, 3:04 PM"
	displayTime     = "3:04 PM"
)

// FormatDate renders d as "Mar 15, 2024".
func FormatDate(d *casedata.Date) string {
	if !d.IsSet() {
		return NotSet
	}
	return d.Time.Format(displayDate)
}

// FormatDateTime renders d as "May 15, 2023, 9:00 AM". Date-only values
// render at midnight.
func FormatDateTime(d *casedata.Date) string {
	if !d.IsSet() {
		return NotSet
	}
	return d.Time.Format(displayDateTime)
}

// FormatTime renders the time of day, or "" when d carries none.
func FormatTime(d *casedata.Date) string {
	if !d.IsSet() || !d.HasClock {
		return ""
	}
	return d.Time.Format(displayTime)
}
