package ui

import (
	"fmt"
	"strings"

	"github.com/Ashfaaq98/caseportal/internal/dashboard"
	"github.com/Ashfaaq98/caseportal/internal/progress"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const progressBarWidth = 30

// progressBar draws percent as a fixed-width bar.
func progressBar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func stepMarker(icon progress.Icon) string {
	switch icon {
	case progress.IconCompleted:
		return "●"
	case progress.IconCurrent:
		return "◉"
	default:
		return "○"
	}
}

func connectorGlyph(c progress.Connector) string {
	switch c {
	case progress.ConnectorFilled:
		return "┃"
	case progress.ConnectorEmpty:
		return "│"
	default:
		return ""
	}
}

func (th Theme) iconColor(icon progress.Icon) tcell.Color {
	switch icon {
	case progress.IconCompleted:
		return th.Success
	case progress.IconCurrent:
		return th.Accent
	default:
		return th.TextMuted
	}
}

func heroText(h dashboard.Hero, th Theme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s::b]%s[-:-:-]\n", th.TagTextPrimary, tview.Escape(h.Headline))
	fmt.Fprintf(&b, "[%s]%s  ·  %s[-]\n\n", th.TagMuted, tview.Escape(h.Address), tview.Escape(h.CaseRef))
	step := h.StepText
	if h.CurrentStep != "" {
		step += "  ·  " + h.CurrentStep
	}
	fmt.Fprintf(&b, "[%s]%s[-] [%s::b]%d%%[-:-:-] complete  [%s]%s[-]\n\n",
		th.TagAccent, progressBar(h.Percent, progressBarWidth),
		th.TagTextPrimary, h.Percent,
		th.TagMuted, tview.Escape(step))

	date := h.Hearing.Date
	tag := th.TagWarning
	if !h.Hearing.Scheduled() {
		tag = th.TagMuted
	}
	fmt.Fprintf(&b, "[%s]Next Hearing:[-] [%s::b]%s[-:-:-]\n", th.TagMuted, tag, tview.Escape(date))
	fmt.Fprintf(&b, "[%s]%s[-]", th.TagTextPrimary, tview.Escape(h.NextStep))
	return b.String()
}

func rowsText(rows []dashboard.Row, th Theme) string {
	width := 0
	for _, r := range rows {
		if len(r.Label) > width {
			width = len(r.Label)
		}
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("[%s]%-*s[-]  %s", th.TagMuted, width, r.Label, tview.Escape(r.Value))
	}
	return strings.Join(lines, "\n")
}

func contactText(c dashboard.Contact, th Theme) string {
	return fmt.Sprintf("[%s::b]%s[-:-:-]\n[%s]Call Us[-]\n%s\n[%s]Email Support[-]\n%s",
		th.TagTextPrimary, tview.Escape(c.FirmName),
		th.TagMuted, tview.Escape(c.Phone),
		th.TagMuted, tview.Escape(c.Email))
}

func paymentText(p dashboard.Payment, th Theme) string {
	tag := th.TagWarning
	if p.Paid {
		tag = th.TagSuccess
	}
	return fmt.Sprintf("[%s::b]%s[-:-:-]\n[%s]%s[-]", tag, p.Title, th.TagMuted, p.Message)
}

func whatsNextText(items []dashboard.NextItem, th Theme) string {
	lines := make([]string, 0, len(items)*2)
	for _, it := range items {
		lines = append(lines,
			fmt.Sprintf("[%s]▸[-] [%s::b]%s[-:-:-]", th.TagAccent, th.TagTextPrimary, tview.Escape(it.Title)),
			fmt.Sprintf("  [%s]%s[-]", th.TagMuted, tview.Escape(it.Detail)))
	}
	return strings.Join(lines, "\n")
}

func documentsText(docs []dashboard.DocumentRow, th Theme) string {
	if len(docs) == 0 {
		return fmt.Sprintf("[%s]No documents yet[-]", th.TagMuted)
	}
	lines := make([]string, len(docs))
	for i, d := range docs {
		lines[i] = fmt.Sprintf("%s\n  [%s]Uploaded %s[-]", tview.Escape(d.Name), th.TagMuted, d.Uploaded)
	}
	return strings.Join(lines, "\n")
}

// fillTimeline writes one row per step, followed by a connector row for
// every step that has one.
func fillTimeline(table *tview.Table, rows []dashboard.TimelineRow, th Theme) {
	table.Clear()
	headers := []string{"", "Step", "Date", "Status"}
	for col, header := range headers {
		table.SetCell(0, col, tview.NewTableCell(header).
			SetTextColor(th.TableHeader).
			SetBackgroundColor(th.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}
	if len(rows) == 0 {
		table.SetCell(1, 1, tview.NewTableCell("No timeline events").SetTextColor(th.TableRowMuted))
		return
	}

	r := 1
	for _, row := range rows {
		color := th.iconColor(row.Icon)
		table.SetCell(r, 0, tview.NewTableCell(stepMarker(row.Icon)).SetTextColor(color).SetAlign(tview.AlignCenter))
		table.SetCell(r, 1, tview.NewTableCell(row.Title).SetTextColor(th.TableRow).SetExpansion(1))
		table.SetCell(r, 2, tview.NewTableCell(row.DateLabel).SetTextColor(th.TableRowMuted))
		table.SetCell(r, 3, tview.NewTableCell(row.Status).SetTextColor(color))
		r++
		if glyph := connectorGlyph(row.Connector); glyph != "" {
			lineColor := th.Border
			if row.Connector == progress.ConnectorFilled {
				lineColor = th.Success
			}
			table.SetCell(r, 0, tview.NewTableCell(glyph).SetTextColor(lineColor).SetAlign(tview.AlignCenter).SetSelectable(false))
			r++
		}
	}
}
