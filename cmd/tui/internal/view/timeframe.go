package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/coinquest/internal/format"
)

// Timeframe represents a predefined or custom date range selection.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisWeek
	TimeframeLastWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeCustom
)

var timeframeLabels = [...]string{
	TimeframeAll:       "All time",
	TimeframeThisWeek:  "This week",
	TimeframeLastWeek:  "Last week",
	TimeframeThisMonth: "This month",
	TimeframeLastMonth: "Last month",
	TimeframeCustom:    "Custom range",
}

func (t Timeframe) String() string {
	if t < 0 || int(t) >= len(timeframeLabels) {
		return "Unknown"
	}

	return timeframeLabels[t]
}

// Range returns the inclusive bounds of t around now, in now's location.
// Weeks start on Monday. TimeframeAll and TimeframeCustom have no bounds.
func (t Timeframe) Range(now time.Time) (start, end time.Time, ok bool) {
	today := dayStart(now)

	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	switch t {
	case TimeframeThisWeek:
		return monday, dayEnd(monday.AddDate(0, 0, 6)), true
	case TimeframeLastWeek:
		return monday.AddDate(0, 0, -7), dayEnd(monday.AddDate(0, 0, -1)), true
	case TimeframeThisMonth:
		return firstOfMonth, dayEnd(firstOfMonth.AddDate(0, 1, -1)), true
	case TimeframeLastMonth:
		prev := firstOfMonth.AddDate(0, -1, 0)
		return prev, dayEnd(firstOfMonth.AddDate(0, 0, -1)), true
	}

	return time.Time{}, time.Time{}, false
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return dayStart(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// TimeframeSelectedMsg is emitted when the user has selected a valid date range.
// Start and End are nil when the whole history was chosen.
type TimeframeSelectedMsg struct {
	Frame Timeframe
	Start *time.Time
	End   *time.Time
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	loc      *time.Location
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

// NewTimeframePicker creates a picker with initial preselected, computing
// ranges in loc.
func NewTimeframePicker(initial Timeframe, loc *time.Location) TimeframePicker {
	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   initial,
		loc:        loc,
		now:        time.Now,
		startInput: newDateInput("From: "),
		endInput:   newDateInput("To:   "),
	}
}

func newDateInput(prompt string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = time.DateOnly
	in.CharLimit = len(time.DateOnly)
	in.Width = 12

	return in
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(msg)
		case timeframeStateCustom:
			return m.updateCustom(msg)
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.selected = max(m.selected-1, TimeframeAll)
	case "down", "j":
		m.selected = min(m.selected+1, TimeframeCustom)
	case "enter":
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.endInput.Blur()

			return m, m.startInput.Focus()
		}

		selected := TimeframeSelectedMsg{Frame: m.selected}
		if start, end, ok := m.selected.Range(m.now().In(m.loc)); ok {
			selected.Start, selected.End = &start, &end
		}

		return m, func() tea.Msg { return selected }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		if m.focusIndex == 0 {
			m.endInput.Blur()
			return m, m.startInput.Focus()
		}

		m.startInput.Blur()

		return m, m.endInput.Focus()

	case "enter":
		start, end, err := parseRange(m.startInput.Value(), m.endInput.Value(), m.now().In(m.loc))
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil

		return m, func() tea.Msg {
			return TimeframeSelectedMsg{Frame: TimeframeCustom, Start: &start, End: &end}
		}

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

// parseRange reads YYYY-MM-DD bounds in now's location. A blank end means today.
func parseRange(from, to string, now time.Time) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(time.DateOnly, strings.TrimSpace(from), now.Location())
	if err != nil {
		return start, end, fmt.Errorf("invalid start date (YYYY-MM-DD)")
	}

	end = now
	if to = strings.TrimSpace(to); to != "" {
		if end, err = time.ParseInLocation(time.DateOnly, to, now.Location()); err != nil {
			return start, end, fmt.Errorf("invalid end date (YYYY-MM-DD)")
		}
	}

	if end.Before(start) {
		return start, end, fmt.Errorf("end date is before start date")
	}

	return start, dayEnd(end), nil
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmd tea.Cmd

	if m.focusIndex == 0 {
		m.startInput, cmd = m.startInput.Update(msg)
	} else {
		m.endInput, cmd = m.endInput.Update(msg)
	}

	return m, cmd
}

func (m TimeframePicker) View() string {
	var sb strings.Builder

	if m.state == timeframeStateCustom {
		fmt.Fprintf(&sb, "Custom range:\n\n%s\n%s\n\n", m.startInput.View(), m.endInput.View())
		sb.WriteString(faintStyle.Render("Leave the end date empty for today. Tab: switch | Enter: confirm | Esc: back"))
	} else {
		sb.WriteString("Select timeframe:\n\n")

		now := m.now().In(m.loc)

		for tf := TimeframeAll; tf <= TimeframeCustom; tf++ {
			cursor := "  "
			label := fmt.Sprintf("%-12s", tf)

			if tf == m.selected {
				cursor = activeStyle("> ")
				label = activeStyle(label)
			}

			var bounds string
			if start, end, ok := tf.Range(now); ok {
				bounds = faintStyle.Render(format.Date(start) + " to " + format.Date(end))
			}

			fmt.Fprintf(&sb, "%s%s %s\n", cursor, label, bounds)
		}
	}

	if m.err != nil {
		sb.WriteString("\n\n" + errorStyle.Render(m.err.Error()))
	}

	return sb.String()
}

// IsSelecting reports whether the picker shows the preset list rather than the custom inputs.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

// Reset returns the picker to the preset list.
func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
