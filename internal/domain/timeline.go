package domain

import (
	"fmt"
	"sort"
)

// ScheduleState classifies a stage's standing against its expected date
type ScheduleState string

const (
	ScheduleCompleted ScheduleState = "completed"
	ScheduleLost      ScheduleState = "lost"
	ScheduleLate      ScheduleState = "late"
	ScheduleUpcoming  ScheduleState = "upcoming"
)

// TimelineEntry is the derived timeline view of one stage
type TimelineEntry struct {
	StageID      string        `json:"stageId"`
	Name         string        `json:"name"`
	Status       StageStatus   `json:"status"`
	ExpectedDate Date          `json:"expectedDate"`
	ActualDate   *Date         `json:"actualDate,omitempty"`
	Order        int           `json:"order"`
	Milestone    string        `json:"milestone,omitempty"`
	State        ScheduleState `json:"state"`
	// Days is the calendar-day distance to the expected date: days late
	// for late stages, days until due for upcoming ones. Zero for
	// completed and lost stages.
	Days  int    `json:"days"`
	Label string `json:"label"`
}

// Classify returns the schedule state of a stage as of the given date,
// along with the day count. Done and lost stages are terminal for the
// timeline; a pending stage strictly past its expected date is late by the
// calendar-day difference, otherwise it is due in N days (N may be zero,
// meaning due today).
func Classify(s Stage, today Date) (ScheduleState, int) {
	switch s.Status {
	case StageDone:
		return ScheduleCompleted, 0
	case StageLost:
		return ScheduleLost, 0
	}
	if s.ExpectedDate.Before(today) {
		return ScheduleLate, s.ExpectedDate.DaysUntil(today)
	}
	return ScheduleUpcoming, today.DaysUntil(s.ExpectedDate)
}

// ScheduleLabel renders the human-readable lateness label used by the
// timeline view.
func ScheduleLabel(state ScheduleState, days int) string {
	switch state {
	case ScheduleCompleted:
		return "Completed"
	case ScheduleLost:
		return "Lost"
	case ScheduleLate:
		if days == 1 {
			return "1 day late"
		}
		return fmt.Sprintf("%d days late", days)
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// Timeline builds the derived timeline view of a lead as of the given
// date: stages with an expected date, in pipeline order, each classified
// against the calendar.
func Timeline(l *Lead, today Date) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(l.Stages))
	for _, s := range l.Stages {
		if s.ExpectedDate.IsZero() {
			continue
		}
		state, days := Classify(s, today)
		entry := TimelineEntry{
			StageID:      s.ID.String(),
			Name:         s.Name,
			Status:       s.Status,
			ExpectedDate: s.ExpectedDate,
			Order:        s.Order,
			Milestone:    s.Milestone,
			State:        state,
			Days:         days,
			Label:        ScheduleLabel(state, days),
		}
		if s.ActualDate != nil {
			d := *s.ActualDate
			entry.ActualDate = &d
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Order < entries[j].Order
	})
	return entries
}
