// Package cycle holds the pure goal-cycle arithmetic: the weekly schedule a goal
// starts with and the time-derived fields shown when a goal is read.
package cycle

// Week is one generated week of a goal cycle.
type Week struct {
	WeekNumber      int
	TargetAmount    int
	CompletedAmount int
	Achieved        bool
	Notes           *string
}

// Override replaces the achieved flag and notes of a generated week.
type Override struct {
	Achieved bool
	Notes    *string
}

// WeeklySchedule returns weeks 1..duration, each with the given target and nothing
// completed. A non-positive duration yields an empty schedule.
func WeeklySchedule(duration, targetAmount int) []Week {
	if duration <= 0 {
		return []Week{}
	}

	weeks := make([]Week, duration)
	for i := range weeks {
		weeks[i] = Week{
			WeekNumber:   i + 1,
			TargetAmount: targetAmount,
		}
	}
	return weeks
}

// ApplyOverrides merges per-week overrides into a schedule in place and returns it.
// Overrides for week numbers outside the schedule are ignored.
func ApplyOverrides(weeks []Week, overrides map[int]Override) []Week {
	for i := range weeks {
		o, ok := overrides[weeks[i].WeekNumber]
		if !ok {
			continue
		}
		weeks[i].Achieved = o.Achieved
		weeks[i].Notes = o.Notes
	}
	return weeks
}
