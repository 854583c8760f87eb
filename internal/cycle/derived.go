package cycle

import "time"

const day = 24 * time.Hour

// Derived are the goal fields computed from its dates at read time.
type Derived struct {
	CurrentWeek   int  `json:"currentWeek"`
	IsActive      bool `json:"isActive"`
	DaysRemaining int  `json:"daysRemaining"`
}

// Derive computes every derived field against now.
func Derive(start, end time.Time, cycleDuration int, now time.Time) Derived {
	return Derived{
		CurrentWeek:   CurrentWeek(start, cycleDuration, now),
		IsActive:      IsActive(start, end, now),
		DaysRemaining: DaysRemaining(end, now),
	}
}

// CurrentWeek is the 1-based week of the cycle that now falls in, capped at
// cycleDuration. It is 0 before the cycle starts.
func CurrentWeek(start time.Time, cycleDuration int, now time.Time) int {
	if now.Before(start) || cycleDuration <= 0 {
		return 0
	}

	elapsedDays := int(now.Sub(start) / day)
	week := elapsedDays/7 + 1
	if week > cycleDuration {
		return cycleDuration
	}
	return week
}

// IsActive reports whether start <= now <= end.
func IsActive(start, end, now time.Time) bool {
	return !now.Before(start) && !now.After(end)
}

// DaysRemaining counts whole days until end, rounding partial days up. Never negative.
func DaysRemaining(end, now time.Time) int {
	left := end.Sub(now)
	if left <= 0 {
		return 0
	}
	days := int(left / day)
	if left%day != 0 {
		days++
	}
	return days
}
