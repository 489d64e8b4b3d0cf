package models

import "fmt"

// WorkSummary aggregates worked minutes for the user screen.
type WorkSummary struct {
	TodayMinutes    int `json:"todayMinutes"`
	WeekMinutes     int `json:"weekMinutes"`
	LastWeekMinutes int `json:"lastWeekMinutes"`
	VacationDays    int `json:"vacationDays"`
}

// FormatMinutes renders minutes as "HH:MM h" the way the kiosk displays hours.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d h", minutes/60, minutes%60)
}
