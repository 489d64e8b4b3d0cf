package models

// UserInfo is the backend's answer to a badge lookup.
type UserInfo struct {
	DisplayName string `json:"displayName"`
	UserID      int64  `json:"userId"`
	ClockedIn   bool   `json:"clockedIn"`
	// Photo is filled in locally with the placeholder avatar; the backend
	// does not serve user images yet.
	Photo string `json:"photo,omitempty"`
}

// FirstName returns the part of the display name before the first space.
// Used for greetings on the clock and user screens.
func (u UserInfo) FirstName() string {
	for i, r := range u.DisplayName {
		if r == ' ' {
			return u.DisplayName[:i]
		}
	}
	return u.DisplayName
}

// WorkingUser is one row of the currently-working list on the home screen.
type WorkingUser struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	ClockInTime string `json:"clockInTime,omitempty"`
}
