package models

// Punch directions as reported by the backend. The backend toggles the state,
// the terminal never decides the direction itself.
const (
	ActionClockIn  = "CLOCK_IN"
	ActionClockOut = "CLOCK_OUT"
)

// PunchResult is the backend's answer to a punch request.
type PunchResult struct {
	Action      string `json:"action"`
	Message     string `json:"message"`
	DisplayName string `json:"displayName"`
}

// ClockIn reports whether the punch clocked the user in.
func (p PunchResult) ClockIn() bool {
	return p.Action == ActionClockIn
}

// RegistrationSession is an open badge registration started from the admin panel.
// While a session is active, the next scanned tag is submitted instead of punched.
type RegistrationSession struct {
	Active    bool   `json:"active"`
	SessionID string `json:"sessionId"`
}
