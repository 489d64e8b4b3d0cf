// Package provider wraps the timeclock backend's terminal API.
package provider

import (
	"context"
	"errors"

	"github.com/punchclock/terminal/models"
)

// ErrNotFound is returned when the backend answers 404, e.g. for an unknown badge.
var ErrNotFound = errors.New("not found")

// defaultPhoto is the placeholder avatar served from the kiosk's static dir.
// The backend does not serve user images yet.
const defaultPhoto = "/static/images/default_user.svg"

// DataProvider is the terminal's view of the timeclock backend.
// Implementations: Client (REST) and Mock (demo mode).
type DataProvider interface {
	// UserInfo returns user data for a badge UID. ErrNotFound for unknown badges.
	UserInfo(ctx context.Context, uid string) (*models.UserInfo, error)

	// Punch clocks the user in or out; the backend toggles based on current state.
	// breakMinutes is only meaningful when the punch ends up clocking out.
	Punch(ctx context.Context, uid string, breakMinutes *int) (*models.PunchResult, error)

	// WorkSummary aggregates today's, this week's and last week's worked minutes.
	WorkSummary(ctx context.Context, userID int64) (*models.WorkSummary, error)

	// WorkingUsers lists currently clocked-in users.
	WorkingUsers(ctx context.Context) ([]models.WorkingUser, error)

	// ActiveRegistration reports whether the admin panel is waiting for a badge.
	// Returns nil when no registration session is open.
	ActiveRegistration(ctx context.Context) (*models.RegistrationSession, error)

	// SubmitRegistration sends a scanned badge into an open registration session.
	SubmitRegistration(ctx context.Context, sessionID, uid string) error

	// Health reports whether the backend is reachable and up.
	Health(ctx context.Context) bool
}
