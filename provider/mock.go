package provider

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/punchclock/terminal/models"
)

type mockUser struct {
	info      models.UserInfo
	clockedIn bool
}

// Mock simulates the backend in memory so the terminal can run in demo mode
// without a server. State resets on restart.
type Mock struct {
	mu           sync.Mutex
	users        map[string]*mockUser
	registration *models.RegistrationSession
	healthy      bool
}

// NewMock creates a demo provider with a small badge database.
func NewMock() *Mock {
	return &Mock{
		users: map[string]*mockUser{
			"12345": {info: models.UserInfo{DisplayName: "Max Mustermann", UserID: 1}},
			"67890": {info: models.UserInfo{DisplayName: "Anna Schmidt", UserID: 2}},
			"11111": {info: models.UserInfo{DisplayName: "Tom Meyer", UserID: 3}, clockedIn: true},
		},
		healthy: true,
	}
}

// UserInfo returns mock user data for a badge UID.
func (m *Mock) UserInfo(_ context.Context, uid string) (*models.UserInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[uid]
	if !ok {
		return nil, ErrNotFound
	}
	info := u.info
	info.ClockedIn = u.clockedIn
	info.Photo = defaultPhoto
	return &info, nil
}

// Punch toggles the mock user's clock state.
func (m *Mock) Punch(_ context.Context, uid string, _ *int) (*models.PunchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[uid]
	if !ok {
		return nil, ErrNotFound
	}

	u.clockedIn = !u.clockedIn
	action := models.ActionClockOut
	message := "Clocked out"
	if u.clockedIn {
		action = models.ActionClockIn
		message = "Clocked in"
	}
	return &models.PunchResult{
		Action:      action,
		Message:     message,
		DisplayName: u.info.DisplayName,
	}, nil
}

// WorkSummary returns randomized but plausible demo hours.
func (m *Mock) WorkSummary(_ context.Context, _ int64) (*models.WorkSummary, error) {
	today := rand.Intn(481)
	return &models.WorkSummary{
		TodayMinutes:    today,
		WeekMinutes:     today + rand.Intn(1920),
		LastWeekMinutes: 1800 + rand.Intn(600),
		VacationDays:    15 + rand.Intn(16),
	}, nil
}

// WorkingUsers lists the demo users currently clocked in.
func (m *Mock) WorkingUsers(_ context.Context) ([]models.WorkingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var working []models.WorkingUser
	for _, u := range m.users {
		if u.clockedIn {
			working = append(working, models.WorkingUser{
				UserID:      u.info.UserID,
				DisplayName: u.info.DisplayName,
				ClockInTime: time.Now().Format("15:04"),
			})
		}
	}
	return working, nil
}

// StartRegistration opens a demo registration session and returns its id.
func (m *Mock) StartRegistration() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registration = &models.RegistrationSession{
		Active:    true,
		SessionID: uuid.NewString(),
	}
	return m.registration.SessionID
}

// ActiveRegistration reports the open demo registration session, if any.
func (m *Mock) ActiveRegistration(_ context.Context) (*models.RegistrationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registration, nil
}

// SubmitRegistration registers the badge under a fresh demo user and closes the session.
func (m *Mock) SubmitRegistration(_ context.Context, sessionID, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registration == nil || m.registration.SessionID != sessionID {
		return ErrNotFound
	}
	m.users[uid] = &mockUser{
		info: models.UserInfo{DisplayName: "New Badge " + uid, UserID: int64(len(m.users) + 1)},
	}
	m.registration = nil
	return nil
}

// SetHealthy flips the simulated backend health. Used by tests and demos.
func (m *Mock) SetHealthy(ok bool) {
	m.mu.Lock()
	m.healthy = ok
	m.mu.Unlock()
}

// Health reports the simulated backend health.
func (m *Mock) Health(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthy
}
