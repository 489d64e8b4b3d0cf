package terminal

import (
	"sync"
	"time"

	"github.com/punchclock/terminal/models"
)

// Screen names match the views the kiosk page renders.
type Screen string

const (
	ScreenHome  Screen = "home"
	ScreenUser  Screen = "user"
	ScreenClock Screen = "clock"
	ScreenError Screen = "error"
	ScreenAdmin Screen = "admin"
)

// How long transient screens stay up before falling back to home.
const (
	clockScreenDelay = 3 * time.Second
	errorScreenDelay = 10 * time.Second
)

// Hidden admin access: tap the clock face three times within five seconds.
const (
	adminTapCount  = 3
	adminTapWindow = 5 * time.Second
)

// State is the renderable snapshot the kiosk page polls.
type State struct {
	Screen   Screen               `json:"screen"`
	Revision uint64               `json:"revision"`
	Payload  interface{}          `json:"payload,omitempty"`
	Working  []models.WorkingUser `json:"working"`
}

// ClockPayload backs the welcome/goodbye screen after a punch.
type ClockPayload struct {
	Direction string `json:"direction"`
	Message   string `json:"message"`
	Name      string `json:"name"`
	UID       string `json:"uid"`
	Time      string `json:"time"`
}

// ErrorPayload backs the error screen.
type ErrorPayload struct {
	Message string `json:"message"`
}

// UserPayload backs the worked-hours summary screen. Labels are localized up
// front; the hour fields stay empty until the summary fetch completes.
type UserPayload struct {
	Greeting  string `json:"greeting"`
	Photo     string `json:"photo"`
	UID       string `json:"uid"`
	ClockedIn bool   `json:"clockedIn"`

	TodayLabel    string `json:"todayLabel"`
	WeekLabel     string `json:"weekLabel"`
	LastWeekLabel string `json:"lastWeekLabel"`
	VacationLabel string `json:"vacationLabel"`

	Today    string `json:"today"`
	Week     string `json:"week"`
	LastWeek string `json:"lastWeek"`
	Vacation string `json:"vacation"`
}

// AdminPayload backs the hidden admin screen.
type AdminPayload struct {
	Time           string   `json:"time"`
	IPs            []string `json:"ips"`
	BackendHealthy bool     `json:"backendHealthy"`
	BackendText    string   `json:"backendText"`
	DemoMode       bool     `json:"demoMode"`
}

// ScreenManager holds the current screen, its payload and the home screen's
// working-users list. Transitions are last-wins: any Show cancels a pending
// auto-return timer. A monotonically increasing revision lets the UI poll cheaply.
type ScreenManager struct {
	mu       sync.Mutex
	screen   Screen
	payload  interface{}
	working  []models.WorkingUser
	revision uint64

	// seq counts transitions only. Show hands it out so a slow asynchronous
	// payload update can be refused once any newer transition happened.
	seq uint64

	autoReturn *time.Timer

	tapCount int
	firstTap time.Time
	now      func() time.Time
}

// NewScreenManager starts on the home screen.
func NewScreenManager() *ScreenManager {
	return &ScreenManager{screen: ScreenHome, now: time.Now}
}

// Current returns a snapshot of the visible screen.
func (m *ScreenManager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	working := make([]models.WorkingUser, len(m.working))
	copy(working, m.working)
	return State{
		Screen:   m.screen,
		Revision: m.revision,
		Payload:  m.payload,
		Working:  working,
	}
}

// Show switches to a screen and returns the transition's sequence number for
// use with UpdatePayload. autoReturnAfter > 0 schedules a fall-back to home;
// any previously pending timer is cancelled first, so the last transition wins.
func (m *ScreenManager) Show(screen Screen, payload interface{}, autoReturnAfter time.Duration) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showLocked(screen, payload, autoReturnAfter)
}

func (m *ScreenManager) showLocked(screen Screen, payload interface{}, autoReturnAfter time.Duration) uint64 {
	if m.autoReturn != nil {
		m.autoReturn.Stop()
		m.autoReturn = nil
	}

	m.screen = screen
	m.payload = payload
	m.revision++
	m.seq++

	if autoReturnAfter > 0 {
		m.autoReturn = time.AfterFunc(autoReturnAfter, m.Home)
	}
	return m.seq
}

// Home returns to the home screen and clears any payload.
func (m *ScreenManager) Home() {
	m.Show(ScreenHome, nil, 0)
}

// IsHome reports whether the home screen is visible. Scans are only accepted there.
func (m *ScreenManager) IsHome() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.screen == ScreenHome
}

// UpdatePayload replaces the payload of the transition identified by seq
// without switching screens, e.g. when the worked-hours summary arrives after
// the user screen is already up. The update is dropped when any transition
// happened in the meantime, so a slow fetch for an earlier badge can never
// overwrite a newer screen.
func (m *ScreenManager) UpdatePayload(screen Screen, seq uint64, payload interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.screen != screen || m.seq != seq {
		return false
	}
	m.payload = payload
	m.revision++
	return true
}

// SetWorking replaces the home screen's currently-working list.
func (m *ScreenManager) SetWorking(working []models.WorkingUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.working = working
	m.revision++
}

// Tap registers one tap on the clock face and reports whether the hidden
// admin threshold was reached. The counter resets when taps are too far apart.
func (m *ScreenManager) Tap() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.firstTap) >= adminTapWindow {
		m.firstTap = now
		m.tapCount = 1
		return false
	}

	m.tapCount++
	if m.tapCount >= adminTapCount {
		m.tapCount = 0
		return true
	}
	return false
}
