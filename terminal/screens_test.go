package terminal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchclock/terminal/models"
)

func TestScreenManagerStartsHome(t *testing.T) {
	m := NewScreenManager()
	state := m.Current()
	assert.Equal(t, ScreenHome, state.Screen)
	assert.True(t, m.IsHome())
}

func TestShowBumpsRevision(t *testing.T) {
	m := NewScreenManager()
	before := m.Current().Revision

	m.Show(ScreenError, ErrorPayload{Message: "nope"}, 0)

	state := m.Current()
	assert.Equal(t, ScreenError, state.Screen)
	assert.Greater(t, state.Revision, before)
	assert.Equal(t, ErrorPayload{Message: "nope"}, state.Payload)
	assert.False(t, m.IsHome())
}

func TestAutoReturnFallsBackHome(t *testing.T) {
	m := NewScreenManager()
	m.Show(ScreenClock, ClockPayload{Message: "Welcome!"}, 20*time.Millisecond)
	require.False(t, m.IsHome())

	assert.Eventually(t, m.IsHome, time.Second, 5*time.Millisecond)
	assert.Nil(t, m.Current().Payload)
}

func TestLastTransitionWins(t *testing.T) {
	m := NewScreenManager()
	m.Show(ScreenClock, nil, 20*time.Millisecond)
	// A later transition without a timer must not be knocked back to home
	// by the clock screen's pending auto-return.
	m.Show(ScreenAdmin, AdminPayload{}, 0)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, ScreenAdmin, m.Current().Screen)
}

func TestUpdatePayloadOnlyOnSameScreen(t *testing.T) {
	m := NewScreenManager()
	seq := m.Show(ScreenUser, UserPayload{Greeting: "Hello Max!"}, 0)

	updated := m.UpdatePayload(ScreenUser, seq, UserPayload{Greeting: "Hello Max!", Today: "07:30 h"})
	require.True(t, updated)
	assert.Equal(t, "07:30 h", m.Current().Payload.(UserPayload).Today)

	m.Home()
	assert.False(t, m.UpdatePayload(ScreenUser, seq, UserPayload{Today: "08:00 h"}))
	assert.Nil(t, m.Current().Payload)
}

func TestUpdatePayloadDroppedAfterNewTransition(t *testing.T) {
	m := NewScreenManager()
	seqMax := m.Show(ScreenUser, UserPayload{Greeting: "Hello Max!"}, 0)
	seqAnna := m.Show(ScreenUser, UserPayload{Greeting: "Hello Anna!"}, 0)

	// The earlier user's late summary must not land on the newer screen.
	assert.False(t, m.UpdatePayload(ScreenUser, seqMax, UserPayload{Greeting: "Hello Max!", Today: "07:30 h"}))
	assert.Equal(t, "Hello Anna!", m.Current().Payload.(UserPayload).Greeting)

	assert.True(t, m.UpdatePayload(ScreenUser, seqAnna, UserPayload{Greeting: "Hello Anna!", Today: "06:00 h"}))
	assert.Equal(t, "06:00 h", m.Current().Payload.(UserPayload).Today)
}

func TestUpdatePayloadSurvivesWorkingRefresh(t *testing.T) {
	m := NewScreenManager()
	seq := m.Show(ScreenUser, UserPayload{Greeting: "Hello Max!"}, 0)

	// A background working-users refresh is not a transition.
	m.SetWorking([]models.WorkingUser{{UserID: 2, DisplayName: "Anna Schmidt"}})

	assert.True(t, m.UpdatePayload(ScreenUser, seq, UserPayload{Greeting: "Hello Max!", Today: "07:30 h"}))
}

func TestSetWorkingCopiesList(t *testing.T) {
	m := NewScreenManager()
	working := []models.WorkingUser{{UserID: 1, DisplayName: "Max Mustermann"}}
	m.SetWorking(working)

	state := m.Current()
	require.Len(t, state.Working, 1)

	// Mutating the snapshot must not leak back into the manager.
	state.Working[0].DisplayName = "changed"
	assert.Equal(t, "Max Mustermann", m.Current().Working[0].DisplayName)
}

func TestTapThreeTimesWithinWindow(t *testing.T) {
	m := NewScreenManager()
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	assert.False(t, m.Tap())
	now = now.Add(time.Second)
	assert.False(t, m.Tap())
	now = now.Add(time.Second)
	assert.True(t, m.Tap())
}

func TestTapWindowResets(t *testing.T) {
	m := NewScreenManager()
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	assert.False(t, m.Tap())
	now = now.Add(2 * time.Second)
	assert.False(t, m.Tap())

	// Too late for the third tap, the sequence starts over.
	now = now.Add(6 * time.Second)
	assert.False(t, m.Tap())
	now = now.Add(time.Second)
	assert.False(t, m.Tap())
	now = now.Add(time.Second)
	assert.True(t, m.Tap())
}
