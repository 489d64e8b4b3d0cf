package buzzer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPin captures the on/off waveform driven onto the pin.
type recordingPin struct {
	mu     sync.Mutex
	states []bool
}

func (p *recordingPin) Set(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, on)
	return nil
}

func (p *recordingPin) waveform() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.states...)
}

// recordingSleep captures the durations the buzzer waited for.
type recordingSleep struct {
	mu        sync.Mutex
	durations []time.Duration
}

func (s *recordingSleep) sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durations = append(s.durations, d)
}

func (s *recordingSleep) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.durations...)
}

func newTestBuzzer() (*Buzzer, *recordingPin, *recordingSleep) {
	pin := &recordingPin{}
	sl := &recordingSleep{}
	return NewWithPin(pin, sl.sleep), pin, sl
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, time.Millisecond)
}

func TestClockInPattern(t *testing.T) {
	b, pin, sl := newTestBuzzer()
	b.ClockIn()

	waitFor(t, func() bool { return len(sl.recorded()) == 3 })
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		50 * time.Millisecond,
		150 * time.Millisecond,
	}, sl.recorded())
	assert.Equal(t, []bool{true, false, true, false}, pin.waveform())
}

func TestClockOutPatternDescends(t *testing.T) {
	b, _, sl := newTestBuzzer()
	b.ClockOut()

	waitFor(t, func() bool { return len(sl.recorded()) == 3 })
	assert.Equal(t, []time.Duration{
		150 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
	}, sl.recorded())
}

func TestErrorIsSingleLongBeep(t *testing.T) {
	b, pin, sl := newTestBuzzer()
	b.Error()

	waitFor(t, func() bool { return len(sl.recorded()) == 1 })
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, sl.recorded())
	assert.Equal(t, []bool{true, false}, pin.waveform())
}

func TestWarningIsThreeBeeps(t *testing.T) {
	b, pin, _ := newTestBuzzer()
	b.Warning()

	waitFor(t, func() bool { return len(pin.waveform()) == 6 })
	assert.Equal(t, []bool{true, false, true, false, true, false}, pin.waveform())
}

func TestPatternsDoNotInterleave(t *testing.T) {
	b, pin, _ := newTestBuzzer()
	b.ClockIn()
	b.ClockOut()

	waitFor(t, func() bool { return len(pin.waveform()) == 8 })
	// Each pattern's beeps stay paired even when fired back to back.
	for i, on := range pin.waveform() {
		assert.Equal(t, i%2 == 0, on)
	}
}

func TestDisabledBuzzerIsSilent(t *testing.T) {
	b := NewWithPin(nil, nil)
	b.Success()
	b.Error()
	b.Close()
}

func TestCloseForcesPinLow(t *testing.T) {
	b, pin, _ := newTestBuzzer()
	b.Admin()

	waitFor(t, func() bool { return len(pin.waveform()) == 2 })
	b.Close()
	states := pin.waveform()
	assert.False(t, states[len(states)-1])
}
