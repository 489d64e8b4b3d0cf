package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientForBase(srv.URL+"/api", "4", "secret-key", 2*time.Second), srv
}

func TestUserInfoSendsTerminalHeaders(t *testing.T) {
	var gotHeaders http.Header
	var gotRFID string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/terminal/user", r.URL.Path)
		gotHeaders = r.Header
		gotRFID = r.URL.Query().Get("rfid")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"displayName": "Max Mustermann",
			"userId":      7,
			"clockedIn":   true,
		})
	}))

	info, err := client.UserInfo(context.Background(), "0B79D206A6")
	require.NoError(t, err)

	// Configuration values must round-trip unchanged into the request.
	assert.Equal(t, "4", gotHeaders.Get("X-Terminal-ID"))
	assert.Equal(t, "Bearer secret-key", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "0B79D206A6", gotRFID)

	assert.Equal(t, "Max Mustermann", info.DisplayName)
	assert.Equal(t, int64(7), info.UserID)
	assert.True(t, info.ClockedIn)
	assert.Equal(t, "Max", info.FirstName())
	assert.Equal(t, "/static/images/default_user.svg", info.Photo)
}

func TestUserInfoUnknownBadge(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.UserInfo(context.Background(), "FFFF")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPunchDecodesResult(t *testing.T) {
	var body map[string]interface{}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/terminal/punch", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"action":      "CLOCK_IN",
			"message":     "Clocked in",
			"displayName": "Anna Schmidt",
		})
	}))

	result, err := client.Punch(context.Background(), "67890", nil)
	require.NoError(t, err)

	assert.Equal(t, "67890", body["rfid"])
	assert.NotContains(t, body, "breakMinutes")
	assert.True(t, result.ClockIn())
	assert.Equal(t, "Anna Schmidt", result.DisplayName)
}

func TestPunchSendsBreakMinutes(t *testing.T) {
	var body map[string]interface{}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]string{"action": "CLOCK_OUT"})
	}))

	breakMin := 30
	_, err := client.Punch(context.Background(), "67890", &breakMin)
	require.NoError(t, err)
	assert.Equal(t, float64(30), body["breakMinutes"])
}

func TestPunchServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.Punch(context.Background(), "12345", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestWorkSummaryWeekWindows(t *testing.T) {
	var mu sync.Mutex
	windows := map[string]string{}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/admin/time-entries", r.URL.Path)
		require.Equal(t, "9", r.URL.Query().Get("userId"))
		mu.Lock()
		windows[r.URL.Query().Get("from")] = r.URL.Query().Get("to")
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]int{"totalNetMinutes": 90})
	}))

	// Wednesday 2026-08-26: week is Mon 24th .. Sun 30th, last week 17th .. 23rd.
	client.now = func() time.Time {
		return time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC)
	}

	summary, err := client.WorkSummary(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"2026-08-26": "2026-08-26",
		"2026-08-24": "2026-08-30",
		"2026-08-17": "2026-08-23",
	}, windows)

	assert.Equal(t, 90, summary.TodayMinutes)
	assert.Equal(t, 90, summary.WeekMinutes)
	assert.Equal(t, 90, summary.LastWeekMinutes)
	assert.Equal(t, 0, summary.VacationDays)
}

func TestWorkSummaryMondayStartsItsOwnWeek(t *testing.T) {
	var mu sync.Mutex
	var froms []string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		froms = append(froms, r.URL.Query().Get("from"))
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]int{"totalNetMinutes": 0})
	}))

	client.now = func() time.Time {
		return time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC) // a Monday
	}

	_, err := client.WorkSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-24", "2026-08-24", "2026-08-17"}, froms)
}

func TestWorkingUsersFiltersClockedIn(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/admin/users", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": 1, "displayName": "Max Mustermann", "clockedIn": true},
			{"id": 2, "displayName": "Anna Schmidt", "clockedIn": false},
			{"id": 3, "displayName": "Tom Meyer", "clockedIn": true},
		})
	}))

	working, err := client.WorkingUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, working, 2)
	assert.Equal(t, "Max Mustermann", working[0].DisplayName)
	assert.Equal(t, "Tom Meyer", working[1].DisplayName)
}

func TestActiveRegistration(t *testing.T) {
	active := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"active":    active,
			"sessionId": "sess-1",
		})
	}))

	session, err := client.ActiveRegistration(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)

	active = true
	session, err = client.ActiveRegistration(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "sess-1", session.SessionID)
}

func TestSubmitRegistration(t *testing.T) {
	var body map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/admin/registration/submit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))

	err := client.SubmitRegistration(context.Background(), "sess-1", "AABBCC")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", body["sessionId"])
	assert.Equal(t, "AABBCC", body["rfidTag"])
}

func TestHealth(t *testing.T) {
	status := "UP"
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}))

	assert.True(t, client.Health(context.Background()))

	status = "DOWN"
	assert.False(t, client.Health(context.Background()))

	srv.Close()
	assert.False(t, client.Health(context.Background()))
}
