package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/punchclock/terminal/models"
	"github.com/punchclock/terminal/utils"
)

// Client is the REST implementation of DataProvider.
// Base URL is http://host:port/api; every request carries the terminal id header
// and the API key as bearer token. There is no retry policy: a failed call is
// surfaced to the caller and the next scan simply tries again.
type Client struct {
	baseURL    string
	terminalID string
	apiKey     string
	httpClient *http.Client

	// now is injectable for the week-window date math in WorkSummary.
	now func() time.Time
}

// NewClient creates a REST client for the timeclock backend.
func NewClient(host, port, terminalID, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%s/api", host, port),
		terminalID: terminalID,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// NewClientForBase creates a client against a full base URL. Used by tests and
// the diagnostic mode, which point at an httptest server.
func NewClientForBase(baseURL, terminalID, apiKey string, timeout time.Duration) *Client {
	c := NewClient("", "", terminalID, apiKey, timeout)
	c.baseURL = baseURL
	return c
}

func (c *Client) buildURL(endpoint string, query map[string]string) string {
	u, _ := url.Parse(c.baseURL + "/" + endpoint)
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Terminal-ID", c.terminalID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// get issues a GET and decodes the JSON body into out.
// 404 maps to ErrNotFound, any other non-2xx status to an error.
func (c *Client) get(ctx context.Context, endpoint string, query map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(endpoint, query), nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	return c.decode(resp, endpoint, out)
}

// post issues a POST with a JSON body and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(endpoint, nil), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	return c.decode(resp, endpoint, out)
}

func (c *Client) decode(resp *http.Response, endpoint string, out interface{}) error {
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", endpoint, err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", endpoint, resp.StatusCode, string(b))
	}
}

// UserInfo returns user data for a badge UID.
func (c *Client) UserInfo(ctx context.Context, uid string) (*models.UserInfo, error) {
	var info models.UserInfo
	if err := c.get(ctx, "terminal/user", map[string]string{"rfid": uid}, &info); err != nil {
		return nil, err
	}
	info.Photo = defaultPhoto
	return &info, nil
}

// Punch clocks a user in or out. The backend decides the direction.
func (c *Client) Punch(ctx context.Context, uid string, breakMinutes *int) (*models.PunchResult, error) {
	body := map[string]interface{}{"rfid": uid}
	if breakMinutes != nil {
		body["breakMinutes"] = *breakMinutes
	}

	var result models.PunchResult
	if err := c.post(ctx, "terminal/punch", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type timeEntriesResponse struct {
	TotalNetMinutes int `json:"totalNetMinutes"`
}

// WorkSummary fetches today's, this ISO week's (Mon-Sun) and last week's net minutes.
// Vacation days stay 0 until the backend grows that endpoint.
func (c *Client) WorkSummary(ctx context.Context, userID int64) (*models.WorkSummary, error) {
	today := dateOnly(c.now())
	weekStart := today.AddDate(0, 0, -mondayOffset(today))
	weekEnd := weekStart.AddDate(0, 0, 6)
	lastWeekStart := weekStart.AddDate(0, 0, -7)
	lastWeekEnd := weekStart.AddDate(0, 0, -1)

	todayMin, err := c.netMinutes(ctx, userID, today, today)
	if err != nil {
		return nil, err
	}
	weekMin, err := c.netMinutes(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	lastWeekMin, err := c.netMinutes(ctx, userID, lastWeekStart, lastWeekEnd)
	if err != nil {
		return nil, err
	}

	return &models.WorkSummary{
		TodayMinutes:    todayMin,
		WeekMinutes:     weekMin,
		LastWeekMinutes: lastWeekMin,
		VacationDays:    0,
	}, nil
}

func (c *Client) netMinutes(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	var entries timeEntriesResponse
	err := c.get(ctx, "admin/time-entries", map[string]string{
		"userId": fmt.Sprintf("%d", userID),
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}, &entries)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entries.TotalNetMinutes, nil
}

type adminUser struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	ClockedIn   bool   `json:"clockedIn"`
}

// WorkingUsers lists currently clocked-in users for the home screen.
func (c *Client) WorkingUsers(ctx context.Context) ([]models.WorkingUser, error) {
	var users []adminUser
	if err := c.get(ctx, "admin/users", nil, &users); err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	var working []models.WorkingUser
	for _, u := range users {
		if u.ClockedIn {
			working = append(working, models.WorkingUser{
				UserID:      u.ID,
				DisplayName: u.DisplayName,
			})
		}
	}
	return working, nil
}

// ActiveRegistration checks whether the admin panel is waiting for a badge scan.
func (c *Client) ActiveRegistration(ctx context.Context) (*models.RegistrationSession, error) {
	var session models.RegistrationSession
	if err := c.get(ctx, "terminal/registration/active", nil, &session); err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	if !session.Active {
		return nil, nil
	}
	return &session, nil
}

// SubmitRegistration sends a scanned badge into an open registration session.
func (c *Client) SubmitRegistration(ctx context.Context, sessionID, uid string) error {
	body := map[string]string{
		"sessionId": sessionID,
		"rfidTag":   uid,
	}
	return c.post(ctx, "admin/registration/submit", body, nil)
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health reports whether the backend answers its health endpoint with status UP.
func (c *Client) Health(ctx context.Context) bool {
	var h healthResponse
	if err := c.get(ctx, "health", nil, &h); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Debugf("backend health check failed: %v", err)
		}
		return false
	}
	return h.Status == "UP"
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayOffset returns how many days t is past the start of its ISO week.
func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
