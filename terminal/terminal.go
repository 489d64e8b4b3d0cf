// Package terminal composes the RFID reader, the data provider, the buzzer and
// the screen state into the running kiosk application.
package terminal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/punchclock/terminal/buzzer"
	"github.com/punchclock/terminal/config"
	"github.com/punchclock/terminal/i18n"
	"github.com/punchclock/terminal/models"
	"github.com/punchclock/terminal/provider"
	"github.com/punchclock/terminal/rfid"
	"github.com/punchclock/terminal/utils"
)

const (
	workingRefreshInterval = 15 * time.Second
	summaryCacheTTL        = time.Minute
)

// scanLimiter throttles one badge UID; stale entries are swept on access.
type scanLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// Terminal is the kiosk application core. It owns the poll loop and the
// screen-transition state; the web layer only reads state and forwards taps.
type Terminal struct {
	cfg       config.AppConfig
	dp        provider.DataProvider
	reader    rfid.Reader
	buzzer    *buzzer.Buzzer
	screens   *ScreenManager
	tr        *i18n.Translator
	summaries *utils.TTLCache

	limitersMu sync.Mutex
	limiters   map[string]*scanLimiter

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires the terminal from its parts.
func New(cfg config.AppConfig, dp provider.DataProvider, reader rfid.Reader, bz *buzzer.Buzzer) *Terminal {
	return &Terminal{
		cfg:       cfg,
		dp:        dp,
		reader:    reader,
		buzzer:    bz,
		screens:   NewScreenManager(),
		tr:        i18n.New(cfg.Language),
		summaries: utils.NewTTLCache(summaryCacheTTL),
		limiters:  map[string]*scanLimiter{},
	}
}

// Screens exposes the screen state for the web layer.
func (t *Terminal) Screens() *ScreenManager {
	return t.screens
}

// Provider exposes the data provider for the admin endpoints.
func (t *Terminal) Provider() provider.DataProvider {
	return t.dp
}

// Start launches the RFID poll loop and the working-users refresher.
func (t *Terminal) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	t.runCtx = ctx
	t.cancel = cancel

	t.wg.Add(2)
	go t.pollLoop(ctx)
	go t.refreshLoop(ctx)
}

// Stop cancels the loops, waits for them and releases the hardware.
func (t *Terminal) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
	if err := t.reader.Close(); err != nil {
		sugar().Errorf("RFID reader close: %v", err)
	}
	t.buzzer.Close()
	sugar().Info("terminal stopped")
}

// pollLoop reads the RFID peripheral at the configured interval. Reader errors
// are swallowed and retried on the next tick; the loop only ends on shutdown.
func (t *Terminal) pollLoop(ctx context.Context) {
	defer t.wg.Done()
	sugar().Info("RFID poll loop started")

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sugar().Info("RFID poll loop stopped")
			return
		case <-ticker.C:
			uid, err := t.reader.ReadUID(t.cfg.PollInterval / 2)
			if err != nil {
				sugar().Debugf("RFID read: %v", err)
				continue
			}
			if uid == "" {
				continue
			}
			t.HandleScan(ctx, uid)
		}
	}
}

// refreshLoop keeps the home screen's currently-working list up to date.
func (t *Terminal) refreshLoop(ctx context.Context) {
	defer t.wg.Done()

	t.RefreshWorking(ctx)

	ticker := time.NewTicker(workingRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.RefreshWorking(ctx)
		}
	}
}

// RefreshWorking fetches the clocked-in users and publishes them to the home
// screen. Failures keep the previous list.
func (t *Terminal) RefreshWorking(ctx context.Context) {
	working, err := t.dp.WorkingUsers(ctx)
	if err != nil {
		sugar().Warnf("working users refresh failed: %v", err)
		return
	}
	t.screens.SetWorking(working)
}

// allowScan enforces the per-badge cooldown so one presentation triggers at
// most one clock event.
func (t *Terminal) allowScan(uid string) bool {
	t.limitersMu.Lock()
	defer t.limitersMu.Unlock()

	now := time.Now()
	for key, sl := range t.limiters {
		if now.After(sl.expires) {
			delete(t.limiters, key)
		}
	}

	sl, ok := t.limiters[uid]
	if !ok {
		sl = &scanLimiter{limiter: rate.NewLimiter(rate.Every(t.cfg.ScanCooldown), 1)}
		t.limiters[uid] = sl
	}
	sl.expires = now.Add(5 * time.Minute)
	return sl.limiter.Allow()
}

// HandleScan runs the full scan pipeline for one badge presentation.
// Scans are ignored unless the home screen is visible.
func (t *Terminal) HandleScan(ctx context.Context, uid string) {
	if uid == "" || !t.screens.IsHome() {
		return
	}
	if !t.allowScan(uid) {
		sugar().Debugf("scan of %s suppressed by cooldown", uid)
		return
	}

	scan := models.BadgeScan{ID: uuid.NewString(), UID: uid, Timestamp: time.Now()}
	log := sugar().With(zap.String("scan_id", scan.ID), zap.String("uid", scan.UID))
	log.Info("badge scanned")

	// Registration mode: the admin panel is waiting for a badge, so the scan
	// is submitted there instead of punched.
	if session, err := t.dp.ActiveRegistration(ctx); err == nil && session != nil {
		if err := t.dp.SubmitRegistration(ctx, session.SessionID, uid); err != nil {
			log.Errorf("registration submit failed: %v", err)
			t.buzzer.Error()
			return
		}
		log.Info("badge submitted for registration")
		t.buzzer.Registration()
		return
	}

	if t.cfg.AdminBadge != "" && uid == t.cfg.AdminBadge {
		log.Info("admin badge detected")
		t.buzzer.Admin()
		t.ShowAdmin(ctx)
		return
	}

	info, err := t.dp.UserInfo(ctx, uid)
	if err == provider.ErrNotFound {
		log.Warn("unknown badge")
		t.buzzer.Warning()
		t.showError(fmt.Sprintf(t.tr.T(i18n.KeyUnknownTag), uid))
		return
	}
	if err != nil {
		log.Errorf("user lookup failed: %v", err)
		t.buzzer.Error()
		t.showError(t.tr.T(i18n.KeyServerError))
		return
	}

	result, err := t.dp.Punch(ctx, uid, nil)
	if err != nil {
		log.Errorf("punch failed: %v", err)
		t.buzzer.Error()
		t.showError(t.tr.T(i18n.KeyServerError))
		return
	}
	log.Infof("punch result: %s %s", result.Action, result.Message)

	t.summaries.Invalidate(summaryKey(info.UserID))

	switch result.Action {
	case models.ActionClockIn:
		t.buzzer.ClockIn()
		t.showClock(true, result.DisplayName, uid)
	case models.ActionClockOut:
		t.buzzer.ClockOut()
		t.showClock(false, result.DisplayName, uid)
	default:
		log.Warnf("unknown punch action %q", result.Action)
		t.buzzer.Warning()
		return
	}

	go t.RefreshWorking(t.runContext())
}

// runContext is the terminal's own lifecycle context for work that outlives a
// request, e.g. the post-punch refresh. A finished HTTP handler cancelling its
// request context must not kill detached work.
func (t *Terminal) runContext() context.Context {
	if t.runCtx != nil {
		return t.runCtx
	}
	return context.Background()
}

func (t *Terminal) showClock(clockIn bool, name, uid string) {
	first := models.UserInfo{DisplayName: name}.FirstName()

	var direction, message string
	if clockIn {
		direction = models.ActionClockIn
		message = t.tr.T(i18n.KeyWelcome)
		if first != "" {
			message = fmt.Sprintf(t.tr.T(i18n.KeyWelcomeName), first)
		}
	} else {
		direction = models.ActionClockOut
		message = t.tr.T(i18n.KeyGoodbye)
		if first != "" {
			message = fmt.Sprintf(t.tr.T(i18n.KeyGoodbyeName), first)
		}
	}

	t.screens.Show(ScreenClock, ClockPayload{
		Direction: direction,
		Message:   message,
		Name:      name,
		UID:       uid,
		Time:      time.Now().Format("15:04"),
	}, clockScreenDelay)
}

func (t *Terminal) showError(message string) {
	t.screens.Show(ScreenError, ErrorPayload{Message: message}, errorScreenDelay)
}

// ShowUser brings up the worked-hours summary for a badge. The hour fields are
// filled in asynchronously once the summary arrives.
func (t *Terminal) ShowUser(ctx context.Context, uid string) {
	info, err := t.dp.UserInfo(ctx, uid)
	if err == provider.ErrNotFound {
		t.buzzer.Warning()
		t.showError(fmt.Sprintf(t.tr.T(i18n.KeyUnknownUser), uid))
		return
	}
	if err != nil {
		sugar().Errorf("user lookup failed: %v", err)
		t.buzzer.Error()
		t.showError(t.tr.T(i18n.KeyServerError))
		return
	}

	payload := UserPayload{
		Greeting:      fmt.Sprintf(t.tr.T(i18n.KeyHello), info.FirstName()),
		Photo:         info.Photo,
		UID:           uid,
		ClockedIn:     info.ClockedIn,
		TodayLabel:    t.tr.T(i18n.KeyToday),
		WeekLabel:     t.tr.T(i18n.KeyThisWeek),
		LastWeekLabel: t.tr.T(i18n.KeyLastWeek),
		VacationLabel: t.tr.T(i18n.KeyVacation),
	}
	seq := t.screens.Show(ScreenUser, payload, 0)

	go t.loadSummary(t.runContext(), info.UserID, payload, seq)
}

func (t *Terminal) loadSummary(ctx context.Context, userID int64, payload UserPayload, seq uint64) {
	summary, err := t.summary(ctx, userID)
	if err != nil {
		sugar().Errorf("work summary failed: %v", err)
		return
	}

	payload.Today = models.FormatMinutes(summary.TodayMinutes)
	payload.Week = models.FormatMinutes(summary.WeekMinutes)
	payload.LastWeek = models.FormatMinutes(summary.LastWeekMinutes)
	payload.Vacation = fmt.Sprintf(t.tr.T(i18n.KeyDays), summary.VacationDays)

	if !t.screens.UpdatePayload(ScreenUser, seq, payload) {
		sugar().Debug("summary arrived after the screen moved on, dropped")
	}
}

func (t *Terminal) summary(ctx context.Context, userID int64) (*models.WorkSummary, error) {
	key := summaryKey(userID)
	if v, ok := t.summaries.Get(key); ok {
		return v.(*models.WorkSummary), nil
	}
	summary, err := t.dp.WorkSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	t.summaries.Set(key, summary)
	return summary, nil
}

func summaryKey(userID int64) string {
	return fmt.Sprintf("summary:%d", userID)
}

// ShowAdmin switches to the admin screen with a fresh info snapshot.
func (t *Terminal) ShowAdmin(ctx context.Context) {
	t.screens.Show(ScreenAdmin, t.AdminInfo(ctx), 0)
}

// AdminInfo gathers the admin screen payload: device time, local addresses
// and backend reachability.
func (t *Terminal) AdminInfo(ctx context.Context) AdminPayload {
	healthy := t.dp.Health(ctx)
	text := t.tr.T(i18n.KeyBackendOffline)
	if healthy {
		text = t.tr.T(i18n.KeyBackendOnline)
	}
	return AdminPayload{
		Time:           time.Now().Format("Mon, 02 Jan 2006 15:04:05"),
		IPs:            utils.LocalIPs(),
		BackendHealthy: healthy,
		BackendText:    text,
		DemoMode:       t.cfg.DemoMode,
	}
}

// Tap registers a clock-face tap; three within five seconds open the admin screen.
func (t *Terminal) Tap(ctx context.Context) {
	if t.screens.Tap() {
		sugar().Info("hidden admin access unlocked")
		t.ShowAdmin(ctx)
	}
}

// Back returns to the home screen.
func (t *Terminal) Back() {
	t.screens.Home()
}

func sugar() *zap.SugaredLogger {
	if utils.Sugar != nil {
		return utils.Sugar
	}
	return zap.NewNop().Sugar()
}
