package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/punchclock/terminal/terminal"
	"github.com/punchclock/terminal/utils"
)

// TerminalController serves the kiosk page's view of the screen state and
// forwards its touch events into the terminal core.
type TerminalController struct {
	term *terminal.Terminal
}

// NewTerminalController creates a new TerminalController instance.
func NewTerminalController(term *terminal.Terminal) *TerminalController {
	return &TerminalController{term: term}
}

// State returns the current screen snapshot. With ?since=<revision> the
// response is 304 when nothing changed, so the kiosk page can poll tightly.
func (t *TerminalController) State(ctx *gin.Context) {
	state := t.term.Screens().Current()

	if since := ctx.Query("since"); since != "" {
		rev, err := strconv.ParseUint(since, 10, 64)
		if err == nil && rev == state.Revision {
			ctx.Status(http.StatusNotModified)
			return
		}
	}

	utils.Success(ctx, state)
}

// Tap registers a clock-face tap (hidden admin access).
func (t *TerminalController) Tap(ctx *gin.Context) {
	t.term.Tap(ctx.Request.Context())
	utils.Success(ctx, nil)
}

// Back returns the kiosk to the home screen.
func (t *TerminalController) Back(ctx *gin.Context) {
	t.term.Back()
	utils.Success(ctx, nil)
}

type showUserRequest struct {
	UID string `json:"uid" binding:"required"`
}

// ShowUser opens the worked-hours summary screen for a badge, e.g. when the
// user taps their name on the clock screen.
func (t *TerminalController) ShowUser(ctx *gin.Context) {
	var req showUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "uid required")
		return
	}

	t.term.ShowUser(ctx.Request.Context(), req.UID)
	utils.Success(ctx, nil)
}
