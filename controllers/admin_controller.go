package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/punchclock/terminal/config"
	"github.com/punchclock/terminal/terminal"
	"github.com/punchclock/terminal/utils"
)

// AdminController backs the technician screen: PIN login, device info and
// simulated scans for diagnostics.
type AdminController struct {
	term *terminal.Terminal
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(term *terminal.Terminal) *AdminController {
	return &AdminController{term: term}
}

type loginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// Login verifies the admin PIN against its bcrypt hash and issues a short-lived token.
func (a *AdminController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "pin required")
		return
	}

	cfg := config.Get()
	if cfg.AdminPINHash == "" {
		utils.Error(ctx, http.StatusForbidden, 40301, "admin access not configured")
		return
	}
	if !utils.CheckPIN(cfg.AdminPINHash, req.PIN) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "wrong pin")
		return
	}

	token, err := utils.GenerateAdminToken(cfg.TokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "token generation failed")
		return
	}

	utils.Success(ctx, gin.H{
		"token":      token,
		"expires_in": int(cfg.TokenTTL.Seconds()),
	})
}

// Logout revokes the presented token until its natural expiry.
func (a *AdminController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		token := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(token); err == nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, nil)
}

// Info returns the admin screen payload plus terminal identity.
func (a *AdminController) Info(ctx *gin.Context) {
	cfg := config.Get()
	info := a.term.AdminInfo(ctx.Request.Context())
	utils.Success(ctx, gin.H{
		"terminal_id":  cfg.TerminalID,
		"time":         info.Time,
		"ips":          info.IPs,
		"backend":      info.BackendHealthy,
		"backend_text": info.BackendText,
		"demo":         info.DemoMode,
	})
}

type scanRequest struct {
	UID string `json:"uid" binding:"required"`
}

// Scan feeds a simulated badge scan through the normal pipeline. Useful on a
// workstation without a reader and when verifying a freshly registered badge.
func (a *AdminController) Scan(ctx *gin.Context) {
	var req scanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "uid required")
		return
	}

	a.term.Back()
	a.term.HandleScan(ctx.Request.Context(), req.UID)
	utils.Success(ctx, gin.H{"scanned": req.UID, "time": time.Now().Format(time.RFC3339)})
}
