package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/punchclock/terminal/config"
	"github.com/punchclock/terminal/controllers"
	"github.com/punchclock/terminal/middleware"
	"github.com/punchclock/terminal/terminal"
	"github.com/punchclock/terminal/utils"
)

// adminLoginPerMinute bounds PIN attempts per client IP.
const adminLoginPerMinute = 10

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(term *terminal.Terminal) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/", func(c *gin.Context) {
		c.File("./static/index.html")
	})

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	terminalController := controllers.NewTerminalController(term)
	adminController := controllers.NewAdminController(term)

	api := r.Group("/api/v1")

	terminalGroup := api.Group("/terminal")
	terminalGroup.GET("/state", terminalController.State)
	terminalGroup.POST("/tap", terminalController.Tap)
	terminalGroup.POST("/back", terminalController.Back)
	terminalGroup.POST("/user", terminalController.ShowUser)

	adminGroup := api.Group("/admin")
	adminGroup.POST("/login", middleware.RateLimitMiddleware(adminLoginPerMinute), adminController.Login)

	protected := adminGroup.Group("")
	protected.Use(middleware.AdminRequired())
	protected.POST("/logout", adminController.Logout)
	protected.GET("/info", adminController.Info)
	protected.POST("/scan", adminController.Scan)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		// Anything else falls back to the kiosk page.
		ctx.Status(http.StatusOK)
		ctx.File("./static/index.html")
	})

	return r
}
