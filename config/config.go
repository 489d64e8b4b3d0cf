package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AppConfig holds environment driven configuration values.
// Sensitive data (API key, admin PIN hash) should never have defaults inside code
// and must be provided via the config file or the environment.
type AppConfig struct {
	// Timeclock backend
	BackendHost    string
	BackendPort    string
	TerminalID     string
	APIKey         string
	RequestTimeout time.Duration

	// Local kiosk UI
	ListenPort     string
	GinMode        string
	AllowedOrigins []string

	// RFID reader (RC522 on SPI)
	SPIDevice    string
	PinReset     string
	PinIRQ       string
	PollInterval time.Duration
	ScanCooldown time.Duration

	// Buzzer
	BuzzerPin     string
	BuzzerEnabled bool

	// Admin access
	AdminBadge   string
	AdminPINHash string
	JWTSecret    string
	TokenTTL     time.Duration

	// Locale
	Language string

	// Demo mode runs against an in-memory backend instead of HTTP
	DemoMode bool

	// Logging configuration
	LogLevel      string
	LogPath       string
	GinLogPath    string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	if err := loadJSONConfig(filepath.Join("config", "config.json"), &cfg); err != nil {
		log.Fatalf("invalid config file: %v", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		// Admin tokens never leave the terminal, so an ephemeral secret is fine.
		// Tokens do not survive a restart, which is acceptable for a kiosk.
		cfg.JWTSecret = randomSecret()
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Reset clears the cached configuration so the next Load reads fresh state.
// Used by tests only.
func Reset() {
	cfg = AppConfig{}
	loaded = false
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("generate jwt secret: %v", err)
	}
	return hex.EncodeToString(b)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// fileConfig mirrors the grouped layout of config/config.json.
type fileConfig struct {
	Backend struct {
		Host           string `json:"Host"`
		Port           string `json:"Port"`
		TerminalID     string `json:"TerminalID"`
		APIKey         string `json:"APIKey"`
		TimeoutSeconds int    `json:"TimeoutSeconds"`
	} `json:"backend"`
	UI struct {
		ListenPort     string   `json:"ListenPort"`
		GinMode        string   `json:"GinMode"`
		AllowedOrigins []string `json:"AllowedOrigins"`
		Language       string   `json:"Language"`
	} `json:"ui"`
	RFID struct {
		SPIDevice      string `json:"SPIDevice"`
		PinReset       string `json:"PinReset"`
		PinIRQ         string `json:"PinIRQ"`
		PollIntervalMS int    `json:"PollIntervalMS"`
		ScanCooldownMS int    `json:"ScanCooldownMS"`
	} `json:"rfid"`
	Buzzer struct {
		Pin     string `json:"Pin"`
		Enabled *bool  `json:"Enabled"`
	} `json:"buzzer"`
	Admin struct {
		Badge           string `json:"Badge"`
		PINHash         string `json:"PINHash"`
		JWTSecret       string `json:"JWTSecret"`
		TokenTTLMinutes int    `json:"TokenTTLMinutes"`
	} `json:"admin"`
	Demo bool `json:"Demo"`
	Log  struct {
		Level      string `json:"Level"`
		Path       string `json:"Path"`
		GinPath    string `json:"GinPath"`
		MaxSizeMB  int    `json:"MaxSizeMB"`
		MaxBackups int    `json:"MaxBackups"`
		MaxAgeDays int    `json:"MaxAgeDays"`
		Compress   bool   `json:"Compress"`
	} `json:"log"`
}

// loadJSONConfig reads the JSON file into cfg if present.
// Returns an error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw fileConfig
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	out.BackendHost = raw.Backend.Host
	out.BackendPort = raw.Backend.Port
	out.TerminalID = raw.Backend.TerminalID
	out.APIKey = raw.Backend.APIKey
	if raw.Backend.TimeoutSeconds > 0 {
		out.RequestTimeout = time.Duration(raw.Backend.TimeoutSeconds) * time.Second
	}

	out.ListenPort = raw.UI.ListenPort
	out.GinMode = raw.UI.GinMode
	out.AllowedOrigins = raw.UI.AllowedOrigins
	out.Language = raw.UI.Language

	out.SPIDevice = raw.RFID.SPIDevice
	out.PinReset = raw.RFID.PinReset
	out.PinIRQ = raw.RFID.PinIRQ
	if raw.RFID.PollIntervalMS > 0 {
		out.PollInterval = time.Duration(raw.RFID.PollIntervalMS) * time.Millisecond
	}
	if raw.RFID.ScanCooldownMS > 0 {
		out.ScanCooldown = time.Duration(raw.RFID.ScanCooldownMS) * time.Millisecond
	}

	out.BuzzerPin = raw.Buzzer.Pin
	if raw.Buzzer.Enabled != nil {
		out.BuzzerEnabled = *raw.Buzzer.Enabled
	} else {
		out.BuzzerEnabled = true
	}

	out.AdminBadge = raw.Admin.Badge
	out.AdminPINHash = raw.Admin.PINHash
	out.JWTSecret = raw.Admin.JWTSecret
	if raw.Admin.TokenTTLMinutes > 0 {
		out.TokenTTL = time.Duration(raw.Admin.TokenTTLMinutes) * time.Minute
	}

	out.DemoMode = raw.Demo

	out.LogLevel = raw.Log.Level
	out.LogPath = raw.Log.Path
	out.GinLogPath = raw.Log.GinPath
	out.LogMaxSizeMB = raw.Log.MaxSizeMB
	out.LogMaxBackups = raw.Log.MaxBackups
	out.LogMaxAgeDays = raw.Log.MaxAgeDays
	out.LogCompress = raw.Log.Compress

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.BackendHost == "" {
		c.BackendHost = "127.0.0.1"
	}
	if c.BackendPort == "" {
		c.BackendPort = "8081"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 5 * time.Second
	}
	if c.ListenPort == "" {
		c.ListenPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.SPIDevice == "" {
		c.SPIDevice = "SPI0.0"
	}
	if c.PinReset == "" {
		c.PinReset = "GPIO24"
	}
	if c.PinIRQ == "" {
		c.PinIRQ = "GPIO18"
	}
	if c.PollInterval == 0 {
		c.PollInterval = 250 * time.Millisecond
	}
	if c.ScanCooldown == 0 {
		c.ScanCooldown = 1500 * time.Millisecond
	}
	if c.BuzzerPin == "" {
		c.BuzzerPin = "GPIO17"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 15 * time.Minute
	}
	if c.Language == "" {
		c.Language = "de"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.GinLogPath == "" {
		c.GinLogPath = "logs/gin.log"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("BACKEND_HOST", ""); v != "" {
		c.BackendHost = v
	}
	if v := getEnv("BACKEND_PORT", ""); v != "" {
		c.BackendPort = v
	}
	if v := getEnv("TERMINAL_ID", ""); v != "" {
		c.TerminalID = v
	}
	if v := getEnv("API_KEY", ""); v != "" {
		c.APIKey = v
	}
	if v := getEnv("LISTEN_PORT", ""); v != "" {
		c.ListenPort = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("SPI_DEVICE", ""); v != "" {
		c.SPIDevice = v
	}
	if v := getEnv("PIN_RESET", ""); v != "" {
		c.PinReset = v
	}
	if v := getEnv("PIN_IRQ", ""); v != "" {
		c.PinIRQ = v
	}
	if v := getEnv("POLL_INTERVAL_MS", ""); v != "" {
		c.PollInterval = time.Duration(mustParseInt(v)) * time.Millisecond
	}
	if v := getEnv("SCAN_COOLDOWN_MS", ""); v != "" {
		c.ScanCooldown = time.Duration(mustParseInt(v)) * time.Millisecond
	}
	if v := getEnv("BUZZER_PIN", ""); v != "" {
		c.BuzzerPin = v
	}
	if v := getEnv("BUZZER_ENABLED", ""); v != "" {
		c.BuzzerEnabled = v == "true"
	}
	if v := getEnv("ADMIN_BADGE", ""); v != "" {
		c.AdminBadge = v
	}
	if v := getEnv("ADMIN_PIN_HASH", ""); v != "" {
		c.AdminPINHash = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("LANGUAGE", ""); v != "" {
		c.Language = v
	}
	if v := getEnv("DEMO_MODE", ""); v != "" {
		c.DemoMode = v == "true"
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("GIN_LOG_PATH", ""); v != "" {
		c.GinLogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}
