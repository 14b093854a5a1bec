package config

import (
	"time"
)

const (
	defaultSessionTTL    = 7 * 24 * time.Hour
	defaultHistoryWindow = 24 * time.Hour
)

// Server holds server configuration. Fields are unexported to prevent modification.
type Server struct {
	port           string
	databaseURL    string
	dbMaxOpenConns int
	redisAddr      string
	redisPassword  string
	sessionTTL     time.Duration
	historyWindow  time.Duration
	logFile        string
	metricsEnabled bool
}

func NewServer() *Server {
	v := newEnv(map[string]any{
		"port":              "3000",
		"db_max_open_conns": 20,
		"session_ttl":       defaultSessionTTL.String(),
		"history_window":    defaultHistoryWindow.String(),
		"log_file":          "server.log",
		"metrics_enabled":   true,
	})
	port := v.GetString("port")
	if port == "" {
		port = "3000"
	}
	return &Server{
		port:           port,
		databaseURL:    v.GetString("database_url"),
		dbMaxOpenConns: positiveInt(v, "db_max_open_conns", 20),
		redisAddr:      v.GetString("redis_addr"),
		redisPassword:  v.GetString("redis_password"),
		sessionTTL:     positiveDuration(v, "session_ttl", defaultSessionTTL),
		historyWindow:  positiveDuration(v, "history_window", defaultHistoryWindow),
		logFile:        v.GetString("log_file"),
		metricsEnabled: v.GetBool("metrics_enabled"),
	}
}

func (c *Server) Addr() string {
	return ":" + c.port
}

// DatabaseURL is empty when the server should run on the in-memory store.
func (c *Server) DatabaseURL() string {
	return c.databaseURL
}

func (c *Server) DBMaxOpenConns() int {
	return c.dbMaxOpenConns
}

// RedisAddr is empty when sessions should be kept in process memory.
func (c *Server) RedisAddr() string {
	return c.redisAddr
}

func (c *Server) RedisPassword() string {
	return c.redisPassword
}

func (c *Server) SessionTTL() time.Duration {
	return c.sessionTTL
}

func (c *Server) HistoryWindow() time.Duration {
	return c.historyWindow
}

func (c *Server) LogFile() string {
	return c.logFile
}

func (c *Server) MetricsEnabled() bool {
	return c.metricsEnabled
}
