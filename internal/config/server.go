package config

import (
	"fmt"
	"time"
)

// ServerConfig represents the web server's runtime parameters. Defaults
// mirror the session manager's, so an all-nil config runs the server the
// same way the manager would run itself.
type ServerConfig struct {
	// Addr is the listen address for the HTTP server.
	Addr *string `json:"addr,omitempty"`

	// SessionTTLMinutes is how long an idle session survives before the
	// janitor removes it. Negative values disable expiry entirely.
	SessionTTLMinutes *int `json:"session_ttl_minutes,omitempty"`

	// MaxSessions caps concurrently live sessions.
	MaxSessions *int `json:"max_sessions,omitempty"`

	// EnableDrilldown turns a selected quarter's chart into its month
	// breakdown instead of re-rendering the quarter bars.
	EnableDrilldown *bool `json:"enable_drilldown,omitempty"`
}

// Validate checks that the configuration values are valid.
func (c *ServerConfig) Validate() error {
	if c.Addr != nil && *c.Addr == "" {
		return fmt.Errorf("addr must not be empty when set")
	}
	if c.MaxSessions != nil && *c.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1, got %d", *c.MaxSessions)
	}
	return nil
}

// GetAddr returns the addr value or the default.
func (c *ServerConfig) GetAddr() string {
	if c.Addr == nil {
		return ":8080"
	}
	return *c.Addr
}

// GetSessionTTL returns the session TTL as a duration, or the default.
// A negative configured value comes back negative, which the session
// manager reads as "never expire".
func (c *ServerConfig) GetSessionTTL() time.Duration {
	if c.SessionTTLMinutes == nil {
		return 30 * time.Minute
	}
	return time.Duration(*c.SessionTTLMinutes) * time.Minute
}

// GetMaxSessions returns the max_sessions value or the default.
func (c *ServerConfig) GetMaxSessions() int {
	if c.MaxSessions == nil {
		return 1000
	}
	return *c.MaxSessions
}

// GetEnableDrilldown returns the enable_drilldown value or the default.
func (c *ServerConfig) GetEnableDrilldown() bool {
	if c.EnableDrilldown == nil {
		return true
	}
	return *c.EnableDrilldown
}
