package common

import (
	"fmt"
	"strings"
	"time"
)

// Version is the feedbridge release version, reported by the version
// command and the health endpoint.
const Version = "0.3.1"

// --------------------------------------------------------------------------
// Bridge Configuration
// --------------------------------------------------------------------------

// TimeoutConfig holds the per-request-kind reply timeouts. Slower operations
// get more time because the extension needs longer before replying.
type TimeoutConfig struct {
	Refresh  time.Duration // full unread snapshot refresh
	Item     time.Duration // single item fetch
	MarkRead time.Duration // mark-as-read confirmation
	Folder   time.Duration // folder listing
}

// BridgeConfig holds all configuration parameters for the bridge process.
type BridgeConfig struct {
	// HTTP API settings
	Endpoint  string
	StaticDir string

	// Framed channel settings
	MaxFrameBytes uint32

	// Per-kind reply timeouts
	Timeouts TimeoutConfig

	// Logging configuration
	LogLevel string
	LogFile  string
}

// Validate checks the configuration for values the bridge cannot run with.
func (c *BridgeConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}

	if c.MaxFrameBytes == 0 {
		return fmt.Errorf("max-frame-bytes must be greater than zero")
	}

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"timeout-refresh", c.Timeouts.Refresh},
		{"timeout-item", c.Timeouts.Item},
		{"timeout-mark-read", c.Timeouts.MarkRead},
		{"timeout-folder", c.Timeouts.Folder},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("%s must be greater than zero", t.name)
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// String returns a formatted string representation of the configuration
func (c *BridgeConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// HTTP API settings
	addSection("HTTP API")
	addField("Endpoint", c.Endpoint)
	if c.StaticDir != "" {
		addField("Static Directory", c.StaticDir)
	} else {
		addField("Static Directory", "(disabled)")
	}

	// Framed channel settings
	addSection("Framed Channel")
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.MaxFrameBytes))

	// Reply timeouts
	addSection("Reply Timeouts")
	addField("Unread Refresh", c.Timeouts.Refresh.String())
	addField("Single Item", c.Timeouts.Item.String())
	addField("Mark As Read", c.Timeouts.MarkRead.String())
	addField("Folder Listing", c.Timeouts.Folder.String())

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	if c.LogFile != "" {
		addField("Log File", c.LogFile)
	} else {
		addField("Log File", "(stderr)")
	}

	return sb.String()
}
