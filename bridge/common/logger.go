package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboat's logger.ILogger)
// --------------------------------------------------------------------------

// logOutput is the sink shared by all package loggers. Stdout belongs to
// the frame channel, so logs default to stderr and must never go there.
var logOutput io.Writer = os.Stderr

// bridgeLogger implements the ILogger interface with custom formatting
type bridgeLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

// SetLevel sets the minimum log level
func (c *bridgeLogger) SetLevel(level logger.LogLevel) {
	c.level = level
}

// Debugf logs a debug message
func (c *bridgeLogger) Debugf(format string, args ...interface{}) {
	if c.level >= logger.DEBUG {
		c.log("DEBUG", format, args...)
	}
}

// Infof logs an info message
func (c *bridgeLogger) Infof(format string, args ...interface{}) {
	if c.level >= logger.INFO {
		c.log("INFO", format, args...)
	}
}

// Warningf logs a warning message
func (c *bridgeLogger) Warningf(format string, args ...interface{}) {
	if c.level >= logger.WARNING {
		c.log("WARN", format, args...)
	}
}

// Errorf logs an error message
func (c *bridgeLogger) Errorf(format string, args ...interface{}) {
	if c.level >= logger.ERROR {
		c.log("ERROR", format, args...)
	}
}

// Panicf logs a panic message and panics
func (c *bridgeLogger) Panicf(format string, args ...interface{}) {
	c.log("PANIC", format, args...)
	panic(fmt.Sprintf(format, args...))
}

// log formats and writes a log message with level and component name
func (c *bridgeLogger) log(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Printf("%-5s | %-15s | %s", level, c.name, msg)
}

// CreateLogger creates a new logger instance for the given package name
func CreateLogger(pkgName string) logger.ILogger {
	return &bridgeLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: log.New(logOutput, "", log.Ldate|log.Ltime),
	}
}

// parseLogLevel converts a string log level to the dragonboat LogLevel
func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG
	case "info":
		return logger.INFO
	case "warn", "warning":
		return logger.WARNING
	case "error":
		return logger.ERROR
	default:
		panic(fmt.Sprintf("invalid log level: %s", level))
	}
}

// InitLoggers sets up all package loggers with the configured log level and
// output sink. Must be called before the bridge starts processing frames.
func InitLoggers(logLevel string, output io.Writer) {
	logOutput = output
	logger.SetLoggerFactory(CreateLogger)

	level := parseLogLevel(logLevel)
	logger.GetLogger("transport").SetLevel(level)
	logger.GetLogger("correlation").SetLevel(level)
	logger.GetLogger("host").SetLevel(level)
	logger.GetLogger("api").SetLevel(level)
	logger.GetLogger("cmd").SetLevel(level)
}
