package middleware

import (
	"context"
	"time"

	"github.com/medatechnology/goutil/simplelog"

	"github.com/haruteam/dermai"
)

// LogEntry represents a log entry for AI requests
type LogEntry struct {
	Timestamp    time.Time
	Model        string
	Duration     time.Duration
	InputTokens  int
	OutputTokens int
	Error        error
}

// Logger is a function that receives log entries
type Logger func(entry LogEntry)

// Logging creates a logging middleware
func Logging(logger Logger) dermai.Middleware {
	return dermai.MiddlewareFunc(func(next dermai.Handler) dermai.Handler {
		return func(ctx context.Context, req *dermai.Request) (*dermai.Response, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			entry := LogEntry{
				Timestamp: start,
				Model:     req.Model,
				Duration:  time.Since(start),
				Error:     err,
			}

			if resp != nil {
				entry.InputTokens = resp.Usage.PromptTokens
				entry.OutputTokens = resp.Usage.CompletionTokens
			}

			if logger != nil {
				logger(entry)
			}

			return resp, err
		}
	})
}

// SimpleLogger creates a logging middleware with a simple log function
func SimpleLogger(logFn func(msg string)) dermai.Middleware {
	return Logging(func(entry LogEntry) {
		if entry.Error != nil {
			logFn("AI request failed: " + entry.Error.Error())
		} else {
			logFn("AI request completed in " + entry.Duration.String())
		}
	})
}

// GoutilLogger creates a logging middleware using goutil/simplelog
func GoutilLogger(debugLevel int) dermai.Middleware {
	return Logging(func(entry LogEntry) {
		if entry.Error != nil {
			simplelog.LogErr(entry.Error, "AI request failed")
		} else {
			simplelog.LogInfoStr("DermAI", debugLevel,
				"Request completed in "+entry.Duration.String(),
			)
		}
	})
}
