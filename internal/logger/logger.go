// Package logger builds the zerolog logger the command-line tools share.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/p7r0x7/hashclash/internal/config"
	"github.com/rs/zerolog"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Options configures the logger.
type Options struct {
	Level     string // trace, debug, info, warn, error; anything else means info
	Format    string // "console" or "json"
	Component string
	NoColor   bool
	Writer    io.Writer // defaults to os.Stderr
}

// FromEnv fills Options from HASHCLASH_LOG_LEVEL and HASHCLASH_LOG_FORMAT.
func FromEnv(c config.Conf) Options {
	c = c.Prefix("LOG_")
	return Options{
		Level:  strings.ToLower(c.MayString("LEVEL", "info")),
		Format: strings.ToLower(c.MayString("FORMAT", "console")),
	}
}

// New returns a logger configured by opt.
func New(opt Options) zerolog.Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: opt.NoColor, TimeFormat: time.Kitchen}
	}

	ctx := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp()
	if opt.Component != "" {
		ctx = ctx.Str("component", opt.Component)
	}
	return ctx.Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
