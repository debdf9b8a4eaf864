// Package config reads HASHCLASH_* environment variables. Flags given on the command line take
// precedence; the environment only supplies defaults.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// EnvPrefix namespaces every variable the tool reads.
const EnvPrefix = "HASHCLASH_"

// Conf is a namespaced view over environment variables. Invalid values are reported to log and
// replaced by the caller's default.
type Conf struct {
	prefix string
	log    zerolog.Logger
}

// New returns a Conf rooted at EnvPrefix.
func New(log zerolog.Logger) Conf { return Conf{prefix: EnvPrefix, log: log} }

// Prefix returns a child Conf, e.g. c.Prefix("LOG_").
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p, log: c.log} }

// Key is the fully-qualified variable name.
func (c Conf) Key(k string) string { return c.prefix + k }

func (c Conf) get(k string) string { return strings.TrimSpace(os.Getenv(c.Key(k))) }

// MayString returns the value or def if missing/empty.
func (c Conf) MayString(key, def string) string {
	if v := c.get(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def if missing/empty; logs and returns def if invalid.
func (c Conf) MayInt(key string, def int) int {
	s := c.get(key)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	c.log.Warn().Str("key", c.Key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayUint returns the value or def if missing/empty; logs and returns def if invalid.
func (c Conf) MayUint(key string, def uint64) uint64 {
	s := c.get(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v
	}
	c.log.Warn().Str("key", c.Key(key)).Str("value", s).Uint64("default", def).Msg("invalid uint; using default")
	return def
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid.
func (c Conf) MayBool(key string, def bool) bool {
	s := c.get(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	c.log.Warn().Str("key", c.Key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}
