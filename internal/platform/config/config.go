// Package config reads prefixed settings from the environment layered over an
// optional YAML file (see config/raw)
package config

import (
	"strconv"
	"strings"
	"time"

	"genscan/internal/platform/config/raw"
	"genscan/internal/platform/logger"
)

// Conf is a prefixed view such as GENSCAN_DETECT_
type Conf struct{ prefix string }

// New returns a root Conf
func New() Conf { return Conf{} }

// Prefix returns a child view, e.g. cfg.Prefix("GENSCAN_API_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

// LoadFromEnv layers the YAML file named by GENSCAN_CONFIG_FILE under the environment
func LoadFromEnv() error { return raw.LoadFromEnv() }

// MustString panics when key is unset
func (c Conf) MustString(key string) string {
	v := raw.Lookup(c.key(key))
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required setting")
	}
	return v
}

// MayString returns def when key is unset
func (c Conf) MayString(key, def string) string {
	if v := raw.Lookup(c.key(key)); v != "" {
		return v
	}
	return def
}

// MayInt returns def when key is unset or not an integer
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayInt64 is MayInt for byte and pixel counts
func (c Conf) MayInt64(key string, def int64) int64 {
	return may(c, key, def, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

// MayBool returns def when key is unset or not a bool
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration returns def when key is unset or not a Go duration such as 750ms
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blanks; def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(raw.Lookup(c.key(key)), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// may parses a set value, warning and falling back to def when it does not parse
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := raw.Lookup(c.key(key))
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).Msg("unparsable setting, using default")
		return def
	}
	return v
}
