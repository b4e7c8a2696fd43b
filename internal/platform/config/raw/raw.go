// Package raw is the lookup layer under platform/config: process environment
// over an optional flattened YAML file. It must not import the logger, which
// reads its own settings through here
package raw

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	perr "genscan/internal/platform/errors"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnv names the env var pointing at the optional YAML file
const FileEnv = "GENSCAN_CONFIG_FILE"

var layer atomic.Pointer[map[string]string]

// LoadFromEnv loads the file named by GENSCAN_CONFIG_FILE, a no-op when unset
func LoadFromEnv() error {
	path := strings.TrimSpace(os.Getenv(FileEnv))
	if path == "" {
		return nil
	}
	return LoadFile(path)
}

// LoadFile replaces the file layer. Nested keys flatten to env names, so
// genscan.api.port answers GENSCAN_API_PORT
func LoadFile(path string) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "load config file %s", path)
	}
	vals := make(map[string]string, len(k.Keys()))
	for key, v := range k.All() {
		vals[strings.ToUpper(strings.ReplaceAll(key, ".", "_"))] = scalar(v)
	}
	layer.Store(&vals)
	return nil
}

// Reset drops the file layer
func Reset() { layer.Store(nil) }

// Lookup returns the trimmed env value, then the file value, then ""
func Lookup(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if m := layer.Load(); m != nil {
		return strings.TrimSpace((*m)[key])
	}
	return ""
}

// scalar renders yaml values the way an env var would carry them; lists join with commas
func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = scalar(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(x)
	}
}

// Conf is a prefixed view with silent defaults, for bootstrap code that runs before logging
type Conf struct{ prefix string }

// New returns a root Conf
func New() Conf { return Conf{} }

// Prefix returns a child view, e.g. Prefix("LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Get returns the value or def when unset
func (c Conf) Get(key, def string) string {
	if v := Lookup(c.prefix + key); v != "" {
		return v
	}
	return def
}

// GetBool returns def when unset or unparsable
func (c Conf) GetBool(key string, def bool) bool {
	b, err := strconv.ParseBool(Lookup(c.prefix + key))
	if err != nil {
		return def
	}
	return b
}
