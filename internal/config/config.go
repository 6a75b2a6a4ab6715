// Package config resolves process settings: the shop root directory and the
// log level.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/shopctl/internal/atomicfile"
)

// EnvPrefix prefixes environment overrides, e.g. SHOP_ROOT.
const EnvPrefix = "SHOP"

// Setting keys. They double as flag names.
const (
	KeyRoot     = "root"
	KeyLogLevel = "log-level"
)

// Root sources.
const (
	SourceFlag   = "flag"
	SourceEnv    = "env"
	SourceConfig = "config"
	SourceUnset  = "unset"
)

// Settings is built once at startup and passed to commands.
type Settings struct {
	Root       string
	RootSource string
	LogLevel   slog.Level
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// Load merges flags, SHOP_* environment variables and the persisted global
// config, in that order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyLogLevel, "info")

	if flags != nil {
		for _, key := range []string{KeyRoot, KeyLogLevel} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config.Load: bind %s: %w", key, err)
				}
			}
		}
	}

	cfgPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}
	persisted, err := atomicfile.Exists(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if persisted {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", cfgPath, err)
		}
	}

	level, err := ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}

	s := &Settings{LogLevel: level, RootSource: rootSource(flags, v)}
	if raw := strings.TrimSpace(v.GetString(KeyRoot)); raw != "" {
		root, err := normalizePath(raw)
		if err != nil {
			return nil, fmt.Errorf("config.Load: root: %w", err)
		}
		s.Root = root
	}
	return s, nil
}

func rootSource(flags *pflag.FlagSet, v *viper.Viper) string {
	if flags != nil && flags.Changed(KeyRoot) {
		return SourceFlag
	}
	if os.Getenv(EnvPrefix+"_ROOT") != "" {
		return SourceEnv
	}
	if v.InConfig(KeyRoot) && v.GetString(KeyRoot) != "" {
		return SourceConfig
	}
	return SourceUnset
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config.ParseLevel: %w", err)
	}
	return level, nil
}

// NewLogger returns a text logger writing to w at the configured level.
func (s *Settings) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: s.LogLevel}))
}

// ---------------------------------------------------------------------------
// Persisted root
// ---------------------------------------------------------------------------

// globalConfigPath returns the per-user settings file.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home dir: %w", err)
	}
	return filepath.Join(home, ".config", "shopctl", "config.yaml"), nil
}

// normalizePath expands ~ and makes the path absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

func readGlobal(cfgPath string) (map[string]any, error) {
	data, err := os.ReadFile(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: %s: %w", cfgPath, err)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	return raw, nil
}

// SetPersistedRoot normalizes path and stores it in the global config,
// preserving other keys. Returns the normalized path.
func SetPersistedRoot(path string) (string, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}
	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", err
	}
	raw, err := readGlobal(cfgPath)
	if err != nil {
		return "", err
	}
	raw[KeyRoot] = normalized

	out, err := yaml.Marshal(raw)
	if err != nil {
		return "", err
	}
	if err := atomicfile.Write(cfgPath, out); err != nil {
		return "", err
	}
	return normalized, nil
}

// ClearPersistedRoot removes the root from the global config. It reports
// whether a value was removed. An emptied file is deleted.
func ClearPersistedRoot() (bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return false, err
	}
	raw, err := readGlobal(cfgPath)
	if err != nil {
		return false, err
	}
	if _, ok := raw[KeyRoot]; !ok {
		return false, nil
	}
	delete(raw, KeyRoot)

	if len(raw) == 0 {
		if err := os.Remove(cfgPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return true, err
		}
		return true, nil
	}
	out, err := yaml.Marshal(raw)
	if err != nil {
		return false, err
	}
	return true, atomicfile.Write(cfgPath, out)
}
