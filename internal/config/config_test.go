package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spf13/pflag"

	"github.com/go-ports/shopctl/internal/config"
)

// isolate points HOME at a temp dir and clears SHOP_* overrides.
func isolate(c *qt.C) string {
	home := c.TempDir()
	c.Setenv("HOME", home)
	c.Setenv("SHOP_ROOT", "")
	c.Setenv("SHOP_LOG_LEVEL", "")
	return home
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("shop", pflag.ContinueOnError)
	fs.String(config.KeyRoot, "", "")
	fs.String(config.KeyLogLevel, "info", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	c := qt.New(t)
	isolate(c)

	s, err := config.Load(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Root, qt.Equals, "")
	c.Assert(s.RootSource, qt.Equals, config.SourceUnset)
	c.Assert(s.LogLevel, qt.Equals, slog.LevelInfo)
}

func TestLoad_RootPrecedence(t *testing.T) {
	c := qt.New(t)

	c.Run("persisted config", func(c *qt.C) {
		isolate(c)
		dir := c.TempDir()
		_, err := config.SetPersistedRoot(dir)
		c.Assert(err, qt.IsNil)

		s, err := config.Load(newFlags())
		c.Assert(err, qt.IsNil)
		c.Assert(s.Root, qt.Equals, dir)
		c.Assert(s.RootSource, qt.Equals, config.SourceConfig)
	})

	c.Run("env beats persisted config", func(c *qt.C) {
		isolate(c)
		_, err := config.SetPersistedRoot(c.TempDir())
		c.Assert(err, qt.IsNil)
		envDir := c.TempDir()
		c.Setenv("SHOP_ROOT", envDir)

		s, err := config.Load(newFlags())
		c.Assert(err, qt.IsNil)
		c.Assert(s.Root, qt.Equals, envDir)
		c.Assert(s.RootSource, qt.Equals, config.SourceEnv)
	})

	c.Run("flag beats env", func(c *qt.C) {
		isolate(c)
		c.Setenv("SHOP_ROOT", c.TempDir())
		flagDir := c.TempDir()
		fs := newFlags()
		c.Assert(fs.Parse([]string{"--root", flagDir}), qt.IsNil)

		s, err := config.Load(fs)
		c.Assert(err, qt.IsNil)
		c.Assert(s.Root, qt.Equals, flagDir)
		c.Assert(s.RootSource, qt.Equals, config.SourceFlag)
	})

	c.Run("tilde expands to home", func(c *qt.C) {
		home := isolate(c)
		c.Setenv("SHOP_ROOT", "~/shops")

		s, err := config.Load(nil)
		c.Assert(err, qt.IsNil)
		c.Assert(s.Root, qt.Equals, filepath.Join(home, "shops"))
	})
}

func TestLoad_UnreadableGlobalConfig(t *testing.T) {
	c := qt.New(t)
	home := isolate(c)

	// a file where the settings directory should be makes the stat fail
	// with something other than "not exist"
	c.Assert(os.MkdirAll(filepath.Join(home, ".config"), 0o755), qt.IsNil)
	c.Assert(os.WriteFile(filepath.Join(home, ".config", "shopctl"), []byte("x"), 0o600), qt.IsNil)

	_, err := config.Load(newFlags())
	c.Assert(err, qt.ErrorMatches, "config.Load: .*")
}

func TestLoad_LogLevel(t *testing.T) {
	c := qt.New(t)

	c.Run("env", func(c *qt.C) {
		isolate(c)
		c.Setenv("SHOP_LOG_LEVEL", "debug")
		s, err := config.Load(newFlags())
		c.Assert(err, qt.IsNil)
		c.Assert(s.LogLevel, qt.Equals, slog.LevelDebug)
	})

	c.Run("flag", func(c *qt.C) {
		isolate(c)
		fs := newFlags()
		c.Assert(fs.Parse([]string{"--log-level", "warn"}), qt.IsNil)
		s, err := config.Load(fs)
		c.Assert(err, qt.IsNil)
		c.Assert(s.LogLevel, qt.Equals, slog.LevelWarn)
	})

	c.Run("invalid", func(c *qt.C) {
		isolate(c)
		c.Setenv("SHOP_LOG_LEVEL", "loud")
		_, err := config.Load(nil)
		c.Assert(err, qt.ErrorMatches, "config.ParseLevel: .*")
	})
}

func TestSettings_NewLogger(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	log := (&config.Settings{LogLevel: slog.LevelWarn}).NewLogger(&buf)
	log.Info("hidden")
	log.Warn("shown", "account", "prod")
	c.Assert(buf.String(), qt.Contains, "msg=shown account=prod")
	c.Assert(buf.String(), qt.Not(qt.Contains), "hidden")
}

func TestPersistedRoot_PreservesOtherKeys(t *testing.T) {
	c := qt.New(t)
	home := isolate(c)

	cfgPath := filepath.Join(home, ".config", "shopctl", "config.yaml")
	c.Assert(os.MkdirAll(filepath.Dir(cfgPath), 0o755), qt.IsNil)
	c.Assert(os.WriteFile(cfgPath, []byte("log-level: debug\n"), 0o600), qt.IsNil)

	dir := c.TempDir()
	got, err := config.SetPersistedRoot(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, dir)

	s, err := config.Load(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Root, qt.Equals, dir)
	c.Assert(s.LogLevel, qt.Equals, slog.LevelDebug)

	removed, err := config.ClearPersistedRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(removed, qt.IsTrue)

	data, err := os.ReadFile(cfgPath)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "log-level: debug\n")
}

func TestClearPersistedRoot(t *testing.T) {
	c := qt.New(t)
	home := isolate(c)

	removed, err := config.ClearPersistedRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(removed, qt.IsFalse)

	_, err = config.SetPersistedRoot(c.TempDir())
	c.Assert(err, qt.IsNil)

	removed, err = config.ClearPersistedRoot()
	c.Assert(err, qt.IsNil)
	c.Assert(removed, qt.IsTrue)

	_, err = os.Stat(filepath.Join(home, ".config", "shopctl", "config.yaml"))
	c.Assert(os.IsNotExist(err), qt.IsTrue)
}
