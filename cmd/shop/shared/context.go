// Package shared holds the context passed to all CLI commands.
package shared

import (
	"errors"
	"os"

	"github.com/go-ports/shopctl/internal/config"
	"github.com/go-ports/shopctl/internal/env"
	"github.com/go-ports/shopctl/internal/history"
	"github.com/go-ports/shopctl/internal/models"
	"github.com/go-ports/shopctl/internal/setup"
)

// DefaultRegion is used for new accounts when neither --region nor
// AWS_REGION is given.
const DefaultRegion = "us-east-1"

// Context carries global CLI state. Settings is filled by the root command
// before any sub-command runs.
type Context struct {
	Settings *config.Settings
}

// Region returns AWS_REGION, or DefaultRegion when unset.
func Region() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	return DefaultRegion
}

// OpenRoot opens the configured shop root.
func (c *Context) OpenRoot() (*env.Root, error) {
	var path string
	if c.Settings != nil {
		path = c.Settings.Root
	}
	root, err := env.OpenRoot(path)
	if errors.Is(err, env.ErrRootNotSet) {
		return nil, (&models.Error{Kind: env.ErrRootNotSet}).WithHint(
			"Pass --root, set SHOP_ROOT, or run `shop config set-root <path>`")
	}
	return root, err
}

// LoadEnv opens the root and loads its stores.
func (c *Context) LoadEnv() (*env.Env, error) {
	root, err := c.OpenRoot()
	if err != nil {
		return nil, err
	}
	return env.Load(root)
}

// OpenHistory opens the switch journal of root. The caller closes it.
func (c *Context) OpenHistory(root *env.Root) (*history.DB, error) {
	return history.Open(root.HistoryPath())
}

// AgentConfigPath returns override when set, else the agent's default MCP
// config path.
//
//revive:disable:flag-parameter
func AgentConfigPath(agent setup.Agent, override string, project bool) (string, error) {
	if override != "" {
		return override, nil
	}
	return setup.DefaultConfigPath(agent, project)
}

//revive:enable:flag-parameter
