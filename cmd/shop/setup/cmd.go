// Package setupcmd implements the `shop setup` command group.
package setupcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/shopctl/cmd/shop/shared"
	"github.com/go-ports/shopctl/internal/setup"
)

// Command implements `shop setup`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the setup command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "setup",
		Short: "Register the shop MCP server with a coding agent",
		RunE:  func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	for _, agent := range setup.Agents {
		c.cmd.AddCommand(c.newAgent(agent))
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) newAgent(agent setup.Agent) *cobra.Command {
	var configPath string
	var project bool
	cmd := &cobra.Command{
		Use:   string(agent),
		Short: fmt.Sprintf("Install the shop MCP server into %s", agent),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := shared.AgentConfigPath(agent, configPath, project)
			if err != nil {
				return err
			}
			var root string
			if c.ctx.Settings != nil {
				root = c.ctx.Settings.Root
			}
			res, err := setup.Install(path, root)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to the agent's MCP config file")
	cmd.Flags().BoolVar(&project, "project", false, "Install in the current project instead of globally")
	return cmd
}
