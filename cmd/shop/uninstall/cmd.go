// Package uninstallcmd implements the `shop uninstall` command group.
package uninstallcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/shopctl/cmd/shop/shared"
	"github.com/go-ports/shopctl/internal/setup"
)

// Command implements `shop uninstall`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the uninstall command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the shop MCP server from a coding agent",
		RunE:  func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	for _, agent := range setup.Agents {
		c.cmd.AddCommand(newAgent(agent))
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func newAgent(agent setup.Agent) *cobra.Command {
	var configPath string
	var project bool
	cmd := &cobra.Command{
		Use:   string(agent),
		Short: fmt.Sprintf("Remove the shop MCP server from %s", agent),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := shared.AgentConfigPath(agent, configPath, project)
			if err != nil {
				return err
			}
			res, err := setup.Uninstall(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to the agent's MCP config file")
	cmd.Flags().BoolVar(&project, "project", false, "Uninstall from the current project instead of globally")
	return cmd
}
