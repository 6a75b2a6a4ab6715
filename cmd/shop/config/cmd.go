// Package configcmd implements the `shop config` command group.
package configcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/shopctl/cmd/shop/shared"
	"github.com/go-ports/shopctl/internal/config"
	"github.com/go-ports/shopctl/internal/env"
)

// Command implements `shop config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show settings or manage the persisted shop root",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(
		newSetRoot(),
		newClearRoot(),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	s := c.ctx.Settings
	data := map[string]any{
		"root":        s.Root,
		"root_source": s.RootSource,
		"log_level":   s.LogLevel.String(),
	}
	if root, err := env.OpenRoot(s.Root); err == nil {
		id, found, err := root.ShopIdentity()
		if err != nil {
			return err
		}
		if found {
			data["shop"] = map[string]any{"name": id.Name, "domain": id.Domain}
		}
		data["config_dir"] = root.ConfigDir()
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

// ---------------------------------------------------------------------------
// config set-root
// ---------------------------------------------------------------------------

func newSetRoot() *cobra.Command {
	return &cobra.Command{
		Use:   "set-root <path>",
		Short: "Persist the shop root (used when --root and SHOP_ROOT are unset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.SetPersistedRoot(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Persisted shop root: %s\n", resolved)
			fmt.Fprintln(out, "Override anytime with --root or SHOP_ROOT.")
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config clear-root
// ---------------------------------------------------------------------------

func newClearRoot() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-root",
		Short: "Remove the persisted shop root from the global config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed, err := config.ClearPersistedRoot()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if changed {
				fmt.Fprintln(out, "Cleared persisted shop root.")
			} else {
				fmt.Fprintln(out, "No persisted shop root was found.")
			}
			return nil
		},
	}
}
