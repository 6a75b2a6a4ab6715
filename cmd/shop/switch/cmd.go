// Package switchcmd implements the `shop switch` command group.
package switchcmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/go-ports/shopctl/cmd/shop/shared"
	"github.com/go-ports/shopctl/internal/env"
	"github.com/go-ports/shopctl/internal/history"
	"github.com/go-ports/shopctl/internal/models"
)

// Command implements `shop switch`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the switch command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "switch",
		Short: "Switch the current account, cluster or namespace",
	}
	c.cmd.AddCommand(
		c.newField("account", nil, "Switch the current account", (*env.Env).SwitchAccount),
		c.newField("cluster", nil, "Switch the current cluster", (*env.Env).SwitchCluster),
		c.newField("namespace", []string{"ns", "n"}, "Switch the current namespace", (*env.Env).SwitchNamespace),
		c.newBack(),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) newField(field string, aliases []string, short string,
	fn func(*env.Env, string) (models.EnvContext, error),
) *cobra.Command {
	return &cobra.Command{
		Use:     field + " <name>",
		Aliases: aliases,
		Short:   short,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, field, func(e *env.Env) (models.EnvContext, error) {
				return fn(e, args[0])
			})
		},
	}
}

func (c *Command) newBack() *cobra.Command {
	return &cobra.Command{
		Use:     "back",
		Aliases: []string{"prev"},
		Short:   "Switch back to the context before the last switch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var prev models.ContextPointer
			return c.run(cmd, "back", func(e *env.Env) (models.EnvContext, error) {
				return e.SwitchTo(prev)
			}, func(hist *history.DB) error {
				p, err := hist.Previous(cmd.Context())
				if errors.Is(err, history.ErrEmpty) {
					return (&models.Error{Kind: history.ErrEmpty}).WithHint("Use `shop switch account <name>` first")
				}
				prev = p
				return err
			})
		},
	}
}

// run loads the env, performs the switch under the journal and prints the
// resulting context to stderr. prepare hooks run against the open journal
// before the switch.
func (c *Command) run(cmd *cobra.Command, op string, fn func(*env.Env) (models.EnvContext, error),
	prepare ...func(*history.DB) error,
) error {
	e, err := c.ctx.LoadEnv()
	if err != nil {
		return err
	}
	hist, err := c.ctx.OpenHistory(e.Root())
	if err != nil {
		return err
	}
	defer hist.Close()

	for _, p := range prepare {
		if err := p(hist); err != nil {
			return err
		}
	}

	if _, err := hist.Track(cmd.Context(), op, e, func() (models.EnvContext, error) { return fn(e) }); err != nil {
		return err
	}
	ctx, err := e.Context()
	if err != nil {
		return err
	}
	return e.WriteContextInfo(cmd.ErrOrStderr(), ctx)
}
