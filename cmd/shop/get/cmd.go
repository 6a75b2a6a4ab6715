// Package getcmd implements the `shop get` command group.
package getcmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/go-ports/shopctl/cmd/shop/shared"
	"github.com/go-ports/shopctl/internal/atomicfile"
	"github.com/go-ports/shopctl/internal/models"
	"github.com/go-ports/shopctl/internal/render"
)

// Command implements `shop get`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the get command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "get",
		Short: "Display the current context or one of its values",
	}
	c.cmd.AddCommand(
		c.newContext(),
		c.newAccount(),
		c.newCluster(),
		c.newNamespace(),
		c.newHistory(),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// ---------------------------------------------------------------------------
// get context
// ---------------------------------------------------------------------------

func (c *Command) newContext() *cobra.Command {
	var output, query string
	cmd := &cobra.Command{
		Use:     "context",
		Aliases: []string{"c"},
		Short:   "Show the current context",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.ctx.LoadEnv()
			if err != nil {
				return err
			}
			ctx, err := e.Context()
			if err != nil {
				return err
			}
			if output == "" && query == "" {
				return e.WriteContextInfo(cmd.OutOrStdout(), ctx)
			}
			return render.Write(cmd.OutOrStdout(), render.NewView(e.Shop(), ctx), output, query)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, yaml or json")
	cmd.Flags().StringVar(&query, "query", "", "JSONPath expression selecting one value, e.g. $.account.awsProfile")
	return cmd
}

// ---------------------------------------------------------------------------
// get account / cluster / namespace
// ---------------------------------------------------------------------------

func (c *Command) newAccount() *cobra.Command {
	var profile bool
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Print the current account name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printField(cmd, func(ctx models.EnvContext) string {
				if ctx.Account == nil {
					return ""
				}
				if profile {
					return ctx.Account.User.AWSProfile
				}
				return ctx.Account.Name
			})
		},
	}
	cmd.Flags().BoolVar(&profile, "profile", false, "Print the account's AWS profile instead of its name")
	return cmd
}

func (c *Command) newCluster() *cobra.Command {
	return &cobra.Command{
		Use:   "cluster",
		Short: "Print the current cluster name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printField(cmd, func(ctx models.EnvContext) string {
				if ctx.Cluster == nil {
					return ""
				}
				return ctx.Cluster.Name
			})
		},
	}
}

func (c *Command) newNamespace() *cobra.Command {
	return &cobra.Command{
		Use:     "namespace",
		Aliases: []string{"ns", "n"},
		Short:   "Print the current namespace",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.printField(cmd, func(ctx models.EnvContext) string { return ctx.Namespace })
		},
	}
}

// printField prints one value of the current context. Nothing is printed
// when the value is unset.
func (c *Command) printField(cmd *cobra.Command, field func(models.EnvContext) string) error {
	e, err := c.ctx.LoadEnv()
	if err != nil {
		return err
	}
	ctx, err := e.Context()
	if err != nil {
		return err
	}
	if v := field(ctx); v != "" {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}

// ---------------------------------------------------------------------------
// get history
// ---------------------------------------------------------------------------

func (c *Command) newHistory() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent context switches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := c.ctx.OpenRoot()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			journaled, err := atomicfile.Exists(root.HistoryPath())
			if err != nil {
				return err
			}
			if !journaled {
				fmt.Fprintln(out, "No context switches recorded.")
				return nil
			}
			hist, err := c.ctx.OpenHistory(root)
			if err != nil {
				return err
			}
			defer hist.Close()

			entries, err := hist.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No context switches recorded.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tOP\tFROM\tTO")
			for _, en := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					en.At.Local().Format("2006-01-02 15:04:05"), en.Op, en.From, en.To)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of entries (0 for all)")
	return cmd
}
