// Package addcmd implements the `shop add` command group.
package addcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/shopctl/cmd/shop/shared"
	"github.com/go-ports/shopctl/internal/env"
)

// RootAccount is the account (and cluster) every new shop starts with.
const RootAccount = "root"

// Command implements `shop add`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the add command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "add",
		Short: "Add a shop, account or cluster to the shop config",
	}
	c.cmd.AddCommand(
		newShop(ctx),
		newAccount(ctx),
		newCluster(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// ---------------------------------------------------------------------------
// add shop
// ---------------------------------------------------------------------------

func newShop(ctx *shared.Context) *cobra.Command {
	var domain, region string
	cmd := &cobra.Command{
		Use:   "shop <name>",
		Short: "Create the shop config with a root account and cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.OpenRoot()
			if err != nil {
				return err
			}
			name := args[0]
			created, err := root.EnsureShop(name, domain)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !created {
				fmt.Fprintf(out, "Shop %s (%s) already exists\n", name, domain)
				return nil
			}

			e, err := env.Load(root)
			if err != nil {
				return err
			}
			if _, err := e.AddAccount(RootAccount, region); err != nil {
				return err
			}
			if _, err := e.AddCluster(RootAccount, RootAccount); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created shop %s (%s) in %s\n", name, domain, root.ConfigDir())
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Base DNS domain of the shop, e.g. acme.io (required)")
	cmd.Flags().StringVar(&region, "region", shared.Region(), "AWS region of the root account ($AWS_REGION)")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

// ---------------------------------------------------------------------------
// add account
// ---------------------------------------------------------------------------

func newAccount(ctx *shared.Context) *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "account <name>",
		Short: "Add an account and a cluster of the same name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := ctx.LoadEnv()
			if err != nil {
				return err
			}
			name := args[0]
			acc, err := e.AddAccount(name, region)
			if err != nil {
				return err
			}
			if _, err := e.AddCluster(name, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %s (%s, %s)\n", name, acc.BootstrapName, acc.BootstrapRegion)
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", shared.Region(), "AWS region of the account ($AWS_REGION)")
	return cmd
}

// ---------------------------------------------------------------------------
// add cluster
// ---------------------------------------------------------------------------

func newCluster(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "cluster <name> [account]",
		Short: "Add a cluster to an account (default: the current account)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := ctx.LoadEnv()
			if err != nil {
				return err
			}
			var account string
			if len(args) == 2 {
				account = args[1]
			}
			cl, err := e.AddCluster(account, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added cluster %s (%s)\n", args[0], cl.Domain)
			return nil
		},
	}
}
