// Package configurecmd implements the `shop configure` command group.
package configurecmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ports/shopctl/cmd/shop/shared"
)

// Command implements `shop configure`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the configure command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "configure",
		Short: "Map shop accounts and clusters to local credentials",
	}
	c.cmd.AddCommand(
		newAccount(ctx),
		newCluster(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func newAccount(ctx *shared.Context) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "account <name>",
		Short: "Set the AWS profile used for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if profile == "" {
				return errors.New("--profile is required (or set AWS_PROFILE)")
			}
			e, err := ctx.LoadEnv()
			if err != nil {
				return err
			}
			acc, err := e.ConfigureAccount(args[0], profile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configured account %s: profile %s\n", args[0], acc.User.AWSProfile)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", os.Getenv("AWS_PROFILE"),
		"AWS profile for the account, typically from ~/.aws/config ($AWS_PROFILE)")
	return cmd
}

func newCluster(ctx *shared.Context) *cobra.Command {
	var kubeCtx string
	cmd := &cobra.Command{
		Use:   "cluster <name> [account]",
		Short: "Set the kube context used for a cluster (default account: the current one)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if kubeCtx == "" {
				return errors.New("--ctx is required (or set KUBE_CTX)")
			}
			e, err := ctx.LoadEnv()
			if err != nil {
				return err
			}
			var account string
			if len(args) == 2 {
				account = args[1]
			}
			cl, err := e.ConfigureCluster(account, args[0], kubeCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configured cluster %s: context %s\n", args[0], cl.User.KubeContext)
			return nil
		},
	}
	cmd.Flags().StringVar(&kubeCtx, "ctx", os.Getenv("KUBE_CTX"),
		"Kube context for the cluster, typically from ~/.kube/config ($KUBE_CTX)")
	return cmd
}
