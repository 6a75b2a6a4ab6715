// Package rootcmd wires the root cobra.Command for the shop CLI binary.
package rootcmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	addcmd "github.com/go-ports/shopctl/cmd/shop/add"
	configcmd "github.com/go-ports/shopctl/cmd/shop/config"
	configurecmd "github.com/go-ports/shopctl/cmd/shop/configure"
	getcmd "github.com/go-ports/shopctl/cmd/shop/get"
	mcpcmd "github.com/go-ports/shopctl/cmd/shop/mcp"
	setupcmd "github.com/go-ports/shopctl/cmd/shop/setup"
	"github.com/go-ports/shopctl/cmd/shop/shared"
	switchcmd "github.com/go-ports/shopctl/cmd/shop/switch"
	uninstallcmd "github.com/go-ports/shopctl/cmd/shop/uninstall"
	versioncmd "github.com/go-ports/shopctl/cmd/shop/version"
	"github.com/go-ports/shopctl/internal/config"
)

// New creates and returns the root cobra.Command for the shop CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "shop",
		Short:         "Manage shop accounts, clusters and the current context",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			ctx.Settings = settings
			slog.SetDefault(settings.NewLogger(cmd.ErrOrStderr()))
			slog.Debug("settings loaded", "root", settings.Root, "source", settings.RootSource)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.String(config.KeyRoot, "",
		"Shop root directory (default: $SHOP_ROOT env → persisted config)")
	pf.String(config.KeyLogLevel, "info", "Log level: debug, info, warn, error ($SHOP_LOG_LEVEL)")

	root.AddCommand(
		addcmd.New(ctx).Cmd(),
		configurecmd.New(ctx).Cmd(),
		switchcmd.New(ctx).Cmd(),
		getcmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
		setupcmd.New(ctx).Cmd(),
		uninstallcmd.New(ctx).Cmd(),
		versioncmd.New(ctx).Cmd(),
	)

	return root
}
