package main

import (
	"context"

	"github.com/tdex-network/aawalletd/internal/config"
	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/urfave/cli/v2"
)

var providersCmd = cli.Command{
	Name:  "providers",
	Usage: "list the bundlers and paymasters known to the registry",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "kind",
			Usage: "bundler or paymaster, if set only the matching providers for the configured chain are listed in order of preference",
		},
		&cli.StringFlag{
			Name:  "sponsorship",
			Usage: "only list paymasters with this sponsorship mode (none, full, partial, erc20)",
		},
		&cli.StringFlag{
			Name:  "min-reliability",
			Usage: "only list providers at least this reliable (high, medium, low)",
		},
	},
	Action: providersAction,
}

func providersAction(ctx *cli.Context) error {
	return withApp(ctx, func(_ context.Context, app *application.Config) error {
		registry := app.RegistryService()
		if !ctx.IsSet("kind") {
			printRespJSON(registry.List())
			return nil
		}

		printRespJSON(registry.Select(application.ProviderFilter{
			Kind:           domain.ProviderKind(ctx.String("kind")),
			ChainID:        config.GetInt64(config.ChainIDKey),
			Sponsorship:    domain.Sponsorship(ctx.String("sponsorship")),
			MinReliability: domain.Reliability(ctx.String("min-reliability")),
		}))
		return nil
	})
}
