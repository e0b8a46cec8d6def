package main

import (
	"context"

	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/urfave/cli/v2"
)

var (
	accountCmd = cli.Command{
		Name:  "account",
		Usage: "resolve, show and refresh smart accounts",
		Subcommands: []*cli.Command{
			accountResolveCmd, accountShowCmd, accountRefreshCmd, accountListCmd,
		},
	}

	accountResolveCmd = &cli.Command{
		Name:  "resolve",
		Usage: "resolve the smart account of a user from the account directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "the id of the user",
			},
		},
		Action: accountResolveAction,
	}
	accountShowCmd = &cli.Command{
		Name:  "show",
		Usage: "show the stored state of a smart account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "the address of the smart account",
			},
		},
		Action: accountShowAction,
	}
	accountRefreshCmd = &cli.Command{
		Name:  "refresh",
		Usage: "update balance and deployment status of a smart account from the chain",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "the address of the smart account",
			},
		},
		Action: accountRefreshAction,
	}
	accountListCmd = &cli.Command{
		Name:  "list",
		Usage: "list the smart accounts resolved for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "the id of the user",
			},
		},
		Action: accountListAction,
	}
)

func accountResolveAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "user"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		account, err := app.AccountService().Resolve(c, ctx.String("user"))
		if err != nil {
			return err
		}
		printRespJSON(account)
		return nil
	})
}

func accountShowAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "address"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		account, err := app.AccountService().Get(c, ctx.String("address"))
		if err != nil {
			return err
		}
		printRespJSON(account)
		return nil
	})
}

func accountRefreshAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "address"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		account, err := app.AccountService().Refresh(c, ctx.String("address"))
		if err != nil {
			return err
		}
		printRespJSON(account)
		return nil
	})
}

func accountListAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "user"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		accounts, err := app.AccountService().ListByOwner(c, ctx.String("user"))
		if err != nil {
			return err
		}
		printRespJSON(accounts)
		return nil
	})
}
