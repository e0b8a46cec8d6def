package main

import (
	"context"

	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/urfave/cli/v2"
)

var (
	recoveryCmd = cli.Command{
		Name:  "recovery",
		Usage: "initiate, approve and execute guardian recovery requests",
		Subcommands: []*cli.Command{
			recoveryInitiateCmd, recoveryApproveCmd, recoveryExecuteCmd,
			recoveryCancelCmd, recoveryStatusCmd, recoveryListCmd,
		},
	}

	recoveryIDFlag = &cli.StringFlag{
		Name:  "id",
		Usage: "the id of the recovery request",
	}

	recoveryInitiateCmd = &cli.Command{
		Name:  "initiate",
		Usage: "open a recovery request for an account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "the address of the smart account to recover",
			},
			&cli.StringSliceFlag{
				Name:  "guardian",
				Usage: "the address of a guardian, can be repeated",
			},
			&cli.IntFlag{
				Name:  "threshold",
				Usage: "the number of approvals required",
			},
		},
		Action: recoveryInitiateAction,
	}
	recoveryApproveCmd = &cli.Command{
		Name:  "approve",
		Usage: "approve a recovery request on behalf of a guardian",
		Flags: []cli.Flag{
			recoveryIDFlag,
			&cli.StringFlag{
				Name:  "guardian",
				Usage: "the address of the approving guardian",
			},
		},
		Action: recoveryApproveAction,
	}
	recoveryExecuteCmd = &cli.Command{
		Name:   "execute",
		Usage:  "execute an approved recovery request once its delay elapsed",
		Flags:  []cli.Flag{recoveryIDFlag},
		Action: recoveryExecuteAction,
	}
	recoveryCancelCmd = &cli.Command{
		Name:  "cancel",
		Usage: "cancel a pending or approved recovery request",
		Flags: []cli.Flag{
			recoveryIDFlag,
			&cli.StringFlag{
				Name:  "reason",
				Usage: "why the request is cancelled",
			},
		},
		Action: recoveryCancelAction,
	}
	recoveryStatusCmd = &cli.Command{
		Name:   "status",
		Usage:  "show a recovery request",
		Flags:  []cli.Flag{recoveryIDFlag},
		Action: recoveryStatusAction,
	}
	recoveryListCmd = &cli.Command{
		Name:  "list",
		Usage: "list the recovery requests of an account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "the address of the smart account",
			},
		},
		Action: recoveryListAction,
	}
)

func recoveryInitiateAction(ctx *cli.Context) error {
	args := application.InitiateRecoveryArgs{
		AccountAddress: ctx.String("account"),
		Guardians:      ctx.StringSlice("guardian"),
	}
	if ctx.IsSet("threshold") {
		threshold := ctx.Int("threshold")
		args.Threshold = &threshold
	}

	return printRecovery(ctx, func(
		c context.Context, svc application.RecoveryService,
	) (*domain.RecoveryRequest, error) {
		return svc.Initiate(c, args)
	})
}

func recoveryApproveAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "id", "guardian"); err != nil {
		return err
	}
	return printRecovery(ctx, func(
		c context.Context, svc application.RecoveryService,
	) (*domain.RecoveryRequest, error) {
		return svc.Approve(c, ctx.String("id"), ctx.String("guardian"))
	})
}

func recoveryExecuteAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "id"); err != nil {
		return err
	}
	return printRecovery(ctx, func(
		c context.Context, svc application.RecoveryService,
	) (*domain.RecoveryRequest, error) {
		return svc.Execute(c, ctx.String("id"))
	})
}

func recoveryCancelAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "id"); err != nil {
		return err
	}
	return printRecovery(ctx, func(
		c context.Context, svc application.RecoveryService,
	) (*domain.RecoveryRequest, error) {
		return svc.Cancel(c, ctx.String("id"), ctx.String("reason"))
	})
}

func recoveryStatusAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "id"); err != nil {
		return err
	}
	return printRecovery(ctx, func(
		c context.Context, svc application.RecoveryService,
	) (*domain.RecoveryRequest, error) {
		return svc.Status(c, ctx.String("id"))
	})
}

func recoveryListAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "account"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		requests, err := app.RecoveryService().ListForAccount(
			c, ctx.String("account"),
		)
		if err != nil {
			return err
		}
		printRespJSON(requests)
		return nil
	})
}

func printRecovery(
	ctx *cli.Context,
	fn func(context.Context, application.RecoveryService) (*domain.RecoveryRequest, error),
) error {
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		req, err := fn(c, app.RecoveryService())
		if req != nil {
			printRespJSON(req)
		}
		return err
	})
}
