package main

import (
	"context"

	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/urfave/cli/v2"
)

var (
	txCmd = cli.Command{
		Name:  "tx",
		Usage: "estimate, send and track user operations",
		Subcommands: []*cli.Command{
			txEstimateCmd, txSendCmd, txStatusCmd, txRetryCmd, txListCmd, txSyncCmd,
		},
	}

	txCallFlags = []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the address of the sending smart account",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "the address of the called contract",
		},
		&cli.StringFlag{
			Name:  "value",
			Usage: "the value to transfer, in wei",
			Value: "0",
		},
		&cli.StringFlag{
			Name:  "data",
			Usage: "the hex encoded calldata",
		},
		&cli.StringFlag{
			Name:  "bundler",
			Usage: "the id of the bundler, defaults to the registry choice",
		},
		&cli.StringFlag{
			Name:  "paymaster",
			Usage: "the id of the paymaster, defaults to the registry choice",
		},
	}

	txEstimateCmd = &cli.Command{
		Name:   "estimate",
		Usage:  "estimate the gas of a call",
		Flags:  txCallFlags,
		Action: txEstimateAction,
	}
	txSendCmd = &cli.Command{
		Name:  "send",
		Usage: "relay a call, optionally authorized by a session key",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "session",
				Usage: "the id of the session key authorizing the call",
			},
			&cli.StringFlag{
				Name:  "function",
				Usage: "label of the called function, the calldata selector or a signature hashing to it",
			},
		}, txCallFlags...),
		Action: txSendAction,
	}
	txStatusCmd = &cli.Command{
		Name:  "status",
		Usage: "show the status of an operation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "hash",
				Usage: "the hash of the operation",
			},
		},
		Action: txStatusAction,
	}
	txRetryCmd = &cli.Command{
		Name:  "retry",
		Usage: "resubmit a failed operation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "hash",
				Usage: "the hash of the failed operation",
			},
			&cli.StringFlag{
				Name:  "bundler",
				Usage: "the id of the bundler, defaults to the one of the failed operation",
			},
			&cli.StringFlag{
				Name:  "paymaster",
				Usage: "the id of the paymaster, defaults to the one of the failed operation",
			},
		},
		Action: txRetryAction,
	}
	txListCmd = &cli.Command{
		Name:  "list",
		Usage: "list the operations of an account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "account",
				Usage: "the address of the smart account",
			},
		},
		Action: txListAction,
	}
	txSyncCmd = &cli.Command{
		Name:   "sync",
		Usage:  "poll the bundlers for the receipts of pending operations",
		Action: txSyncAction,
	}
)

func txEstimateAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "account", "to"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		estimate, err := app.RelayService().EstimateGas(c, application.EstimateArgs{
			AccountAddress: ctx.String("account"),
			To:             ctx.String("to"),
			Value:          ctx.String("value"),
			Data:           ctx.String("data"),
			BundlerID:      ctx.String("bundler"),
			PaymasterID:    ctx.String("paymaster"),
		})
		if err != nil {
			return err
		}
		printRespJSON(map[string]interface{}{
			"gas_limit":                estimate.GasLimit,
			"pre_verification_gas":     estimate.PreVerificationGas,
			"verification_gas_limit":   estimate.VerificationGasLimit,
			"call_gas_limit":           estimate.CallGasLimit,
			"max_fee_per_gas":          estimate.MaxFeePerGas.String(),
			"max_priority_fee_per_gas": estimate.MaxPriorityFeePerGas.String(),
			"max_cost":                 estimate.MaxCost().String(),
		})
		return nil
	})
}

func txSendAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "account", "to"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		op, err := app.RelayService().Send(c, application.SendArgs{
			AccountAddress: ctx.String("account"),
			To:             ctx.String("to"),
			Value:          ctx.String("value"),
			Data:           ctx.String("data"),
			SessionID:      ctx.String("session"),
			Function:       ctx.String("function"),
			BundlerID:      ctx.String("bundler"),
			PaymasterID:    ctx.String("paymaster"),
		})
		// a failed operation is stored and returned along with the error.
		if op != nil {
			printRespJSON(op)
		}
		return err
	})
}

func txStatusAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "hash"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		op, err := app.RelayService().GetStatus(c, ctx.String("hash"))
		if err != nil {
			return err
		}
		printRespJSON(op)
		return nil
	})
}

func txRetryAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "hash"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		op, err := app.RelayService().Retry(c, application.RetryArgs{
			Hash:        ctx.String("hash"),
			BundlerID:   ctx.String("bundler"),
			PaymasterID: ctx.String("paymaster"),
		})
		if op != nil {
			printRespJSON(op)
		}
		return err
	})
}

func txListAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "account"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		ops, err := app.RelayService().ListOperations(c, ctx.String("account"))
		if err != nil {
			return err
		}
		printRespJSON(ops)
		return nil
	})
}

func txSyncAction(ctx *cli.Context) error {
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		settled, err := app.RelayService().SyncPending(c)
		if err != nil {
			return err
		}
		printRespJSON(map[string]int{"settled": settled})
		return nil
	})
}
