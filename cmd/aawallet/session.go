package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/urfave/cli/v2"
)

var (
	sessionCmd = cli.Command{
		Name:  "session",
		Usage: "create, list, revoke and check session keys",
		Subcommands: []*cli.Command{
			sessionCreateCmd, sessionListCmd, sessionRevokeCmd, sessionCheckCmd,
		},
	}

	sessionAccountFlag = &cli.StringFlag{
		Name:  "account",
		Usage: "the address of the smart account",
	}
	sessionIDFlag = &cli.StringFlag{
		Name:  "id",
		Usage: "the id of the session key",
	}

	sessionCreateCmd = &cli.Command{
		Name:  "create",
		Usage: "create a session key with the given permissions",
		Flags: []cli.Flag{
			sessionAccountFlag,
			&cli.StringFlag{
				Name:  "public-key",
				Usage: "the public key of the session key holder",
			},
			&cli.StringSliceFlag{
				Name: "permission",
				Usage: "a permission in the form target:function1|function2[:spending_limit], " +
					"can be repeated",
			},
			&cli.DurationFlag{
				Name:  "expires-in",
				Usage: "the lifetime of the key, defaults to the configured ttl",
			},
		},
		Action: sessionCreateAction,
	}
	sessionListCmd = &cli.Command{
		Name:   "list",
		Usage:  "list the active session keys of an account",
		Flags:  []cli.Flag{sessionAccountFlag},
		Action: sessionListAction,
	}
	sessionRevokeCmd = &cli.Command{
		Name:   "revoke",
		Usage:  "revoke a session key",
		Flags:  []cli.Flag{sessionAccountFlag, sessionIDFlag},
		Action: sessionRevokeAction,
	}
	sessionCheckCmd = &cli.Command{
		Name:  "check",
		Usage: "tell whether a session key would authorize a call, without recording any spend",
		Flags: []cli.Flag{
			sessionAccountFlag,
			sessionIDFlag,
			&cli.StringFlag{
				Name:  "target",
				Usage: "the contract to call",
			},
			&cli.StringFlag{
				Name:  "function",
				Usage: "the function name, signature or selector to call",
			},
			&cli.StringFlag{
				Name:  "amount",
				Usage: "the value moved by the call, in wei",
				Value: "0",
			},
		},
		Action: sessionCheckAction,
	}
)

func sessionCreateAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "account", "permission"); err != nil {
		return err
	}

	permissions := make([]application.PermissionArgs, 0)
	for _, p := range ctx.StringSlice("permission") {
		permission, err := parsePermission(p)
		if err != nil {
			return err
		}
		permissions = append(permissions, *permission)
	}

	return withApp(ctx, func(c context.Context, app *application.Config) error {
		args := application.CreateSessionKeyArgs{
			AccountAddress: ctx.String("account"),
			PublicKey:      ctx.String("public-key"),
			Permissions:    permissions,
		}
		if expiresIn := ctx.Duration("expires-in"); expiresIn > 0 {
			args.ExpiresAt = app.Clock.Now().Add(expiresIn)
		}

		key, err := app.SessionKeyService().Create(c, args)
		if err != nil {
			return err
		}
		printRespJSON(key)
		return nil
	})
}

func sessionListAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "account"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		keys, err := app.SessionKeyService().List(c, ctx.String("account"))
		if err != nil {
			return err
		}
		printRespJSON(keys)
		return nil
	})
}

func sessionRevokeAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "account", "id"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		if err := app.SessionKeyService().Revoke(
			c, ctx.String("account"), ctx.String("id"),
		); err != nil {
			return err
		}
		fmt.Println("session key revoked")
		return nil
	})
}

func sessionCheckAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "account", "id", "target", "function"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		if err := app.SessionKeyService().Check(
			c, ctx.String("account"), ctx.String("id"), ctx.String("target"),
			ctx.String("function"), ctx.String("amount"),
		); err != nil {
			return err
		}
		fmt.Println("allowed")
		return nil
	})
}

// parsePermission parses target:function1|function2[:spending_limit].
func parsePermission(s string) (*application.PermissionArgs, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("invalid permission %q", s)
	}

	permission := &application.PermissionArgs{
		Target:           parts[0],
		AllowedFunctions: strings.Split(parts[1], "|"),
	}
	if len(parts) == 3 {
		permission.SpendingLimit = parts[2]
	}
	return permission, nil
}
