package main

import (
	"context"
	"fmt"

	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/urfave/cli/v2"
)

var (
	webhookCmd = cli.Command{
		Name:  "webhook",
		Usage: "add, remove or list webhooks",
		Subcommands: []*cli.Command{
			webhookAddCmd, webhookRemoveCmd, webhookListCmd,
		},
	}

	webhookAddCmd = &cli.Command{
		Name:  "add",
		Usage: "add a (secured) webhook endpoint called whenever a target event occurs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "the webhook endpoint to be called whenever the target event occurs",
			},
			&cli.StringFlag{
				Name: "secret",
				Usage: "the eventual secret to use to generate an OAuth token for " +
					"authenticating requests to the webhook endpoint",
			},
			&cli.StringFlag{
				Name: "event",
				Usage: "the event for which the webhook gets notified, ie. " +
					"SESSION_KEY_CREATED, RECOVERY_EXECUTED, OPERATION_FAILED or * for any event",
			},
		},
		Action: webhookAddAction,
	}
	webhookRemoveCmd = &cli.Command{
		Name:  "remove",
		Usage: "remove a webhook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "the id of the webhook to remove",
			},
		},
		Action: webhookRemoveAction,
	}
	webhookListCmd = &cli.Command{
		Name:  "list",
		Usage: "list all webhooks, optionally filtered by target event",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "event",
				Usage: "the target event",
			},
		},
		Action: webhookListAction,
	}
)

func webhookAddAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "endpoint", "event"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		id, err := app.PubSubService().AddWebhook(
			c, ctx.String("event"), ctx.String("endpoint"), ctx.String("secret"),
		)
		if err != nil {
			return err
		}
		fmt.Println("hook id:", id)
		return nil
	})
}

func webhookRemoveAction(ctx *cli.Context) error {
	if err := requireFlags(ctx, "id"); err != nil {
		return err
	}
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		if err := app.PubSubService().RemoveWebhook(c, ctx.String("id")); err != nil {
			return err
		}
		fmt.Println("webhook removed")
		return nil
	})
}

func webhookListAction(ctx *cli.Context) error {
	return withApp(ctx, func(c context.Context, app *application.Config) error {
		hooks, err := app.PubSubService().ListWebhooks(c, ctx.String("event"))
		if err != nil {
			return err
		}

		list := make([]map[string]interface{}, 0, len(hooks))
		for _, h := range hooks {
			list = append(list, map[string]interface{}{
				"id":         h.Id(),
				"event":      h.Topic(),
				"endpoint":   h.NotifyAt(),
				"is_secured": h.IsSecured(),
			})
		}
		printRespJSON(list)
		return nil
	})
}
