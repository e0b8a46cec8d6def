package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/config"
	"github.com/tdex-network/aawalletd/internal/core/application"
	"github.com/urfave/cli/v2"
)

const envPrefix = "AAWALLET_"

var (
	datadirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "the data directory of the wallet, the daemon must not be running on it",
	}
	dbTypeFlag = &cli.StringFlag{
		Name:  "db-type",
		Usage: "the database type, either badger or inmemory",
	}
	chainIDFlag = &cli.Int64Flag{
		Name:  "chain-id",
		Usage: "the id of the chain smart accounts live on",
	}
	providersFileFlag = &cli.StringFlag{
		Name:  "providers-file",
		Usage: "the file listing the known bundlers and paymasters",
	}
	accountsFileFlag = &cli.StringFlag{
		Name:  "accounts-file",
		Usage: "the file mapping user ids to smart account addresses",
	}
	chainRPCFlag = &cli.StringFlag{
		Name:  "chain-rpc-url",
		Usage: "the url of the node used to read account state",
	}

	// flagKeys maps global flags to the config keys they override.
	flagKeys = map[string]string{
		datadirFlag.Name:       config.DatadirKey,
		dbTypeFlag.Name:        config.DBTypeKey,
		chainIDFlag.Name:       config.ChainIDKey,
		providersFileFlag.Name: config.ProvidersFileKey,
		accountsFileFlag.Name:  config.AccountsFileKey,
		chainRPCFlag.Name:      config.ChainRPCURLKey,
	}
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "aawallet"
	app.Usage = "Command line interface for smart wallet operators"
	app.Flags = []cli.Flag{
		datadirFlag, dbTypeFlag, chainIDFlag, providersFileFlag,
		accountsFileFlag, chainRPCFlag,
	}
	app.Before = initConfig
	app.Commands = append(
		app.Commands,
		&accountCmd,
		&sessionCmd,
		&recoveryCmd,
		&providersCmd,
		&txCmd,
		&webhookCmd,
	)
	return app
}

// initConfig loads the config from the environment, global flags take
// precedence over the environment variables.
func initConfig(ctx *cli.Context) error {
	for flag, key := range flagKeys {
		if ctx.IsSet(flag) {
			if err := os.Setenv(envPrefix+key, ctx.String(flag)); err != nil {
				return err
			}
		}
	}
	if err := config.InitConfig(); err != nil {
		return err
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	return nil
}

// withApp runs fn against the services of the core opened on the local
// datadir.
func withApp(
	ctx *cli.Context,
	fn func(context.Context, *application.Config) error,
) error {
	appConfig, _, cleanup, err := config.GetApplicationConfig(ctx.Context)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx.Context, appConfig)
}

func printRespJSON(resp interface{}) {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(buf))
}

// requireFlags returns an invalidUsageError if any of the given flags is
// missing.
func requireFlags(ctx *cli.Context, names ...string) error {
	missing := make([]string, 0)
	for _, name := range names {
		if !ctx.IsSet(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return &invalidUsageError{
			ctx:     ctx,
			command: ctx.Command.Name,
			missing: strings.Join(missing, ", "),
		}
	}
	return nil
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
	missing string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf(
		"invalid usage of command %s: missing %s", e.command, e.missing,
	)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_, _ = fmt.Fprintf(os.Stderr, "[aawallet] %v\n", err)
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(
			os.Stderr, "[aawallet] %s error: %v\n", application.KindOf(err), err,
		)
	}
	os.Exit(1)
}
