package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stackpot/cmd"
	"stackpot/config"
	"stackpot/database"
	"stackpot/infrastructure/beacon"

	log "github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"
)

var version = "dev"

func main() {
	app := cli.App{
		Name:    "stackpot",
		Usage:   "No-loss lottery pool over liquid-stacked STX",
		Version: version,
		Action:  runAction,
		Commands: []cli.Command{
			{
				Name:   "run",
				Usage:  "Run the pool, draw keeper and rewards consumer",
				Action: runAction,
			},
			{
				Name:  "migrate",
				Usage: "Manage database migrations",
				Subcommands: []cli.Command{
					{
						Name:  "up",
						Usage: "Apply all pending migrations",
						Action: func(ctx *cli.Context) error {
							return database.MigrateUp()
						},
					},
					{
						Name:      "down",
						Usage:     "Roll back migrations",
						ArgsUsage: "[steps]",
						Action: func(ctx *cli.Context) error {
							steps := "1"
							if ctx.NArg() > 0 {
								steps = ctx.Args().First()
							}
							return database.MigrateDown(steps)
						},
					},
					{
						Name:  "status",
						Usage: "Show the current migration version",
						Action: func(ctx *cli.Context) error {
							return database.MigrateStatus()
						},
					},
				},
			},
			{
				Name:   "beacon-pubkey",
				Usage:  "Print the public key that verifies draw entropy proofs",
				Action: beaconPubKeyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(_ *cli.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}

func beaconPubKeyAction(_ *cli.Context) error {
	cfg := config.Get()
	b, err := beacon.NewVRFBeacon(cfg.VRFPrivateKey, 1, nil)
	if err != nil {
		return err
	}
	fmt.Println(b.PublicKeyHex())
	return nil
}
