package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/wallet/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	if err := newApp(cfg).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(cfg config.Config) *cli.App {
	return &cli.App{
		Name:  "wallet",
		Usage: "view and move balances on an intent ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ledger-url",
				Usage: "ledger API base URL",
				Value: cfg.LedgerURL,
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "identity to act as",
				Value:   cfg.DefaultIdentity,
			},
		},
		Commands: []*cli.Command{
			serveCommand(cfg),
			balanceCommand(cfg),
			historyCommand(cfg),
			sendCommand(cfg),
			intentCommand(cfg),
			faucetCommand(cfg),
			pricesCommand(cfg),
			exportCommand(cfg),
		},
	}
}

func migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		log.Fatalf("Failed to create migrations sub-fs: %v", err)
	}
	return sub
}
