package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/wallet/internal/api"
	"github.com/mtlprog/wallet/internal/config"
	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/export"
	"github.com/mtlprog/wallet/internal/pricefeed"
	"github.com/mtlprog/wallet/internal/viewstate"
)

// errAlerted ends a command whose failure was already shown by the notifier.
var errAlerted = cli.Exit("", 1)

func serveCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the view state over HTTP and WebSocket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "HTTP port", Value: cfg.HTTPPort},
		},
		Action: func(c *cli.Context) error {
			s, err := setup(c, cfg, true, false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.wallet.SelectIdentity(s.user)
			prices := s.wallet.StartPrices()
			defer prices.Stop()

			port := c.String("port")
			srv := api.NewServer(port, s.wallet)

			serveErr := make(chan error, 1)
			go func() {
				log.Printf("HTTP server listening on :%s", port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			select {
			case <-c.Context.Done():
			case err := <-serveErr:
				return fmt.Errorf("HTTP server: %w", err)
			}
			log.Println("Shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("HTTP server shutdown error: %v", err)
			}

			log.Println("Shutdown complete")
			return nil
		},
	}
}

func balanceCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "balance",
		Usage: "show balances with USD values",
		Action: func(c *cli.Context) error {
			s, err := setup(c, cfg, false, false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.loadWithPrices(c.Context)
			st := s.wallet.State()
			if st.Balance == nil {
				return fmt.Errorf("balance for %s is unavailable", s.user)
			}
			printBalances(c.App.Writer, st, s.assets)
			return nil
		},
	}
}

func historyCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "show the transaction and intent logs",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "mine", Usage: "only entries involving the selected user"},
		},
		Action: func(c *cli.Context) error {
			s, err := setup(c, cfg, false, false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.load()
			st := s.wallet.State()
			tables := export.Tables(st, s.assets, export.Options{OnlyIdentity: c.Bool("mine")})
			printTable(c.App.Writer, tables[1])
			fmt.Fprintln(c.App.Writer)
			printTable(c.App.Writer, tables[2])
			return nil
		},
	}
}

func sendCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "transfer tokens to another user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "recipient", Value: cfg.DefaultRecipient},
			&cli.StringFlag{Name: "token", Usage: "asset symbol", Value: "ETH"},
			&cli.StringFlag{Name: "amount", Usage: "amount to send", Required: true},
		},
		Action: func(c *cli.Context) error {
			s, err := setup(c, cfg, false, false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.load()
			s.wallet.UpdateTransferDraft(viewstate.TransferDraft{
				To:     domain.Identity(c.String("to")),
				Token:  c.String("token"),
				Amount: c.String("amount"),
			})
			tx, err := s.wallet.SubmitTransfer(c.Context)
			if err != nil {
				return errAlerted
			}

			fmt.Fprintf(c.App.Writer, "sent %g %s from %s to %s\n", tx.Amount, tx.Token, tx.From, tx.To)
			printBalances(c.App.Writer, s.wallet.State(), s.assets)
			return nil
		},
	}
}

func intentCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "intent",
		Usage: "create a swap intent",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "amount", Usage: "amount of the source asset", Required: true},
			&cli.StringFlag{Name: "from", Usage: "asset to give", Value: "ETH"},
			&cli.StringFlag{Name: "to", Usage: "asset to receive", Value: "XAN"},
		},
		Action: func(c *cli.Context) error {
			s, err := setup(c, cfg, false, false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.load()
			s.wallet.UpdateIntentDraft(viewstate.IntentDraft{
				Amount:    c.String("amount"),
				FromAsset: c.String("from"),
				ToAsset:   c.String("to"),
			})
			intent, err := s.wallet.SubmitIntent(c.Context)
			if err != nil {
				return errAlerted
			}

			fmt.Fprintf(c.App.Writer, "intent recorded: %s %g %s for %s by %s\n",
				intent.Action, intent.Amount, intent.FromAsset, intent.ToAsset, intent.Maker)
			return nil
		},
	}
}

func faucetCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "faucet",
		Usage: "request test funds",
		Action: func(c *cli.Context) error {
			s, err := setup(c, cfg, false, false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.load()
			if err := s.wallet.RequestFaucet(c.Context); err != nil {
				return errAlerted
			}
			printBalances(c.App.Writer, s.wallet.State(), s.assets)
			return nil
		},
	}
}

func pricesCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "prices",
		Usage: "show current USD prices, or archived quotes for one feed",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history", Usage: "price-feed id to list archived quotes for"},
			&cli.IntFlag{Name: "limit", Usage: "number of archived quotes", Value: 20},
		},
		Action: func(c *cli.Context) error {
			feedID := c.String("history")
			s, err := setup(c, cfg, feedID != "", feedID != "")
			if err != nil {
				return err
			}
			defer s.Close()

			if feedID != "" {
				quotes, err := pricefeed.NewPgQuoteRepository(s.pool).History(c.Context, feedID, c.Int("limit"))
				if err != nil {
					return err
				}
				printQuotes(c.App.Writer, quotes)
				return nil
			}

			s.wallet.RefreshPrices(c.Context)
			q := s.wallet.State().Prices
			if q.Empty() {
				return fmt.Errorf("prices are unavailable")
			}
			printPrices(c.App.Writer, q, s.assets)
			return nil
		},
	}
}

func exportCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export balances and history to a spreadsheet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "xlsx", Usage: "write an .xlsx workbook to this path"},
			&cli.BoolFlag{Name: "sheet", Usage: "write to the Google spreadsheet GOOGLE_SHEETS_ID"},
			&cli.BoolFlag{Name: "mine", Usage: "only entries involving the selected user"},
		},
		Action: func(c *cli.Context) error {
			writers, err := exportWriters(c, cfg)
			if err != nil {
				return err
			}

			s, err := setup(c, cfg, false, false)
			if err != nil {
				return err
			}
			defer s.Close()

			s.loadWithPrices(c.Context)
			tables := export.Tables(s.wallet.State(), s.assets, export.Options{OnlyIdentity: c.Bool("mine")})
			for _, w := range writers {
				if err := w.Write(c.Context, tables); err != nil {
					return err
				}
			}
			fmt.Fprintf(c.App.Writer, "exported %d sheets\n", len(tables))
			return nil
		},
	}
}

func exportWriters(c *cli.Context, cfg config.Config) ([]export.Writer, error) {
	var writers []export.Writer
	if path := c.String("xlsx"); path != "" {
		writers = append(writers, export.NewXLSXWriter(path))
	}
	if c.Bool("sheet") {
		if cfg.SheetsSpreadsheetID == "" || cfg.GoogleCredentialsJSON == "" {
			return nil, fmt.Errorf("GOOGLE_SHEETS_ID and GOOGLE_CREDENTIALS_JSON are required for --sheet")
		}
		sw, err := export.NewSheetsWriter(c.Context, cfg.SheetsSpreadsheetID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, err
		}
		writers = append(writers, sw)
	}
	if len(writers) == 0 {
		return nil, fmt.Errorf("one of --xlsx or --sheet is required")
	}
	return writers, nil
}
