package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/wallet/internal/config"
	"github.com/mtlprog/wallet/internal/database"
	"github.com/mtlprog/wallet/internal/domain"
	"github.com/mtlprog/wallet/internal/ledger"
	"github.com/mtlprog/wallet/internal/pricefeed"
	"github.com/mtlprog/wallet/internal/wallet"
)

// session is everything one command needs, built from config and global flags.
type session struct {
	cfg    config.Config
	user   domain.Identity
	assets *domain.AssetRegistry
	wallet *wallet.Wallet
	pool   *pgxpool.Pool
}

func (s *session) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// setup builds the wallet. With withDB the quote archive is opened when
// DATABASE_URL is set; requireDB makes a missing DATABASE_URL an error.
func setup(c *cli.Context, cfg config.Config, withDB, requireDB bool) (*session, error) {
	assets, err := domain.LoadAssets(cfg.AssetsFile)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		user:   domain.Identity(c.String("user")),
		assets: assets,
	}

	if requireDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if withDB && cfg.DatabaseURL != "" {
		s.pool, err = database.Open(c.Context, cfg.DatabaseURL, migrations())
		if err != nil {
			return nil, err
		}
	}

	client := ledger.NewClient(c.String("ledger-url"))

	opts := wallet.Options{
		Assets:                assets,
		DefaultRecipient:      domain.Identity(cfg.DefaultRecipient),
		RetainPricesOnFailure: cfg.PriceRetainOnFailure,
		PriceInterval:         cfg.PricePollInterval,
		Notifier:              stderrNotifier(c.App.ErrWriter),
	}
	if cfg.PriceSource == config.PriceSourceCoinGecko {
		opts.PriceSource = pricefeed.NewCoinGeckoClient(cfg.CoinGeckoURL, assets.PriceFeedIDs())
	}
	if s.pool != nil {
		opts.PriceArchive = pricefeed.NewPgQuoteRepository(s.pool)
	}

	s.wallet = wallet.New(c.Context, client, opts)
	slog.Debug("wallet ready", "ledger", client.BaseURL(), "user", s.user, "price_source", cfg.PriceSource)
	return s, nil
}

// load selects the command's identity and waits for its account data.
func (s *session) load() {
	s.wallet.SelectIdentity(s.user).Wait()
}

// loadWithPrices also polls prices once so balances can be valued.
func (s *session) loadWithPrices(ctx context.Context) {
	pending := s.wallet.SelectIdentity(s.user)
	s.wallet.RefreshPrices(ctx)
	pending.Wait()
}

func stderrNotifier(w io.Writer) wallet.Notifier {
	return wallet.NotifierFunc(func(message string) {
		fmt.Fprintln(w, "alert:", message)
	})
}
