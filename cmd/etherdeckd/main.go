package main

import (
	"context"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/etherdeck-network/etherdeck-daemon/internal/config"
	"github.com/etherdeck-network/etherdeck-daemon/internal/core/application"
	"github.com/etherdeck-network/etherdeck-daemon/internal/infrastructure/gasoracle"
	"github.com/etherdeck-network/etherdeck-daemon/internal/infrastructure/pricefeed"
	dbbadger "github.com/etherdeck-network/etherdeck-daemon/internal/infrastructure/storage/db/badger"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/crawler"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer/etherscan"
	coinbasefeeder "github.com/etherdeck-network/etherdeck-daemon/pkg/pricefeeder/coinbase"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	repoManager, err := dbbadger.NewRepoManager(config.GetDbDir(), nil)
	if err != nil {
		log.WithError(err).Fatal("error while opening storage")
	}
	defer repoManager.Close()

	explorerSvc, err := etherscan.NewService(
		config.GetString(config.ExplorerURLKey),
		config.GetString(config.ExplorerAPIKeyKey),
	)
	if err != nil {
		log.WithError(err).Fatal("error while connecting to explorer")
	}
	priceSvc := pricefeed.NewService(config.GetString(config.PriceURLKey))
	gasSvc := gasoracle.NewService(
		config.GetString(config.GasURLKey),
		config.GetString(config.GasAPIKeyKey),
	)

	debounceInterval := time.Duration(
		config.GetInt(config.AmountDebounceIntervalKey),
	) * time.Millisecond

	crawlerSvc := crawler.NewService(crawler.Opts{
		ExplorerSvc:            explorerSvc,
		PriceSource:            priceSvc,
		IntervalInMilliseconds: config.GetInt(config.CrawlIntervalKey),
		ErrorHandler: func(err error) {
			log.WithError(err).Warn("observation failed")
		},
	})

	services := application.NewServices(
		repoManager, explorerSvc, priceSvc, gasSvc, crawlerSvc,
		big.NewInt(int64(config.GetInt(config.ChainIDKey))),
		debounceInterval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.GetBool(config.EnableProfilerKey) {
		statsInterval := time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
		stats.EnableMemoryStatistics(
			ctx, statsInterval,
			filepath.Join(config.GetDatadir(), config.ProfilerLocation, "stats"),
		)
	}

	// reopen the wallet that was active at last shutdown, if any
	keystore, err := repoManager.KeystoreRepository().GetCurrentKeystore(ctx)
	if err != nil {
		log.WithError(err).Fatal("error while reading storage")
	}
	if keystore != nil {
		if err := services.Keystore.LoadWallet(ctx, keystore.EncryptedVault); err != nil {
			log.WithError(err).Warn("could not reopen wallet, continuing locked")
		} else {
			log.Info("wallet reopened")
			if _, err := services.Account.ListAddresses(ctx); err != nil {
				log.WithError(err).Warn("could not load addresses, awaiting observations")
			}
		}
	}

	go crawlerSvc.Start()
	defer crawlerSvc.Stop()

	crawlerSvc.AddObservable(&crawler.PriceObservable{})
	if keystore != nil {
		for _, addr := range keystore.Addresses {
			crawlerSvc.AddObservable(&crawler.AddressObservable{Address: addr})
		}
	}

	go func() {
		for event := range crawlerSvc.GetEventChannel() {
			switch e := event.(type) {
			case crawler.PriceEvent:
				if _, err := services.Account.SyncPrice(ctx); err != nil &&
					err != application.ErrWalletNotInitialized {
					log.WithError(err).Warn("price sync failed")
				}
			case crawler.AddressEvent:
				if services.Account.ApplyBalance(e.Address, e.Balance) == nil {
					log.WithField("address", e.Address).
						Debug("balance observation dropped, address not loaded")
				}
			case crawler.QuitEvent:
				return
			}
		}
	}()

	if config.GetBool(config.PriceStreamKey) {
		feederSvc, err := coinbasefeeder.NewService()
		if err != nil {
			log.WithError(err).Warn("could not start price stream, relying on polled prices")
		} else {
			ticker := config.GetString(config.PriceStreamTickerKey)
			if err := feederSvc.SubscribeTickers([]string{ticker}); err != nil {
				log.WithError(err).Warn("could not subscribe to price stream")
			}
			feedCh := feederSvc.Start()
			defer feederSvc.Stop()

			go func() {
				for feed := range feedCh {
					services.Account.ApplySpotPrice(feed.Price)
				}
			}()
		}
	}

	log.Info("daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("exiting")
}
