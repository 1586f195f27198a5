package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// ChainIDKey is the EIP-155 chain id transactions are signed for
	ChainIDKey = "CHAIN_ID"
	// ExplorerURLKey is the endpoint of the block-explorer API
	ExplorerURLKey = "EXPLORER_URL"
	// ExplorerAPIKeyKey is the API key sent along with explorer requests, if any
	ExplorerAPIKeyKey = "EXPLORER_API_KEY"
	// PriceURLKey is the endpoint of the fiat price-index API
	PriceURLKey = "PRICE_URL"
	// GasURLKey is the endpoint of the gas-estimation API
	GasURLKey = "GAS_URL"
	// GasAPIKeyKey is the API key sent along with gas oracle requests, if any
	GasAPIKeyKey = "GAS_API_KEY"
	// AmountDebounceIntervalKey is the quiet period in milliseconds before an
	// edited amount is converted at spot price
	AmountDebounceIntervalKey = "AMOUNT_DEBOUNCE_INTERVAL"
	// CrawlIntervalKey is the interval in milliseconds between two polls of
	// the providers for balance and price updates
	CrawlIntervalKey = "CRAWL_INTERVAL"
	// PriceStreamKey enables streaming spot prices over websocket instead of
	// relying only on the polled price index
	PriceStreamKey = "PRICE_STREAM"
	// PriceStreamTickerKey is the exchange ticker streamed when the price
	// stream is enabled
	PriceStreamTickerKey = "PRICE_STREAM_TICKER"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval in seconds for printing basic memory statistics
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation       = "db"
	ProfilerLocation = "stats"

	// DBBadger and DBInMemory are the supported DB_TYPE values
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("etherdeck-daemon", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("ETHERDECK")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(ChainIDKey, 1)
	vip.SetDefault(ExplorerURLKey, "https://api.etherscan.io")
	vip.SetDefault(PriceURLKey, "https://api.coingecko.com/api/v3")
	vip.SetDefault(GasURLKey, "https://api.etherscan.io")
	vip.SetDefault(AmountDebounceIntervalKey, 500)
	vip.SetDefault(CrawlIntervalKey, 60000)
	vip.SetDefault(PriceStreamKey, false)
	vip.SetDefault(PriceStreamTickerKey, "ETH-USD")
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDbDir returns the db directory, or the empty string for the in-memory
// backend so that storage is not persisted to disk.
func GetDbDir() string {
	if GetString(DBTypeKey) == DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBBadger && dbType != DBInMemory {
		return fmt.Errorf(
			"%s must be either %s or %s", DBTypeKey, DBBadger, DBInMemory,
		)
	}

	if GetInt(ChainIDKey) <= 0 {
		return fmt.Errorf("%s must be a positive integer", ChainIDKey)
	}

	for _, key := range []string{ExplorerURLKey, PriceURLKey, GasURLKey} {
		if len(GetString(key)) <= 0 {
			return fmt.Errorf("missing %s", key)
		}
	}

	for _, key := range []string{AmountDebounceIntervalKey, CrawlIntervalKey} {
		if GetInt(key) <= 0 {
			return fmt.Errorf("%s must be a positive number of milliseconds", key)
		}
	}

	return nil
}

func initDatadir() error {
	if err := makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation)); err != nil {
		return err
	}

	if GetBool(EnableProfilerKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(GetDatadir(), ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
