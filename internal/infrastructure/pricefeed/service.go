// Package pricefeed implements the fiat price-index provider on top of a
// coingecko-compatible REST API.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/httputil"
)

type priceService struct {
	apiURL string
}

// NewService returns a new price-index service as a ports.PriceService
// interface
func NewService(apiURL string) ports.PriceService {
	return &priceService{apiURL}
}

func (p *priceService) GetEthPrice(ctx context.Context) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/simple/price?ids=ethereum&vs_currencies=usd", p.apiURL)
	status, resp, err := httputil.NewHTTPRequest("GET", url, "", nil)
	if err != nil {
		return decimal.Zero, err
	}
	if status != http.StatusOK {
		return decimal.Zero, fmt.Errorf(resp)
	}

	var payload map[string]map[string]json.Number
	if err := json.Unmarshal([]byte(resp), &payload); err != nil {
		return decimal.Zero, err
	}
	price, ok := payload["ethereum"]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("malformed price response")
	}

	return decimal.NewFromString(price.String())
}

func (p *priceService) GetEthPriceAt(
	ctx context.Context, date time.Time,
) (decimal.Decimal, error) {
	url := fmt.Sprintf(
		"%s/coins/ethereum/history?date=%s",
		p.apiURL, date.Format("02-01-2006"),
	)
	status, resp, err := httputil.NewHTTPRequest("GET", url, "", nil)
	if err != nil {
		return decimal.Zero, err
	}
	if status != http.StatusOK {
		return decimal.Zero, fmt.Errorf(resp)
	}

	var payload struct {
		MarketData struct {
			CurrentPrice map[string]json.Number `json:"current_price"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal([]byte(resp), &payload); err != nil {
		return decimal.Zero, err
	}
	price, ok := payload.MarketData.CurrentPrice["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("malformed historical price response")
	}

	return decimal.NewFromString(price.String())
}
