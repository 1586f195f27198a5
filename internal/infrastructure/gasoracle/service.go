// Package gasoracle implements the gas-estimation provider on top of an
// etherscan gas-tracker compatible REST API.
package gasoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/httputil"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/mathutil"
)

var weiPerGwei = decimal.NewFromInt(int64(mathutil.WeiPerGwei))

type gasService struct {
	apiURL string
	apiKey string
}

// NewService returns a new gas-oracle service as a ports.GasService interface
func NewService(apiURL, apiKey string) ports.GasService {
	return &gasService{apiURL: apiURL, apiKey: apiKey}
}

func (g *gasService) GetGasInfo(ctx context.Context) (ports.GasInfo, error) {
	url := fmt.Sprintf(
		"%s/api?module=gastracker&action=gasoracle", g.apiURL,
	)
	if len(g.apiKey) > 0 {
		url += "&apikey=" + g.apiKey
	}

	status, resp, err := httputil.NewHTTPRequest("GET", url, "", nil)
	if err != nil {
		return ports.GasInfo{}, err
	}
	if status != http.StatusOK {
		return ports.GasInfo{}, fmt.Errorf(resp)
	}

	var envelope struct {
		Status string `json:"status"`
		Result struct {
			SafeGasPrice    json.Number `json:"SafeGasPrice"`
			ProposeGasPrice json.Number `json:"ProposeGasPrice"`
			FastGasPrice    json.Number `json:"FastGasPrice"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(resp), &envelope); err != nil {
		return ports.GasInfo{}, err
	}
	if envelope.Status != "1" {
		return ports.GasInfo{}, fmt.Errorf("gas oracle replied with failing status")
	}

	low, err := gweiToWei(envelope.Result.SafeGasPrice)
	if err != nil {
		return ports.GasInfo{}, err
	}
	medium, err := gweiToWei(envelope.Result.ProposeGasPrice)
	if err != nil {
		return ports.GasInfo{}, err
	}
	high, err := gweiToWei(envelope.Result.FastGasPrice)
	if err != nil {
		return ports.GasInfo{}, err
	}

	return ports.GasInfo{
		LowGasPrice:    low,
		MediumGasPrice: medium,
		HighGasPrice:   high,
	}, nil
}

func gweiToWei(gwei json.Number) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(gwei.String())
	if err != nil {
		return decimal.Zero, err
	}
	return price.Mul(weiPerGwei), nil
}
