package etherscan

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/httputil"
)

type etherscan struct {
	apiURL string
	apiKey string
}

// NewService returns a new etherscan service as an explorer.Service interface
func NewService(apiURL, apiKey string) (explorer.Service, error) {
	service := &etherscan{apiURL: apiURL, apiKey: apiKey}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (e *etherscan) healthCheck() error {
	_, err := e.callProxy("eth_blockNumber", nil)
	return err
}

// call performs a GET against the etherscan-compatible API and returns the
// raw "result" field of the response envelope.
func (e *etherscan) call(module, action string, params map[string]string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("module", module)
	query.Set("action", action)
	for key, value := range params {
		query.Set(key, value)
	}
	if len(e.apiKey) > 0 {
		query.Set("apikey", e.apiKey)
	}

	reqURL := fmt.Sprintf("%s/api?%s", e.apiURL, query.Encode())
	status, resp, err := httputil.NewHTTPRequest("GET", reqURL, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf(resp)
	}

	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal([]byte(resp), &envelope); err != nil {
		return nil, err
	}
	// "No transactions found" comes back with status 0 and an empty list,
	// which is not a failure
	if envelope.Status == "0" && envelope.Message != "No transactions found" {
		var reason string
		_ = json.Unmarshal(envelope.Result, &reason)
		if len(reason) <= 0 {
			reason = envelope.Message
		}
		return nil, fmt.Errorf(reason)
	}

	return envelope.Result, nil
}

// callProxy performs a GET against the eth JSON-RPC proxy module and returns
// the raw "result" field.
func (e *etherscan) callProxy(action string, params map[string]string) (string, error) {
	query := url.Values{}
	query.Set("module", "proxy")
	query.Set("action", action)
	for key, value := range params {
		query.Set(key, value)
	}
	if len(e.apiKey) > 0 {
		query.Set("apikey", e.apiKey)
	}

	reqURL := fmt.Sprintf("%s/api?%s", e.apiURL, query.Encode())
	status, resp, err := httputil.NewHTTPRequest("GET", reqURL, "", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf(resp)
	}

	var envelope struct {
		Result string `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resp), &envelope); err != nil {
		return "", err
	}
	if envelope.Error != nil {
		return "", fmt.Errorf(envelope.Error.Message)
	}

	return envelope.Result, nil
}
