package etherscan

import (
	"strconv"
	"strings"
)

func (e *etherscan) GetTransactionCount(address string) (uint64, error) {
	result, err := e.callProxy("eth_getTransactionCount", map[string]string{
		"address": address,
		"tag":     "latest",
	})
	if err != nil {
		return 0, err
	}

	return strconv.ParseUint(strings.TrimPrefix(result, "0x"), 16, 64)
}

func (e *etherscan) BroadcastTransaction(rawTxHex string) (string, error) {
	if !strings.HasPrefix(rawTxHex, "0x") {
		rawTxHex = "0x" + rawTxHex
	}
	return e.callProxy("eth_sendRawTransaction", map[string]string{
		"hex": rawTxHex,
	})
}
