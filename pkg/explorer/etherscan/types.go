package etherscan

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
)

// txItem is the wire format of a single entry of the txlist action.
type txItem struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	GasUsed     string `json:"gasUsed"`
	GasPrice    string `json:"gasPrice"`
	BlockNumber string `json:"blockNumber"`
	TxStatus    string `json:"txreceipt_status"`
	TimeStamp   string `json:"timeStamp"`
}

func (t txItem) toTransaction() (explorer.Transaction, error) {
	value, ok := new(big.Int).SetString(t.Value, 10)
	if !ok {
		return explorer.Transaction{}, fmt.Errorf("malformed tx value %s", t.Value)
	}
	gasPrice, ok := new(big.Int).SetString(t.GasPrice, 10)
	if !ok {
		return explorer.Transaction{}, fmt.Errorf("malformed gas price %s", t.GasPrice)
	}
	gasUsed, err := strconv.ParseUint(t.GasUsed, 10, 64)
	if err != nil {
		return explorer.Transaction{}, err
	}
	blockNumber, err := strconv.ParseUint(t.BlockNumber, 10, 64)
	if err != nil {
		return explorer.Transaction{}, err
	}
	timestamp, err := strconv.ParseInt(t.TimeStamp, 10, 64)
	if err != nil {
		return explorer.Transaction{}, err
	}

	return explorer.Transaction{
		Hash:        t.Hash,
		From:        t.From,
		To:          t.To,
		Value:       value,
		GasUsed:     gasUsed,
		GasPrice:    gasPrice,
		BlockNumber: blockNumber,
		Success:     t.TxStatus != "0",
		Timestamp:   timestamp,
	}, nil
}
