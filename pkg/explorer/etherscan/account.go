package etherscan

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
)

func (e *etherscan) GetBalance(address, blockTag string) (*big.Int, error) {
	if len(blockTag) <= 0 {
		blockTag = "latest"
	}
	result, err := e.call("account", "balance", map[string]string{
		"address": address,
		"tag":     blockTag,
	})
	if err != nil {
		return nil, err
	}

	var weiStr string
	if err := json.Unmarshal(result, &weiStr); err != nil {
		return nil, err
	}
	wei, ok := new(big.Int).SetString(weiStr, 10)
	if !ok {
		return nil, fmt.Errorf("malformed balance %s", weiStr)
	}
	return wei, nil
}

func (e *etherscan) GetTransactions(
	address string, opts explorer.TxQueryOpts,
) ([]explorer.Transaction, error) {
	params := map[string]string{"address": address}
	if opts.Page > 0 {
		params["page"] = strconv.Itoa(opts.Page)
	}
	if opts.Offset > 0 {
		params["offset"] = strconv.Itoa(opts.Offset)
	}
	if len(opts.Sort) > 0 {
		params["sort"] = opts.Sort
	}
	if opts.StartBlock > 0 {
		params["startblock"] = strconv.FormatUint(opts.StartBlock, 10)
	}
	if opts.EndBlock > 0 {
		params["endblock"] = strconv.FormatUint(opts.EndBlock, 10)
	}

	result, err := e.call("account", "txlist", params)
	if err != nil {
		return nil, err
	}

	return parseTransactions(result)
}

func parseTransactions(result json.RawMessage) ([]explorer.Transaction, error) {
	var list []txItem
	if err := json.Unmarshal(result, &list); err != nil {
		return nil, err
	}

	txs := make([]explorer.Transaction, 0, len(list))
	for _, item := range list {
		tx, err := item.toTransaction()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
