package explorer

import "math/big"

// Service is the abstraction for any kind of Ethereum block-explorer service.
type Service interface {
	// GetBalance returns the wei balance of an address at the given block
	// tag ("latest" or a block number).
	GetBalance(address, blockTag string) (*big.Int, error)
	// GetBlockNumberByTime returns the number of the last block mined before
	// the given unix timestamp.
	GetBlockNumberByTime(timestamp int64) (uint64, error)
	// GetTransactions returns the transaction history of an address.
	GetTransactions(address string, opts TxQueryOpts) ([]Transaction, error)
	// GetTransactionCount returns the chain-reported nonce of an address.
	GetTransactionCount(address string) (uint64, error)
	// BroadcastTransaction submits a signed raw transaction and returns the
	// accepted transaction hash.
	BroadcastTransaction(rawTxHex string) (string, error)
}

// TxQueryOpts narrows a transaction history query either by page/offset or
// by block range. Zero values mean no restriction.
type TxQueryOpts struct {
	Page       int
	Offset     int
	Sort       string
	StartBlock uint64
	EndBlock   uint64
}

// Transaction is a confirmed transaction as reported by the explorer.
type Transaction struct {
	Hash        string
	From        string
	To          string
	Value       *big.Int
	GasUsed     uint64
	GasPrice    *big.Int
	BlockNumber uint64
	Success     bool
	Timestamp   int64
}
