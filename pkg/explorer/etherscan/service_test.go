package etherscan_test

import (
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer/etherscan"
)

var testAddress = "0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2"

func newTestServer(t *testing.T) *httptest.Server {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		action := query.Get("action")

		switch action {
		case "eth_blockNumber":
			fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0x10d4f"}`)
		case "balance":
			require.Equal(t, testAddress, query.Get("address"))
			fmt.Fprint(w, `{"status":"1","message":"OK","result":"1500000000000000000"}`)
		case "txlist":
			fmt.Fprint(w, `{"status":"1","message":"OK","result":[{
				"hash":"0xabc","from":"0xfrom","to":"0xto",
				"value":"1000000000000000000","gasUsed":"21000",
				"gasPrice":"20000000000","blockNumber":"68943",
				"txreceipt_status":"1","timeStamp":"1546848077"}]}`)
		case "getblocknobytime":
			fmt.Fprint(w, `{"status":"1","message":"OK","result":"68943"}`)
		case "eth_getTransactionCount":
			fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0x2a"}`)
		case "eth_sendRawTransaction":
			fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0xdeadbeef"}`)
		default:
			fmt.Fprint(w, `{"status":"0","message":"NOTOK","result":"Error! Missing Or invalid Action name"}`)
		}
	})
	return httptest.NewServer(handler)
}

func TestGetBalance(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	service, err := etherscan.NewService(server.URL, "")
	require.NoError(t, err)

	balance, err := service.GetBalance(testAddress, "")
	require.NoError(t, err)
	require.Equal(t, "1500000000000000000", balance.String())
}

func TestGetTransactions(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	service, err := etherscan.NewService(server.URL, "")
	require.NoError(t, err)

	txs, err := service.GetTransactions(testAddress, explorer.TxQueryOpts{
		Page: 1, Offset: 10, Sort: "desc",
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "0xabc", txs[0].Hash)
	require.Equal(t, big.NewInt(1000000000000000000), txs[0].Value)
	require.Equal(t, uint64(21000), txs[0].GasUsed)
	require.Equal(t, uint64(68943), txs[0].BlockNumber)
	require.True(t, txs[0].Success)
	require.Equal(t, int64(1546848077), txs[0].Timestamp)
}

func TestGetBlockNumberByTime(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	service, err := etherscan.NewService(server.URL, "")
	require.NoError(t, err)

	blockNumber, err := service.GetBlockNumberByTime(1546848077)
	require.NoError(t, err)
	require.Equal(t, uint64(68943), blockNumber)
}

func TestGetTransactionCount(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	service, err := etherscan.NewService(server.URL, "")
	require.NoError(t, err)

	count, err := service.GetTransactionCount(testAddress)
	require.NoError(t, err)
	require.Equal(t, uint64(42), count)
}

func TestBroadcastTransaction(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	service, err := etherscan.NewService(server.URL, "")
	require.NoError(t, err)

	hash, err := service.BroadcastTransaction("f86c0a85...")
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", hash)
}
