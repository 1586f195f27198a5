package etherscan

import (
	"encoding/json"
	"strconv"
)

func (e *etherscan) GetBlockNumberByTime(timestamp int64) (uint64, error) {
	result, err := e.call("block", "getblocknobytime", map[string]string{
		"timestamp": strconv.FormatInt(timestamp, 10),
		"closest":   "before",
	})
	if err != nil {
		return 0, err
	}

	var blockStr string
	if err := json.Unmarshal(result, &blockStr); err != nil {
		return 0, err
	}
	return strconv.ParseUint(blockStr, 10, 64)
}
