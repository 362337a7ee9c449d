package sim

import "time"

// TradeRecord 是模拟过程逐步产出的台账行，追加后不再修改。
type TradeRecord struct {
	Step       int       `json:"step"`
	Date       time.Time `json:"date"`
	Price      float64   `json:"price"`
	Action     Action    `json:"action"`
	Position   Position  `json:"position"`
	RawReturn  float64   `json:"raw_return"`
	NetReturn  float64   `json:"net_return"`
	TxnCost    float64   `json:"txn_cost"`
	Slippage   float64   `json:"slippage"`
	Unrealized float64   `json:"unrealized_pnl"`
	Reward     float64   `json:"reward"`
	Executed   bool      `json:"executed"`
}

// RunResult 汇总一轮模拟的台账与净收益序列。
// 运行中途失败时仍携带已完成的前缀，便于计算部分指标。
type RunResult struct {
	Records   []TradeRecord
	Returns   []float64
	FinalStep int
}
