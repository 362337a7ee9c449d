package metrics

import (
	"math"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/sim"
)

const annualFactorDaily = 252

// Options 控制绩效统计口径。
type Options struct {
	InitialCapital float64
	// Annualize 为真时夏普按日线年化(sqrt 252)，规则回测采用；
	// 策略回放评估报告未年化的单步比率。
	Annualize bool
}

func (o Options) normalize() Options {
	opts := o
	if opts.InitialCapital <= 0 {
		opts.InitialCapital = 10000
	}
	return opts
}

// EquitySeries 保存毛/净净值曲线及净值回撤，首元素为起始值1.0。
type EquitySeries struct {
	Gross    []float64
	Net      []float64
	Drawdown []float64
}

// TradingSummary 汇总一轮模拟的交易绩效。
type TradingSummary struct {
	GrossTotalReturn float64 `json:"gross_total_return"`
	NetTotalReturn   float64 `json:"net_total_return"`
	Sharpe           float64 `json:"sharpe"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`
	CompletedTrades  int     `json:"completed_trades"`
	ExecutedTrades   int     `json:"executed_trades"`
	TotalCosts       float64 `json:"total_costs"`
	AvgCostPerStep   float64 `json:"avg_cost_per_step"`
	InitialCapital   float64 `json:"initial_capital"`
	FinalValue       float64 `json:"final_value"`
	Steps            int     `json:"steps"`
}

// BuyHoldSummary 为同一价格序列的买入持有基准，与策略台账互不影响。
type BuyHoldSummary struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalValue     float64 `json:"final_value"`
	TotalReturn    float64 `json:"total_return"`
}

// Compute 根据交易台账计算净值曲线与绩效汇总。
// 台账为空时返回 ErrInsufficientData，调用方可将其视为“尚无数据”。
func Compute(records []sim.TradeRecord, opts Options) (TradingSummary, EquitySeries, error) {
	if len(records) == 0 {
		return TradingSummary{}, EquitySeries{}, sim.ErrInsufficientData
	}
	opts = opts.normalize()

	series := buildEquity(records)

	netReturns := make([]float64, len(records))
	totalCosts := 0.0
	executed := 0
	for i, rec := range records {
		netReturns[i] = rec.NetReturn
		totalCosts += rec.TxnCost + rec.Slippage
		if rec.Executed {
			executed++
		}
	}

	maxDrawdown := 0.0
	for _, dd := range series.Drawdown {
		if dd < maxDrawdown {
			maxDrawdown = dd
		}
	}

	completed, winners := countTrades(records)
	winRate := 0.0
	if completed > 0 {
		winRate = float64(winners) / float64(completed) * 100
	}

	netFinal := series.Net[len(series.Net)-1]
	grossFinal := series.Gross[len(series.Gross)-1]

	summary := TradingSummary{
		GrossTotalReturn: grossFinal - 1,
		NetTotalReturn:   netFinal - 1,
		Sharpe:           sharpe(netReturns, opts.Annualize),
		MaxDrawdown:      maxDrawdown,
		WinRate:          winRate,
		CompletedTrades:  completed,
		ExecutedTrades:   executed,
		TotalCosts:       totalCosts,
		AvgCostPerStep:   totalCosts / float64(len(records)),
		InitialCapital:   opts.InitialCapital,
		FinalValue:       opts.InitialCapital * netFinal,
		Steps:            len(records),
	}

	return summary, series, nil
}

// BuyAndHold 计算买入持有基准，仅依赖首末价格与初始资金。
func BuyAndHold(firstPrice, lastPrice, initialCapital float64) BuyHoldSummary {
	if initialCapital <= 0 {
		initialCapital = 10000
	}
	finalValue := initialCapital
	if firstPrice > 0 {
		finalValue = initialCapital * lastPrice / firstPrice
	}
	return BuyHoldSummary{
		InitialCapital: initialCapital,
		FinalValue:     finalValue,
		TotalReturn:    finalValue/initialCapital - 1,
	}
}

func buildEquity(records []sim.TradeRecord) EquitySeries {
	gross := make([]float64, len(records)+1)
	net := make([]float64, len(records)+1)
	drawdown := make([]float64, len(records)+1)
	gross[0], net[0] = 1.0, 1.0

	peak := 1.0
	for i, rec := range records {
		gross[i+1] = gross[i] * (1 + rec.RawReturn)
		net[i+1] = net[i] * (1 + rec.NetReturn)
		if net[i+1] > peak {
			peak = net[i+1]
		}
		drawdown[i+1] = (net[i+1] - peak) / peak
	}

	return EquitySeries{Gross: gross, Net: net, Drawdown: drawdown}
}

// countTrades 依据仓位变化将台账配对为完成交易，
// 返回完成交易数与累计净收益为正的交易数。
func countTrades(records []sim.TradeRecord) (completed, winners int) {
	prev := sim.Flat
	cum := 0.0
	open := false

	for _, rec := range records {
		if rec.Position != prev {
			if open {
				// 平仓步的成本计入被关闭的交易；换向步的收益已属新仓位。
				if rec.Position == sim.Flat {
					cum += rec.NetReturn
				}
				completed++
				if cum > 0 {
					winners++
				}
			}
			open = rec.Position != sim.Flat
			cum = 0
		}
		if open {
			cum += rec.NetReturn
		}
		prev = rec.Position
	}

	return completed, winners
}

func sharpe(returns []float64, annualize bool) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)

	ratio := mean / (std + 1e-9)
	if annualize {
		ratio *= math.Sqrt(annualFactorDaily)
	}
	return ratio
}
