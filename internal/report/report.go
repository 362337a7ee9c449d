package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/metrics"
)

// TradingInput 聚合生成交易报告所需的全部结果。
type TradingInput struct {
	Start    time.Time
	End      time.Time
	Strategy metrics.TradingSummary
	BuyHold  metrics.BuyHoldSummary
}

// Trading 渲染策略与买入持有基准的对比报告。
func Trading(in TradingInput) string {
	var b strings.Builder

	line := strings.Repeat("=", 64)
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "TRADING BACKTEST REPORT")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Period:             %s ~ %s (%d steps)\n",
		in.Start.Format("2006-01-02"), in.End.Format("2006-01-02"), in.Strategy.Steps)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "Strategy")
	fmt.Fprintf(&b, "  Initial capital:  $%.2f\n", in.Strategy.InitialCapital)
	fmt.Fprintf(&b, "  Final value:      $%.2f\n", in.Strategy.FinalValue)
	fmt.Fprintf(&b, "  Gross return:     %.2f%%\n", in.Strategy.GrossTotalReturn*100)
	fmt.Fprintf(&b, "  Net return:       %.2f%%\n", in.Strategy.NetTotalReturn*100)
	fmt.Fprintf(&b, "  Sharpe ratio:     %.4f\n", in.Strategy.Sharpe)
	fmt.Fprintf(&b, "  Max drawdown:     %.2f%%\n", in.Strategy.MaxDrawdown*100)
	fmt.Fprintf(&b, "  Win rate:         %.2f%%\n", in.Strategy.WinRate)
	fmt.Fprintf(&b, "  Completed trades: %d\n", in.Strategy.CompletedTrades)
	fmt.Fprintf(&b, "  Executed trades:  %d\n", in.Strategy.ExecutedTrades)
	fmt.Fprintf(&b, "  Total costs:      %.4f%%\n", in.Strategy.TotalCosts*100)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "Buy & Hold")
	fmt.Fprintf(&b, "  Initial capital:  $%.2f\n", in.BuyHold.InitialCapital)
	fmt.Fprintf(&b, "  Final value:      $%.2f\n", in.BuyHold.FinalValue)
	fmt.Fprintf(&b, "  Total return:     %.2f%%\n", in.BuyHold.TotalReturn*100)
	fmt.Fprintln(&b)

	diff := in.Strategy.NetTotalReturn - in.BuyHold.TotalReturn
	verdict := "UNDERPERFORMED"
	if diff >= 0 {
		verdict = "OUTPERFORMED"
	}
	fmt.Fprintf(&b, "Strategy %s buy & hold by %.2f%%\n", verdict, diff*100)
	fmt.Fprintln(&b, line)

	return b.String()
}

// Accuracy 渲染预测准确性报告。
func Accuracy(start, end time.Time, s metrics.AccuracySummary) string {
	var b strings.Builder

	line := strings.Repeat("=", 64)
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "PREDICTION ACCURACY REPORT")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Period:               %s ~ %s\n",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Fprintf(&b, "Predictions scored:   %d\n", s.Pairs)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "MAE:                  $%.4f\n", s.MAE)
	fmt.Fprintf(&b, "RMSE:                 $%.4f\n", s.RMSE)
	fmt.Fprintf(&b, "MAPE:                 %.2f%%\n", s.MAPE)
	fmt.Fprintf(&b, "Max error:            $%.4f\n", s.MaxError)
	fmt.Fprintf(&b, "Directional accuracy: %.2f%%\n", s.DirectionalAccuracy)
	fmt.Fprintf(&b, "Correlation:          %.4f\n", s.Correlation)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Avg actual price:     $%.2f\n", s.AvgActual)
	fmt.Fprintf(&b, "Avg predicted price:  $%.2f\n", s.AvgPredicted)
	fmt.Fprintln(&b, line)

	return b.String()
}
