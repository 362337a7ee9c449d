package indicator

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/market"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/sim"
)

const (
	maShortPeriod  = 7
	maLongPeriod   = 30
	momentumPeriod = 7
)

// Frame 保存与行情序列逐行对齐的指标列，
// 供观测构建与奖励整形共同使用。
type Frame struct {
	Close          []float64
	Return         []float64
	MAShort        []float64
	MALong         []float64
	Momentum       []float64
	Volatility     []float64
	ForecastPrice  []float64
	ForecastReturn []float64
	Trend          []int
	Strength       []float64
	Agreement      []float64
}

// BuildFrame 根据行情序列计算指标列。window 控制滚动波动率窗口。
func BuildFrame(series market.Series, window int) (*Frame, error) {
	length := series.Len()
	if length < 2 {
		return nil, fmt.Errorf("indicator: 序列至少需要2根Bar，当前 %d", length)
	}
	if window < 2 {
		window = 30
	}

	closes := series.Close
	returns := series.Returns()

	maShort := fillWarmup(talib.Sma(closes, min(maShortPeriod, length)), closes)
	maLong := fillWarmup(talib.Sma(closes, min(maLongPeriod, length)), closes)

	momentum := talib.Rocr(closes, min(momentumPeriod, length-1))
	for i := range momentum {
		if momentum[i] == 0 {
			momentum[i] = 1.0
		}
	}

	volatility := talib.StdDev(returns, min(window, length), 1.0)

	frame := &Frame{
		Close:          closes,
		Return:         returns,
		MAShort:        maShort,
		MALong:         maLong,
		Momentum:       momentum,
		Volatility:     volatility,
		ForecastPrice:  series.ForecastPrice,
		ForecastReturn: deriveForecastReturn(series),
		Trend:          make([]int, length),
		Strength:       make([]float64, length),
		Agreement:      make([]float64, length),
	}

	for i := 0; i < length; i++ {
		signal := market.SignalFromReturn(frame.ForecastReturn[i])
		frame.Trend[i] = signal.Direction
		frame.Strength[i] = signal.Strength
		if !math.IsNaN(frame.ForecastReturn[i]) && sign(frame.Return[i]) == sign(frame.ForecastReturn[i]) {
			frame.Agreement[i] = 1.0
		}
	}

	return frame, nil
}

// Len 返回指标行数。
func (f *Frame) Len() int {
	return len(f.Close)
}

// At 提供第 step 行的奖励整形输入。
func (f *Frame) At(step int) sim.ShapingInputs {
	if step < 0 || step >= f.Len() {
		return sim.ShapingInputs{Momentum: 1.0}
	}
	return sim.ShapingInputs{
		Momentum:   f.Momentum[step],
		Volatility: f.Volatility[step],
		Forecast:   market.SignalFromReturn(f.ForecastReturn[step]),
	}
}

// deriveForecastReturn 在预测收益缺失时由预测价格序列推导。
func deriveForecastReturn(series market.Series) []float64 {
	length := series.Len()
	derived := make([]float64, length)
	copy(derived, series.ForecastReturn)

	for i := 0; i < length; i++ {
		if !math.IsNaN(derived[i]) {
			continue
		}
		if i > 0 && series.HasForecast(i) && series.HasForecast(i-1) && series.ForecastPrice[i-1] != 0 {
			derived[i] = (series.ForecastPrice[i] - series.ForecastPrice[i-1]) / series.ForecastPrice[i-1]
		}
	}

	return derived
}

// fillWarmup 将talib暖机期的零值替换为对应收盘价，避免观测中出现断崖。
func fillWarmup(values, closes []float64) []float64 {
	for i := range values {
		if values[i] == 0 {
			values[i] = closes[i]
		} else {
			break
		}
	}
	return values
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
