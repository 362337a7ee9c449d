package market

import "math"

// ForecastSignal 抽象外部预测模型的方向与强度，
// 使消费方不依赖预测器的具体表示形式。
type ForecastSignal struct {
	Direction int     // -1 看跌，0 无方向，1 看涨
	Strength  float64 // 预测收益的绝对值，非负
}

// SignalFromReturn 由预测收益率派生方向信号。NaN 视为无信号。
func SignalFromReturn(forecastReturn float64) ForecastSignal {
	if math.IsNaN(forecastReturn) || forecastReturn == 0 {
		return ForecastSignal{}
	}
	direction := 1
	if forecastReturn < 0 {
		direction = -1
	}
	return ForecastSignal{
		Direction: direction,
		Strength:  math.Abs(forecastReturn),
	}
}
