package feature

import (
	"math"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/indicator"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/sim"
)

// Observer 按基础环境的特征清单构建观测向量：
// 行情与预测特征加上仓位内部状态。
type Observer struct {
	frame *indicator.Frame
}

// NewObserver 创建观测构建器。
func NewObserver(frame *indicator.Frame) *Observer {
	return &Observer{frame: frame}
}

// Size 返回观测向量长度。
func (o *Observer) Size() int {
	return 12
}

// Observe 构建第 step 步的观测向量。
func (o *Observer) Observe(step int, view sim.BookView) []float64 {
	f := o.frame
	if step < 0 || step >= f.Len() {
		return make([]float64, o.Size())
	}

	return []float64{
		f.Close[step],
		f.Return[step],
		f.MAShort[step],
		f.MALong[step],
		f.Volatility[step],
		f.Momentum[step],
		clean(f.ForecastPrice[step]),
		clean(f.ForecastReturn[step]),
		float64(f.Trend[step]),
		f.Strength[step],
		float64(view.Position),
		float64(view.HoldingDays),
	}
}

// WindowObserver 构建动量环境使用的滚动窗口观测：
// 将最近 window 根Bar的特征展平为一维向量。
type WindowObserver struct {
	frame  *indicator.Frame
	window int
}

// NewWindowObserver 创建滚动窗口观测构建器。
func NewWindowObserver(frame *indicator.Frame, window int) *WindowObserver {
	if window < 1 {
		window = 30
	}
	return &WindowObserver{frame: frame, window: window}
}

// Window 返回窗口长度。
func (o *WindowObserver) Window() int {
	return o.window
}

// StartIndex 返回首个可观测的下标，之前的Bar不足以填满窗口。
func (o *WindowObserver) StartIndex() int {
	return o.window
}

// Size 返回展平后的观测向量长度。
func (o *WindowObserver) Size() int {
	return o.window * 6
}

// Observe 构建第 step 步的窗口观测，窗口为 [step-window, step)。
func (o *WindowObserver) Observe(step int, _ sim.BookView) []float64 {
	f := o.frame
	observation := make([]float64, 0, o.Size())

	for i := step - o.window; i < step; i++ {
		if i < 0 || i >= f.Len() {
			observation = append(observation, 0, 0, 0, 0, 0, 0)
			continue
		}
		observation = append(observation,
			f.Close[i],
			f.Return[i],
			f.Momentum[i],
			f.Volatility[i],
			clean(f.ForecastReturn[i]),
			float64(f.Trend[i]),
		)
	}

	return observation
}

func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
