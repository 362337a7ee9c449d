package market

import (
	"math"
	"sort"
	"time"
)

// Bar 表示时间序列中的一行行情数据。
// 预测列缺失时以 NaN 表示，由消费方按步降级处理。
type Bar struct {
	Date           time.Time
	Close          float64
	ForecastPrice  float64
	ForecastReturn float64
}

// Series 将日线数据拆分为便于计算的列式序列，按日期升序排列。
type Series struct {
	Dates          []time.Time
	Close          []float64
	ForecastPrice  []float64
	ForecastReturn []float64
}

// NewSeries 从 Bar 列表创建 Series，自动按日期升序排序。
func NewSeries(bars []Bar) Series {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	length := len(sorted)
	series := Series{
		Dates:          make([]time.Time, length),
		Close:          make([]float64, length),
		ForecastPrice:  make([]float64, length),
		ForecastReturn: make([]float64, length),
	}

	for i := 0; i < length; i++ {
		bar := sorted[i]
		series.Dates[i] = bar.Date.UTC()
		series.Close[i] = bar.Close
		series.ForecastPrice[i] = bar.ForecastPrice
		series.ForecastReturn[i] = bar.ForecastReturn
	}

	return series
}

// Len 返回序列长度。
func (s Series) Len() int {
	return len(s.Close)
}

// Tail 返回最近 n 根Bar构成的子序列，不足时返回全部。
func (s Series) Tail(n int) Series {
	if n <= 0 || s.Len() <= n {
		return s
	}
	start := s.Len() - n
	return Series{
		Dates:          s.Dates[start:],
		Close:          s.Close[start:],
		ForecastPrice:  s.ForecastPrice[start:],
		ForecastReturn: s.ForecastReturn[start:],
	}
}

// HasForecast 判断第 i 行是否带有可用的价格预测。
func (s Series) HasForecast(i int) bool {
	if i < 0 || i >= s.Len() {
		return false
	}
	return !math.IsNaN(s.ForecastPrice[i])
}

// Returns 计算逐Bar收益率序列，首行为0。
func (s Series) Returns() []float64 {
	returns := make([]float64, s.Len())
	for i := 1; i < s.Len(); i++ {
		prev := s.Close[i-1]
		if prev != 0 {
			returns[i] = (s.Close[i] - prev) / prev
		}
	}
	return returns
}

// Last 返回序列最后一个值，若为空则返回 NaN。
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// SafeDivide 除法保护，除数为0时返回0。
func SafeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
