package sim

import (
	"math"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/market"
)

// RewardMode 选择策略回放的基础奖励形态。
type RewardMode string

const (
	RewardNet          RewardMode = "net"
	RewardRiskAdjusted RewardMode = "risk_adjusted"
)

// ShapingConfig 管理奖励整形系数。全部系数为0且模式为 net 时，
// 奖励严格等于净收益，不附加任何整形项。
type ShapingConfig struct {
	Mode              RewardMode
	Window            int
	Epsilon           float64
	HoldingRewardCoef float64
	MinTradeHold      int
	MomentumCoef      float64
	VolPenalty        float64
	AlignmentCoef     float64
}

func (c ShapingConfig) normalize() ShapingConfig {
	cfg := c
	if cfg.Mode == "" {
		cfg.Mode = RewardNet
	}
	if cfg.Window < 2 {
		cfg.Window = 30
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = 1e-6
	}
	if cfg.MinTradeHold < 0 {
		cfg.MinTradeHold = 0
	}
	return cfg
}

// StepReturn 记录单步收益的拆解结果。
type StepReturn struct {
	Raw      float64
	Net      float64
	TxnCost  float64
	Slippage float64
}

// ShapingInputs 提供整形所需的当步指标，
// 预测方向以 ForecastSignal 值对象传入，不依赖预测器的内部表示。
type ShapingInputs struct {
	Momentum   float64 // 动量指标，1.0 表示无方向
	Volatility float64 // 滚动波动率
	Forecast   market.ForecastSignal
}

// Composer 负责单步收益计算与奖励合成，并维护净收益历史。
type Composer struct {
	cfg     ShapingConfig
	costs   *CostModel
	history []float64
}

// NewComposer 创建收益/奖励合成器。
func NewComposer(cfg ShapingConfig, costs *CostModel) *Composer {
	return &Composer{
		cfg:   cfg.normalize(),
		costs: costs,
	}
}

// Reset 清空净收益历史，供新一轮模拟使用。
func (c *Composer) Reset() {
	c.history = c.history[:0]
}

// History 返回已实现净收益序列的副本。
func (c *Composer) History() []float64 {
	return append([]float64(nil), c.history...)
}

// ComputeReturn 计算该步的毛收益与成本调整后净收益，并记入历史。
// 分母带 epsilon 保护。
func (c *Composer) ComputeReturn(position Position, prevPrice, curPrice float64, tradeExecuted bool) StepReturn {
	var raw float64
	switch position {
	case Long:
		raw = (curPrice - prevPrice) / (prevPrice + c.cfg.Epsilon)
	case Short:
		raw = (prevPrice - curPrice) / (prevPrice + c.cfg.Epsilon)
	}

	txnCost, slippage := c.costs.Charge(tradeExecuted, position != Flat)
	net := raw - txnCost - slippage

	c.history = append(c.history, net)

	return StepReturn{
		Raw:      raw,
		Net:      net,
		TxnCost:  txnCost,
		Slippage: slippage,
	}
}

// Reward 合成该步奖励：基础项（净收益或风险调整收益）加上
// 各自可独立停用的整形项。
func (c *Composer) Reward(view BookView, step StepReturn, inputs ShapingInputs) float64 {
	reward := step.Net
	if c.cfg.Mode == RewardRiskAdjusted {
		vol := math.Max(c.rollingStd(), c.cfg.Epsilon)
		reward = step.Net / vol
	}

	direction := float64(view.Position)

	// 顺势持仓奖励：方向与已实现毛收益同号且持有天数达标时发放。
	if c.cfg.HoldingRewardCoef != 0 && view.Position != Flat && view.HoldingDays >= c.cfg.MinTradeHold {
		if (view.Position == Long && step.Raw > 0) || (view.Position == Short && step.Raw < 0) {
			reward += c.cfg.HoldingRewardCoef * math.Abs(step.Raw)
		}
	}

	// 动量奖励：动量指标以1.0为中心，按持仓方向取号。
	if c.cfg.MomentumCoef != 0 && view.Position != Flat {
		reward += c.cfg.MomentumCoef * (inputs.Momentum - 1.0) * direction
	}

	// 波动率惩罚：持仓期间按滚动波动率扣减。
	if c.cfg.VolPenalty != 0 && view.Position != Flat {
		reward -= c.cfg.VolPenalty * inputs.Volatility
	}

	// 预测对齐奖励：持仓方向与预测方向一致时按预测强度加成。
	if c.cfg.AlignmentCoef != 0 && view.Position != Flat && inputs.Forecast.Direction != 0 {
		if int(view.Position) == inputs.Forecast.Direction {
			reward += c.cfg.AlignmentCoef * inputs.Forecast.Strength
		}
	}

	return reward
}

// rollingStd 计算净收益历史末端窗口的总体标准差。
// 样本不足两个时退化为整段标准差（可能为0，由调用方加下限）。
func (c *Composer) rollingStd() float64 {
	values := c.history
	if len(values) >= 2 && len(values) > c.cfg.Window {
		values = values[len(values)-c.cfg.Window:]
	}
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
