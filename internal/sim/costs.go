package sim

// Regime 选择当前生效的费率组。
// 评估/回测必须使用 RegimeEvaluation 的真实费率，
// 仅策略训练允许使用降低后的 curriculum 费率。
type Regime int

const (
	RegimeEvaluation Regime = iota
	RegimeTraining
)

// ChargePolicy 决定滑点的计费时机。
type ChargePolicy int

const (
	// ChargeOnFlip 仅在发生换仓的当步计费，规则回测采用。
	ChargeOnFlip ChargePolicy = iota
	// ChargeEveryStep 持仓期间每步计滑点，换仓当步另计手续费，策略回放采用。
	ChargeEveryStep
)

// RatePair 表示一组(手续费率, 滑点率)。
type RatePair struct {
	Transaction float64
	Slippage    float64
}

// CostModel 按当前费率组与计费策略给出单步成本。
// 切换费率组不需要重建模拟器。
type CostModel struct {
	base       RatePair
	curriculum RatePair
	policy     ChargePolicy
	regime     Regime
}

// NewCostModel 创建成本模型。curriculum 费率仅在训练期生效。
func NewCostModel(base, curriculum RatePair, policy ChargePolicy) *CostModel {
	return &CostModel{
		base:       base,
		curriculum: curriculum,
		policy:     policy,
		regime:     RegimeEvaluation,
	}
}

// SetRegime 切换费率组。
func (m *CostModel) SetRegime(regime Regime) {
	m.regime = regime
}

// Regime 返回当前费率组。
func (m *CostModel) Regime() Regime {
	return m.regime
}

// Rates 返回当前生效的费率对。
func (m *CostModel) Rates() RatePair {
	if m.regime == RegimeTraining {
		return m.curriculum
	}
	return m.base
}

// Charge 计算当步成本。tradeExecuted 表示该步发生了换仓成交，
// positionOpen 表示该步区间内持有仓位。
func (m *CostModel) Charge(tradeExecuted, positionOpen bool) (txnCost, slippage float64) {
	rates := m.Rates()

	if tradeExecuted {
		txnCost = rates.Transaction
	}

	switch m.policy {
	case ChargeEveryStep:
		if positionOpen {
			slippage = rates.Slippage
		}
	default:
		if tradeExecuted {
			slippage = rates.Slippage
		}
	}

	return txnCost, slippage
}
