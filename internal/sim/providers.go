package sim

import "errors"

// Policy 是外部决策策略的黑盒接口，按观测给出 {0,1,2} 动作。
type Policy interface {
	Predict(observation []float64) (int, error)
}

// PolicyFunc 允许使用函数作为策略。
type PolicyFunc func(observation []float64) (int, error)

func (f PolicyFunc) Predict(observation []float64) (int, error) {
	if f == nil {
		return 0, errors.New("sim: 策略函数未实现")
	}
	return f(observation)
}

// Observer 为策略构建逐步观测向量。
type Observer interface {
	Observe(step int, view BookView) []float64
}

// ObserverFunc 允许使用函数作为观测构建器。
type ObserverFunc func(step int, view BookView) []float64

func (f ObserverFunc) Observe(step int, view BookView) []float64 {
	if f == nil {
		return nil
	}
	return f(step, view)
}

// ShapingSource 按步提供奖励整形所需的指标输入。
type ShapingSource interface {
	At(step int) ShapingInputs
}

// NoShaping 提供全零的整形输入，适用于不整形的运行。
type NoShaping struct{}

func (NoShaping) At(int) ShapingInputs {
	return ShapingInputs{Momentum: 1.0}
}
