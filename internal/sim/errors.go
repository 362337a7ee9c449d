package sim

import (
	"errors"
	"fmt"
)

// ErrInsufficientData 表示数据量不足以完成计算，
// 调用方可据此区分“尚无数据”与“数据损坏”。
var ErrInsufficientData = errors.New("sim: 数据量不足")

// InvalidPriceError 表示运行中遇到非正价格，属致命错误。
type InvalidPriceError struct {
	Step  int
	Price float64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("sim: 第%d步价格非法: %v", e.Step, e.Price)
}

// DataGapError 表示运行中遇到缺失(NaN)价格，属致命错误；
// 静默跳过会破坏按日期对齐的净值曲线。
type DataGapError struct {
	Step int
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("sim: 第%d步价格缺失", e.Step)
}

// PolicyError 表示外部策略调用失败或返回非法动作，属致命错误。
type PolicyError struct {
	Step   int
	Action int
	Err    error
}

func (e *PolicyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sim: 第%d步策略调用失败: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("sim: 第%d步策略返回非法动作: %d", e.Step, e.Action)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}
