package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/market"
)

// Options 界定一轮模拟的时间范围。EndIndex 为含端点的终止下标，
// 小于0时取序列末尾。
type Options struct {
	StartIndex int
	EndIndex   int
}

// PolicyOptions 控制策略回放行为。随机起点仅用于训练阶段的
// 回合初始化，评估不应启用。
type PolicyOptions struct {
	RandomStart bool
	Rand        *rand.Rand
}

// RuleOptions 控制规则回放行为。默认的只做多形态在预测看跌时
// 退回现金；AllowShort 打开后改为直接换向做空。
type RuleOptions struct {
	AllowShort bool
}

// Driver 逐Bar驱动仓位状态机，产出交易台账。
// 同一个 Driver 可以被多次 Reset 复用，但不可并发运行。
type Driver struct {
	series  market.Series
	book    *Book
	costs   *CostModel
	comp    *Composer
	shaping ShapingSource
	logger  *zap.Logger

	start int
	end   int
}

// NewDriver 创建模拟驱动器。
func NewDriver(series market.Series, book *Book, costs *CostModel, comp *Composer, shaping ShapingSource, logger *zap.Logger, opts Options) (*Driver, error) {
	if book == nil || costs == nil || comp == nil {
		return nil, fmt.Errorf("sim: book/costs/composer 不能为空")
	}
	if shaping == nil {
		shaping = NoShaping{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if series.Len() < 2 {
		return nil, fmt.Errorf("sim: 序列至少需要2根Bar: %w", ErrInsufficientData)
	}
	if series.Len() < book.MinHoldingDays()+1 {
		return nil, fmt.Errorf("sim: 序列短于最短持有天数+1: %w", ErrInsufficientData)
	}

	start := opts.StartIndex
	if start < 0 {
		start = 0
	}
	end := opts.EndIndex
	if end < 0 || end > series.Len()-1 {
		end = series.Len() - 1
	}
	if start >= end {
		return nil, fmt.Errorf("sim: 起止下标非法 [%d, %d]: %w", start, end, ErrInsufficientData)
	}

	return &Driver{
		series:  series,
		book:    book,
		costs:   costs,
		comp:    comp,
		shaping: shaping,
		logger:  logger,
		start:   start,
		end:     end,
	}, nil
}

// Reset 复位仓位与收益历史，费率组保持不变。
func (d *Driver) Reset() {
	d.book.Reset()
	d.comp.Reset()
}

// PolicyReplay 回放外部策略的逐步决策。策略异常或返回非法动作
// 属致命错误；已完成的台账前缀随错误一并返回。
func (d *Driver) PolicyReplay(ctx context.Context, policy Policy, observer Observer, opts PolicyOptions) (RunResult, error) {
	if policy == nil {
		return RunResult{}, fmt.Errorf("sim: policy 不能为空")
	}
	if observer == nil {
		observer = ObserverFunc(func(int, BookView) []float64 { return nil })
	}

	d.Reset()

	step := d.start
	if opts.RandomStart {
		rng := opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(rand.Int63()))
		}
		span := d.end - 10 - d.start
		if span < 1 {
			span = 1
		}
		step = d.start + rng.Intn(span)
	}

	records := make([]TradeRecord, 0, d.end-step)

	for step < d.end {
		if err := ctx.Err(); err != nil {
			return d.result(records, step), err
		}

		prevPrice := d.series.Close[step]
		if err := checkPrice(step, prevPrice); err != nil {
			return d.result(records, step), err
		}

		observation := observer.Observe(step, d.book.View())
		rawAction, err := policy.Predict(observation)
		if err != nil {
			return d.result(records, step), &PolicyError{Step: step, Err: err}
		}
		if rawAction < int(ActionHold) || rawAction > int(ActionShort) {
			return d.result(records, step), &PolicyError{Step: step, Action: rawAction}
		}

		executed, err := d.book.Apply(Action(rawAction), prevPrice)
		if err != nil {
			return d.result(records, step), err
		}

		step++
		curPrice := d.series.Close[step]
		if err := checkPrice(step, curPrice); err != nil {
			return d.result(records, step), err
		}

		stepReturn := d.comp.ComputeReturn(d.book.Position(), prevPrice, curPrice, executed)
		if err := d.book.Advance(curPrice); err != nil {
			return d.result(records, step), err
		}
		reward := d.comp.Reward(d.book.View(), stepReturn, d.shaping.At(step))

		records = append(records, TradeRecord{
			Step:       step,
			Date:       d.series.Dates[step],
			Price:      curPrice,
			Action:     Action(rawAction),
			Position:   d.book.Position(),
			RawReturn:  stepReturn.Raw,
			NetReturn:  stepReturn.Net,
			TxnCost:    stepReturn.TxnCost,
			Slippage:   stepReturn.Slippage,
			Unrealized: d.book.Unrealized(),
			Reward:     reward,
			Executed:   executed,
		})
	}

	return d.result(records, step), nil
}

// RuleReplay 回放由预测阈值派生的确定性规则。某一Bar缺少预测时
// 仅该Bar降级为 HOLD；序列结束时强制以末根Bar价格平仓。
func (d *Driver) RuleReplay(ctx context.Context, opts RuleOptions) (RunResult, error) {
	d.Reset()

	records := make([]TradeRecord, 0, d.end-d.start+1)
	step := d.start

	for ; step < d.end; step++ {
		if err := ctx.Err(); err != nil {
			return d.result(records, step), err
		}

		price := d.series.Close[step]
		if err := checkPrice(step, price); err != nil {
			return d.result(records, step), err
		}

		action := ActionHold
		executed := false
		if d.series.HasForecast(step) {
			forecast := d.series.ForecastPrice[step]
			switch {
			case forecast > price && d.book.Position() != Long:
				action = ActionLong
				if ok, err := d.book.Apply(ActionLong, price); err != nil {
					return d.result(records, step), err
				} else {
					executed = ok
				}
			case forecast < price && opts.AllowShort && d.book.Position() != Short:
				action = ActionShort
				if ok, err := d.book.Apply(ActionShort, price); err != nil {
					return d.result(records, step), err
				} else {
					executed = ok
				}
			case forecast < price && !opts.AllowShort && d.book.Position() == Long:
				// 只做多形态：预测看跌时退回现金。
				if d.book.CanFlip() && d.book.Close() {
					action = ActionClose
					executed = true
				}
			}
		} else {
			d.logger.Debug("该Bar缺少预测，降级为HOLD", zap.Int("step", step))
		}

		curPrice := d.series.Close[step+1]
		if err := checkPrice(step+1, curPrice); err != nil {
			return d.result(records, step), err
		}

		stepReturn := d.comp.ComputeReturn(d.book.Position(), price, curPrice, executed)
		if err := d.book.Advance(curPrice); err != nil {
			return d.result(records, step), err
		}

		records = append(records, TradeRecord{
			Step:       step + 1,
			Date:       d.series.Dates[step+1],
			Price:      curPrice,
			Action:     action,
			Position:   d.book.Position(),
			RawReturn:  stepReturn.Raw,
			NetReturn:  stepReturn.Net,
			TxnCost:    stepReturn.TxnCost,
			Slippage:   stepReturn.Slippage,
			Unrealized: d.book.Unrealized(),
			Reward:     stepReturn.Net,
			Executed:   executed,
		})
	}

	// 末根Bar强制平仓，使收益全部实现。结算行取 end+1 作为
	// 步号，保持台账内步号唯一。
	if d.book.Position() != Flat {
		finalPrice := d.series.Close[d.end]
		d.book.Close()
		stepReturn := d.comp.ComputeReturn(Flat, finalPrice, finalPrice, true)
		records = append(records, TradeRecord{
			Step:      d.end + 1,
			Date:      d.series.Dates[d.end],
			Price:     finalPrice,
			Action:    ActionClose,
			Position:  Flat,
			RawReturn: stepReturn.Raw,
			NetReturn: stepReturn.Net,
			TxnCost:   stepReturn.TxnCost,
			Slippage:  stepReturn.Slippage,
			Reward:    stepReturn.Net,
			Executed:  true,
		})
	}

	return d.result(records, d.end), nil
}

func (d *Driver) result(records []TradeRecord, step int) RunResult {
	return RunResult{
		Records:   records,
		Returns:   d.comp.History(),
		FinalStep: step,
	}
}

func checkPrice(step int, price float64) error {
	if math.IsNaN(price) {
		return &DataGapError{Step: step}
	}
	if price <= 0 {
		return &InvalidPriceError{Step: step, Price: price}
	}
	return nil
}
