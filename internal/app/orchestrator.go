package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/config"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/indicator"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/market"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/metrics"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/report"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/sim"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/store"
)

// orchestrator 把配置翻译为模拟组件并执行两类回测。
type orchestrator struct {
	cfg    *config.Config
	logger *zap.Logger
	runs   *store.RunStore
	series market.Series
	frame  *indicator.Frame
}

type tradingOutcome struct {
	summary metrics.TradingSummary
	buyHold metrics.BuyHoldSummary
	records []sim.TradeRecord
}

type accuracyOutcome struct {
	summary metrics.AccuracySummary
	scored  bool
}

func newOrchestrator(cfg *config.Config, logger *zap.Logger, runs *store.RunStore, series market.Series, frame *indicator.Frame) *orchestrator {
	return &orchestrator{
		cfg:    cfg,
		logger: logger,
		runs:   runs,
		series: series,
		frame:  frame,
	}
}

// runTrading 以评估费率执行规则回放，并与买入持有基准对比。
func (o *orchestrator) runTrading(ctx context.Context) (tradingOutcome, error) {
	simCfg := o.cfg.Simulation

	costs := sim.NewCostModel(
		sim.RatePair{Transaction: simCfg.BaseTransactionCost, Slippage: simCfg.BaseSlippage},
		sim.RatePair{Transaction: simCfg.TrainTransactionCost, Slippage: simCfg.TrainSlippage},
		chargePolicy(simCfg.ChargePolicy),
	)

	comp := sim.NewComposer(sim.ShapingConfig{
		Mode:    sim.RewardMode(o.cfg.Reward.Mode),
		Window:  simCfg.RollingWindow,
		Epsilon: simCfg.Epsilon,
	}, costs)

	book := sim.NewBook(simCfg.MinHoldingDays)
	driver, err := sim.NewDriver(o.series, book, costs, comp, o.frame, o.logger, sim.Options{EndIndex: -1})
	if err != nil {
		return tradingOutcome{}, fmt.Errorf("app: 创建模拟驱动失败: %w", err)
	}

	result, err := driver.RuleReplay(ctx, sim.RuleOptions{AllowShort: o.cfg.Backtest.AllowShort})
	if err != nil {
		return tradingOutcome{}, fmt.Errorf("app: 规则回放失败: %w", err)
	}

	summary, _, err := metrics.Compute(result.Records, metrics.Options{
		InitialCapital: o.cfg.Backtest.InitialCapital,
		Annualize:      true,
	})
	if err != nil {
		return tradingOutcome{}, fmt.Errorf("app: 计算交易指标失败: %w", err)
	}

	buyHold := metrics.BuyAndHold(
		o.series.Close[0],
		o.series.Close[o.series.Len()-1],
		o.cfg.Backtest.InitialCapital,
	)

	return tradingOutcome{summary: summary, buyHold: buyHold, records: result.Records}, nil
}

// runAccuracy 将每根Bar的预测与次日实际价格配对并打分。
func (o *orchestrator) runAccuracy(_ context.Context) (accuracyOutcome, error) {
	pairs := metrics.AlignNextDay(o.series.Dates, o.series.ForecastPrice, o.series.Close)

	summary, err := metrics.Accuracy(pairs)
	if err != nil {
		return accuracyOutcome{}, err
	}

	return accuracyOutcome{summary: summary, scored: true}, nil
}

// persist 将两类结果写入运行存储，精度结果未产出时只落交易回测。
func (o *orchestrator) persist(ctx context.Context, startedAt time.Time, trading tradingOutcome, accuracy accuracyOutcome) error {
	if _, err := o.runs.SaveRun(ctx, "trading", startedAt, trading.summary, trading.records); err != nil {
		return err
	}
	if accuracy.scored {
		if _, err := o.runs.SaveRun(ctx, "accuracy", startedAt, accuracy.summary, nil); err != nil {
			return err
		}
	}
	return nil
}

func (o *orchestrator) report(trading tradingOutcome, accuracy accuracyOutcome) {
	start := o.series.Dates[0]
	end := o.series.Dates[o.series.Len()-1]

	fmt.Println(report.Trading(report.TradingInput{
		Start:    start,
		End:      end,
		Strategy: trading.summary,
		BuyHold:  trading.buyHold,
	}))

	if accuracy.scored {
		fmt.Println(report.Accuracy(start, end, accuracy.summary))
	}
}

func chargePolicy(name string) sim.ChargePolicy {
	if name == "step" {
		return sim.ChargeEveryStep
	}
	return sim.ChargeOnFlip
}
