package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/config"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/indicator"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/market"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/sim"
	"github.com/MuhammadAkmal03/AlphaSignal/internal/store"
)

// App 聚合核心依赖并驱动回测生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// Run 加载数据集并并行执行交易回测与预测精度回测，
// 结果落库并以文本报告输出。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("回测系统已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("dataset", a.cfg.Dataset.Path),
		zap.Int("lookback_days", a.cfg.Dataset.LookbackDays),
	)

	bars, err := market.LoadCSV(a.cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("app: 加载数据集失败: %w", err)
	}

	series := market.NewSeries(bars)
	if a.cfg.Dataset.LookbackDays > 0 {
		series = series.Tail(a.cfg.Dataset.LookbackDays)
	}
	a.logger.Info("数据集加载完成",
		zap.Int("bars", series.Len()),
		zap.Time("start", series.Dates[0]),
		zap.Time("end", series.Dates[series.Len()-1]),
	)

	frame, err := indicator.BuildFrame(series, a.cfg.Simulation.RollingWindow)
	if err != nil {
		return fmt.Errorf("app: 构建指标失败: %w", err)
	}

	runStore, err := store.NewRunStore(a.store, a.logger)
	if err != nil {
		return err
	}

	orch := newOrchestrator(a.cfg, a.logger, runStore, series, frame)
	startedAt := time.Now().UTC()

	var (
		tradingOut  tradingOutcome
		accuracyOut accuracyOutcome
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := orch.runTrading(gctx)
		if err != nil {
			return err
		}
		tradingOut = out
		return nil
	})
	g.Go(func() error {
		out, err := orch.runAccuracy(gctx)
		if err != nil {
			if errors.Is(err, sim.ErrInsufficientData) {
				a.logger.Warn("可用预测样本不足，跳过精度回测")
				return nil
			}
			return err
		}
		accuracyOut = out
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			a.logger.Info("回测被中断，已持久化的结果保持不变")
			return nil
		}
		return err
	}

	if err := orch.persist(ctx, startedAt, tradingOut, accuracyOut); err != nil {
		a.logger.Error("结果落库失败", zap.Error(err))
	}

	orch.report(tradingOut, accuracyOut)

	a.logger.Info("回测完成",
		zap.Float64("net_total_return", tradingOut.summary.NetTotalReturn),
		zap.Float64("sharpe", tradingOut.summary.Sharpe),
		zap.Int("completed_trades", tradingOut.summary.CompletedTrades),
	)

	return nil
}
