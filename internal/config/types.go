package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了回测系统运行所需的全部配置项。
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Backtest   BacktestConfig   `mapstructure:"backtest"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Reward     RewardConfig     `mapstructure:"reward"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// DatasetConfig 描述输入时间序列的位置与回看窗口。
type DatasetConfig struct {
	Path         string `mapstructure:"path"`
	LookbackDays int    `mapstructure:"lookback_days"`
}

// BacktestConfig 控制规则回测的资金与策略形态。
type BacktestConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	AllowShort     bool    `mapstructure:"allow_short"`
}

// SimulationConfig 管理仓位约束与交易成本。
// 基础费率用于评估；训练费率仅供策略训练阶段的成本渐进使用。
type SimulationConfig struct {
	MinHoldingDays       int     `mapstructure:"min_holding_days"`
	RollingWindow        int     `mapstructure:"rolling_window"`
	Epsilon              float64 `mapstructure:"epsilon"`
	BaseTransactionCost  float64 `mapstructure:"base_transaction_cost"`
	BaseSlippage         float64 `mapstructure:"base_slippage"`
	TrainTransactionCost float64 `mapstructure:"train_transaction_cost"`
	TrainSlippage        float64 `mapstructure:"train_slippage"`
	ChargePolicy         string  `mapstructure:"charge_policy"`
	RandomStart          bool    `mapstructure:"random_start"`
}

// RewardConfig 管理策略回放时的奖励整形系数，全部为0时退化为净收益。
type RewardConfig struct {
	Mode              string  `mapstructure:"mode"`
	HoldingRewardCoef float64 `mapstructure:"holding_reward_coef"`
	MinTradeHold      int     `mapstructure:"min_trade_hold"`
	MomentumCoef      float64 `mapstructure:"momentum_coef"`
	VolPenalty        float64 `mapstructure:"vol_penalty"`
	AlignmentCoef     float64 `mapstructure:"alignment_coef"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Dataset.Path == "" {
		err = multierr.Append(err, errors.New("dataset.path 不能为空"))
	}
	if c.Dataset.LookbackDays < 0 {
		err = multierr.Append(err, errors.New("dataset.lookback_days 不能为负"))
	}
	if c.Backtest.InitialCapital <= 0 {
		err = multierr.Append(err, errors.New("backtest.initial_capital 必须大于0"))
	}
	if c.Simulation.MinHoldingDays < 1 {
		err = multierr.Append(err, errors.New("simulation.min_holding_days 必须大于等于1"))
	}
	if c.Simulation.RollingWindow < 2 {
		err = multierr.Append(err, errors.New("simulation.rolling_window 必须大于等于2"))
	}
	if c.Simulation.Epsilon <= 0 {
		err = multierr.Append(err, errors.New("simulation.epsilon 必须大于0"))
	}
	if c.Simulation.BaseTransactionCost < 0 || c.Simulation.BaseSlippage < 0 {
		err = multierr.Append(err, errors.New("simulation 基础费率不能为负"))
	}
	if c.Simulation.TrainTransactionCost < 0 || c.Simulation.TrainSlippage < 0 {
		err = multierr.Append(err, errors.New("simulation 训练费率不能为负"))
	}
	if c.Simulation.TrainTransactionCost > c.Simulation.BaseTransactionCost {
		err = multierr.Append(err, errors.New("simulation.train_transaction_cost 不应高于基础费率"))
	}
	if c.Simulation.TrainSlippage > c.Simulation.BaseSlippage {
		err = multierr.Append(err, errors.New("simulation.train_slippage 不应高于基础滑点"))
	}
	switch c.Simulation.ChargePolicy {
	case "flip", "step":
	default:
		err = multierr.Append(err, fmt.Errorf("simulation.charge_policy 取值非法: %q", c.Simulation.ChargePolicy))
	}
	switch c.Reward.Mode {
	case "net", "risk_adjusted":
	default:
		err = multierr.Append(err, fmt.Errorf("reward.mode 取值非法: %q", c.Reward.Mode))
	}
	if c.Reward.MinTradeHold < 0 {
		err = multierr.Append(err, errors.New("reward.min_trade_hold 不能为负"))
	}
	if c.Reward.HoldingRewardCoef < 0 || c.Reward.MomentumCoef < 0 || c.Reward.VolPenalty < 0 || c.Reward.AlignmentCoef < 0 {
		err = multierr.Append(err, errors.New("reward 整形系数不能为负"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
