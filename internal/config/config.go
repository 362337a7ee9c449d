package config

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "alphasignal"
)

// Load 读取配置文件并结合环境变量返回 Config。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")

	v.SetDefault("dataset.path", "data/final/features/engineered_features.csv")
	v.SetDefault("dataset.lookback_days", 180)

	v.SetDefault("backtest.initial_capital", 10000)
	v.SetDefault("backtest.allow_short", false)

	v.SetDefault("simulation.min_holding_days", 1)
	v.SetDefault("simulation.rolling_window", 30)
	v.SetDefault("simulation.epsilon", 1e-6)
	v.SetDefault("simulation.base_transaction_cost", 0.0003)
	v.SetDefault("simulation.base_slippage", 0.0007)
	v.SetDefault("simulation.train_transaction_cost", 0.0001)
	v.SetDefault("simulation.train_slippage", 0.0002)
	v.SetDefault("simulation.charge_policy", "flip")
	v.SetDefault("simulation.random_start", false)

	v.SetDefault("reward.mode", "net")
	v.SetDefault("reward.holding_reward_coef", 0.0)
	v.SetDefault("reward.min_trade_hold", 1)
	v.SetDefault("reward.momentum_coef", 0.0)
	v.SetDefault("reward.vol_penalty", 0.0)
	v.SetDefault("reward.alignment_coef", 0.0)

	v.SetDefault("database.path", "data/alphasignal.db")
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 4)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.in_memory", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
