package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Chart    ChartConfig    `mapstructure:"chart"`
	Fonts    FontsConfig    `mapstructure:"fonts"`
	Log      LogConfig      `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type ChartConfig struct {
	OutputPath string  `mapstructure:"output_path"`
	DPI        float64 `mapstructure:"dpi"`
	Mkdir      bool    `mapstructure:"mkdir"` // create the output directory when missing
}

// FontsConfig - empty paths mean "search the usual system locations".
type FontsConfig struct {
	Regular      string `mapstructure:"regular"`
	Bold         string `mapstructure:"bold"`
	EmbeddedOnly bool   `mapstructure:"embedded_only"`
}

type LogConfig struct {
	Dir     string `mapstructure:"dir"`
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type TelegramConfig struct {
	BotToken       string  `mapstructure:"bot_token"`
	ChatID         int64   `mapstructure:"chat_id"`
	RatePerSecond  float64 `mapstructure:"rate_per_second"`
	MaxRetries     int     `mapstructure:"max_retries"`
	RequestTimeout int     `mapstructure:"request_timeout"` // seconds
}

var (
	ErrMissingBotToken = errors.New("telegram.bot_token is required")
	ErrMissingChatID   = errors.New("telegram.chat_id is required")
)

// LoadConfig reads configuration in increasing priority:
// 1. defaults
// 2. config.yaml in the working directory
// 3. .env file and environment
// 4. flags from the given set (may be nil)
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setupEnvAliases(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setupEnvAliases(v *viper.Viper) {
	// CHART_OUTPUT_PATH -> chart.output_path and so on come from AutomaticEnv;
	// these are the shorter names used in .env files.
	v.BindEnv("chart.output_path", "CHART_OUTPUT_PATH", "OUTPUT_PATH")
	v.BindEnv("chart.dpi", "CHART_DPI")
	v.BindEnv("chart.mkdir", "CHART_MKDIR")

	v.BindEnv("fonts.regular", "FONT_REGULAR")
	v.BindEnv("fonts.bold", "FONT_BOLD")
	v.BindEnv("fonts.embedded_only", "FONT_EMBEDDED_ONLY")

	v.BindEnv("log.dir", "LOG_DIR")
	v.BindEnv("log.level", "LOG_LEVEL")

	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	v.BindEnv("telegram.rate_per_second", "TELEGRAM_RATE_PER_SECOND")
	v.BindEnv("telegram.max_retries", "TELEGRAM_MAX_RETRIES")
	v.BindEnv("telegram.request_timeout", "TELEGRAM_REQUEST_TIMEOUT")
}

func setDefaults(v *viper.Viper) {
	// Chart
	v.SetDefault("chart.output_path", "assets/charts/testing-times-ai-gap.png")
	v.SetDefault("chart.dpi", 300.0)
	v.SetDefault("chart.mkdir", false)

	// Fonts
	v.SetDefault("fonts.regular", "")
	v.SetDefault("fonts.bold", "")
	v.SetDefault("fonts.embedded_only", false)

	// Log
	v.SetDefault("log.dir", "") // file log is opt-in
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)

	// Telegram
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("telegram.rate_per_second", 1.0)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.request_timeout", 30)
}

// RegisterFlags adds the configuration flags to a command's flag set.
// Flag names match the config keys so viper can bind them directly.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("chart.output_path", "assets/charts/testing-times-ai-gap.png", "Output PNG path (env: CHART_OUTPUT_PATH)")
	flags.Float64("chart.dpi", 300, "Output resolution in dots per inch (env: CHART_DPI)")
	flags.Bool("chart.mkdir", false, "Create the output directory if it is missing (env: CHART_MKDIR)")

	flags.String("fonts.regular", "", "Path to the regular TTF font (env: FONT_REGULAR)")
	flags.String("fonts.bold", "", "Path to the bold TTF font (env: FONT_BOLD)")
	flags.Bool("fonts.embedded_only", false, "Skip system fonts and use the embedded Go fonts (env: FONT_EMBEDDED_ONLY)")

	flags.String("log.dir", "", "Directory for app.log, empty (default) disables file logging (env: LOG_DIR)")
	flags.String("log.level", "info", "File log level: debug, info, warn, error (env: LOG_LEVEL)")
}

// RegisterTelegramFlags adds the publish-only flags.
func RegisterTelegramFlags(flags *pflag.FlagSet) {
	flags.String("telegram.bot_token", "", "Telegram bot token (env: TELEGRAM_BOT_TOKEN)")
	flags.Int64("telegram.chat_id", 0, "Telegram chat to post the chart to (env: TELEGRAM_CHAT_ID)")
	flags.Float64("telegram.rate_per_second", 1, "Max Telegram requests per second (env: TELEGRAM_RATE_PER_SECOND)")
	flags.Int("telegram.max_retries", 3, "Retries for retryable Telegram errors (env: TELEGRAM_MAX_RETRIES)")
}

// bindFlags binds only flags the user actually set, so unset flags do not
// shadow config.yaml or env values with their defaults.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || !f.Changed {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

func validateConfig(cfg *Config) error {
	if cfg.Chart.OutputPath == "" {
		return fmt.Errorf("chart.output_path must not be empty")
	}
	if cfg.Chart.DPI <= 0 {
		return fmt.Errorf("chart.dpi must be positive, got %v", cfg.Chart.DPI)
	}
	if cfg.Telegram.RatePerSecond <= 0 {
		return fmt.Errorf("telegram.rate_per_second must be positive, got %v", cfg.Telegram.RatePerSecond)
	}
	if cfg.Telegram.MaxRetries < 0 {
		return fmt.Errorf("telegram.max_retries must not be negative")
	}
	return nil
}

// ValidateTelegram checks the settings only the publish command needs.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return ErrMissingBotToken
	}
	if c.Telegram.ChatID == 0 {
		return ErrMissingChatID
	}
	return nil
}
