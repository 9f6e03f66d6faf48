package config

import (
	"fmt"
	"playstore-predictor/pkg/common"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger    `mapstructure:"logger"`
	DB        Database  `mapstructure:"database"`
	API       API       `mapstructure:"api"`
	Predictor Predictor `mapstructure:"predictor"`
	View      View      `mapstructure:"view"`
	Realtime  Realtime  `mapstructure:"realtime"`
	Redis     Redis     `mapstructure:"redis"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port      int     `mapstructure:"port"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// Predictor configures both the client of the remote prediction service and
// the port the bundled predictor process listens on.
type Predictor struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Port                int           `mapstructure:"port"`
	MaxRequestPerSecond int           `mapstructure:"max_request_per_second"`
	EmbeddedUploader    bool          `mapstructure:"embedded_uploader"`
	AllowOrigins        []string      `mapstructure:"allow_origins"`
}

type View struct {
	HistoryLimit    int           `mapstructure:"history_limit"`
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	AckTimeout      time.Duration `mapstructure:"ack_timeout"`
	IdleExpiration  time.Duration `mapstructure:"idle_expiration"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type Realtime struct {
	Channel              string        `mapstructure:"channel"`
	ReconnectMaxInterval time.Duration `mapstructure:"reconnect_max_interval"`
	SubscriberBuffer     int           `mapstructure:"subscriber_buffer"`
	HeartbeatInterval    time.Duration `mapstructure:"heartbeat_interval"`
}

type Redis struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	Queue        string        `mapstructure:"queue"`
	BlockTimeout time.Duration `mapstructure:"block_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.log_level", "Warn")

	v.SetDefault("api.port", 3000)
	v.SetDefault("api.rate_limit", 10)
	v.SetDefault("api.rate_burst", 30)

	v.SetDefault("predictor.base_url", "http://localhost:5001")
	v.SetDefault("predictor.timeout", 10*time.Second)
	v.SetDefault("predictor.port", 5001)
	v.SetDefault("predictor.max_request_per_second", 5)
	v.SetDefault("predictor.embedded_uploader", true)
	v.SetDefault("predictor.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("view.history_limit", 50)
	v.SetDefault("view.settle_delay", time.Second)
	v.SetDefault("view.ack_timeout", 5*time.Second)
	v.SetDefault("view.idle_expiration", 30*time.Minute)
	v.SetDefault("view.cleanup_interval", 5*time.Minute)

	v.SetDefault("realtime.channel", common.ChannelPredictionHistoryChanges)
	v.SetDefault("realtime.reconnect_max_interval", 30*time.Second)
	v.SetDefault("realtime.subscriber_buffer", 16)
	v.SetDefault("realtime.heartbeat_interval", 15*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.queue", "upload_queue")
	v.SetDefault("redis.block_timeout", 5*time.Second)
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file loaded:", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the view controller cannot run with.
func (c *Config) Validate() error {
	if c.View.HistoryLimit <= 0 {
		return fmt.Errorf("view.history_limit must be positive, got %d", c.View.HistoryLimit)
	}
	if c.View.SettleDelay < 0 {
		return fmt.Errorf("view.settle_delay must not be negative, got %s", c.View.SettleDelay)
	}
	if c.Predictor.BaseURL == "" {
		return fmt.Errorf("predictor.base_url is required")
	}
	if c.Realtime.Channel != common.ChannelPredictionHistoryChanges {
		return fmt.Errorf("realtime.channel must be %q, the channel the prediction_history trigger notifies, got %q",
			common.ChannelPredictionHistoryChanges, c.Realtime.Channel)
	}
	return nil
}
