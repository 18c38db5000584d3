package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/mq"
	"github.com/Behyna/bankgateway/pkg/mysql"
	"github.com/spf13/viper"
)

const envPrefix = "BANKGATEWAY"

type Config struct {
	API      API            `mapstructure:"api"`
	Database mysql.Config   `mapstructure:"database"`
	RabbitMQ mq.Config      `mapstructure:"rabbitmq"`
	Metrics  Metrics        `mapstructure:"metrics"`
	Gateway  gateway.Config `mapstructure:"gateway"`
}

type API struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
}

type Metrics struct {
	Enabled          bool          `mapstructure:"enabled"`
	Path             string        `mapstructure:"path"`
	CollectInterval  time.Duration `mapstructure:"collect-interval"`
	ServiceName      string        `mapstructure:"service-name"`
	ServiceVersion   string        `mapstructure:"service-version"`
	ServiceCommit    string        `mapstructure:"service-commit"`
	ServiceBuildDate string        `mapstructure:"service-build-date"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", ":8080")
	v.SetDefault("api.read-timeout", 10*time.Second)
	v.SetDefault("api.write-timeout", 60*time.Second)

	v.SetDefault("database.max-idle-conns", 10)
	v.SetDefault("database.max-open-conns", 50)
	v.SetDefault("database.conn-max-lifetime", time.Hour)
	v.SetDefault("database.log-level", "warn")

	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.exchange", "bankgateway")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.collect-interval", 15*time.Second)
	v.SetDefault("metrics.service-name", "bankgateway")
	v.SetDefault("metrics.service-version", "dev")

	v.SetDefault("gateway.table", gateway.DefaultTable)
	v.SetDefault("gateway.timezone", "Asia/Tehran")
	v.SetDefault("gateway.timeout", gateway.DefaultTimeout)
	v.SetDefault("gateway.paypal.mode", "sandbox")
	v.SetDefault("gateway.paypal.currency", "USD")
}

func Load() (*Config, error) {
	return LoadFrom("./config")
}

// LoadFrom reads config.yml from dir. BANKGATEWAY_ prefixed variables override
// file values, with dots and dashes written as underscores.
func LoadFrom(dir string) (cfg *Config, err error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	err = v.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Gateway.Init(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GatewayConfig hands the shared gateway section to the resolver.
func (c *Config) GatewayConfig() *gateway.Config {
	return &c.Gateway
}
