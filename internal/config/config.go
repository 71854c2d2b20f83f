package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Synthesis SynthesisConfig `yaml:"synthesis" mapstructure:"synthesis"`
	Capsule   CapsuleConfig   `yaml:"capsule" mapstructure:"capsule"`
	Sync      SyncConfig      `yaml:"sync" mapstructure:"sync"`
	Phone     PhoneConfig     `yaml:"phone" mapstructure:"phone"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SynthesisConfig holds Synthesis API credentials.
type SynthesisConfig struct {
	Host   string `yaml:"host" mapstructure:"host"`
	Key    string `yaml:"key" mapstructure:"key"`
	Secret string `yaml:"secret" mapstructure:"secret"`
}

// CapsuleConfig holds Capsule CRM credentials. UserID is optional: when set
// the sync runs against that user's phone numbers, otherwise the token's
// owner is auto-detected.
type CapsuleConfig struct {
	Host      string  `yaml:"host" mapstructure:"host"`
	Token     string  `yaml:"token" mapstructure:"token"`
	UserID    string  `yaml:"user_id" mapstructure:"user_id"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SyncConfig configures pipeline behavior.
type SyncConfig struct {
	MatchPolicy string `yaml:"match_policy" mapstructure:"match_policy"`
}

// PhoneConfig configures number normalization. Defaults are GB.
type PhoneConfig struct {
	CountryCode string `yaml:"country_code" mapstructure:"country_code"`
	IntlPrefix  string `yaml:"intl_prefix" mapstructure:"intl_prefix"`
	TrunkPrefix string `yaml:"trunk_prefix" mapstructure:"trunk_prefix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CAPSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("sync.match_policy", "strict")
	v.SetDefault("capsule.rate_limit", 4.0)
	v.SetDefault("phone.country_code", "44")
	v.SetDefault("phone.intl_prefix", "00")
	v.SetDefault("phone.trunk_prefix", "0")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the credentials a sync run cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.Synthesis.Host == "" {
		missing = append(missing, "synthesis.host")
	}
	if c.Synthesis.Key == "" {
		missing = append(missing, "synthesis.key")
	}
	if c.Synthesis.Secret == "" {
		missing = append(missing, "synthesis.secret")
	}
	if c.Capsule.Host == "" {
		missing = append(missing, "capsule.host")
	}
	if c.Capsule.Token == "" {
		missing = append(missing, "capsule.token")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
