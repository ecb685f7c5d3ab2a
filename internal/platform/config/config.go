package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Access    AccessConfig    `mapstructure:"access"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Workers   WorkersConfig   `mapstructure:"workers"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For is honoured.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
}

// RelayConfig controls outbound chat-webhook delivery.
type RelayConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	Username  string        `mapstructure:"username"`
	AvatarURL string        `mapstructure:"avatar_url"`
}

// AccessConfig holds the admin allow-list and the profile resolution policy.
type AccessConfig struct {
	AdminEmails          []string      `mapstructure:"admin_emails"`
	ProfileRetryAttempts int           `mapstructure:"profile_retry_attempts"`
	ProfileRetryDelay    time.Duration `mapstructure:"profile_retry_delay"`
}

type RateLimitConfig struct {
	PublicPerMinute int `mapstructure:"public_per_minute"`
	RelayPerMinute  int `mapstructure:"relay_per_minute"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type WorkersConfig struct {
	SessionSweepInterval time.Duration `mapstructure:"session_sweep_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.url", "file:./data/portal.db")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("jwt.access_token_ttl", 12*time.Hour)
	v.SetDefault("jwt.session_ttl", 7*24*time.Hour)

	v.SetDefault("relay.timeout", 10*time.Second)
	v.SetDefault("relay.username", "Mairie de Blaine County")
	v.SetDefault("relay.avatar_url", "https://cdn-icons-png.flaticon.com/512/1042/1042339.png")

	v.SetDefault("access.profile_retry_attempts", 3)
	v.SetDefault("access.profile_retry_delay", 250*time.Millisecond)

	v.SetDefault("rate_limit.public_per_minute", 30)
	v.SetDefault("rate_limit.relay_per_minute", 30)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("workers.session_sweep_interval", time.Hour)
}

func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
