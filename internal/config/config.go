package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tanq16/driveloader/internal/utils"
)

const EnvPrefix = "DRIVELOADER"

// Config holds the settings shared by every command. Values come from flags, then
// DRIVELOADER_* environment variables, then the config file, then defaults.
type Config struct {
	Workers       int           `mapstructure:"workers"`
	Timeout       time.Duration `mapstructure:"timeout"`
	KATimeout     time.Duration `mapstructure:"keep_alive_timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	Proxy         string        `mapstructure:"proxy"`
	ProxyUsername string        `mapstructure:"proxy_username"`
	ProxyPassword string        `mapstructure:"proxy_password"`
	Headers       []string      `mapstructure:"headers"`
	CookieFile    string        `mapstructure:"cookie_file"`
	Debug         bool          `mapstructure:"debug"`
	LogFile       string        `mapstructure:"log_file"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"workers":            "workers",
	"timeout":            "timeout",
	"keep-alive-timeout": "keep_alive_timeout",
	"user-agent":         "user_agent",
	"proxy":              "proxy",
	"proxy-username":     "proxy_username",
	"proxy-password":     "proxy_password",
	"header":             "headers",
	"cookie-file":        "cookie_file",
	"debug":              "debug",
	"log-file":           "log_file",
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "driveloader", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 1)
	v.SetDefault("timeout", utils.DefaultTimeout)
	v.SetDefault("keep_alive_timeout", utils.DefaultKATimeout)
	v.SetDefault("user_agent", utils.DefaultUserAgent)
	v.SetDefault("headers", []string{})
}

// Load reads configuration into a fresh viper instance. An explicit configPath must exist;
// the default path is optional. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath()
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.KATimeout < 0 {
		return fmt.Errorf("keep_alive_timeout must not be negative")
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("invalid proxy: %w", err)
		}
	}
	return nil
}

// HTTPClientConfig converts the settings into client options. Credentials embedded in the
// proxy URL are used when no explicit username is configured.
func (c *Config) HTTPClientConfig() utils.HTTPClientConfig {
	proxyURL, proxyUsername, proxyPassword := c.Proxy, c.ProxyUsername, c.ProxyPassword
	if parsed, err := url.Parse(proxyURL); err == nil && parsed.User != nil && proxyUsername == "" {
		proxyUsername = parsed.User.Username()
		if password, set := parsed.User.Password(); set {
			proxyPassword = password
		}
		parsed.User = nil
		proxyURL = parsed.String()
	}
	userAgent := c.UserAgent
	if userAgent == "randomize" {
		userAgent = utils.GetRandomUserAgent()
	}
	return utils.HTTPClientConfig{
		Timeout:       c.Timeout,
		KATimeout:     c.KATimeout,
		ProxyURL:      proxyURL,
		ProxyUsername: proxyUsername,
		ProxyPassword: proxyPassword,
		UserAgent:     userAgent,
		Headers:       utils.ParseHeaderArgs(c.Headers),
	}
}
