package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/passmgr"
	ConfigFileName    = "passmgr.yml"

	// DefaultPasswordExpiryTime is used by `expiry set` when no days are given
	DefaultPasswordExpiryTime = 90
	DefaultLogLevel           = "info"
)

// Environment variables read by Load
const (
	EnvConfigPath         = "PASSMGR_CONFIG_PATH"
	EnvPasswordHistory    = "PASSWORD_HISTORY_LIFE"
	EnvPasswordExpiryTime = "PASSWORD_EXPIRY_TIME"
	EnvLogLevel           = "PASSMGR_LOG_LEVEL"
)

// Config holds the password manager settings
type Config struct {
	// PasswordHistoryLife is the number of history entries kept per user.
	// It has no default; zero means not configured.
	PasswordHistoryLife int `yaml:"password_history_life" json:"password_history_life"`

	// PasswordExpiryTime is the default expiry period in days
	PasswordExpiryTime int `yaml:"password_expiry_time" json:"password_expiry_time"`

	// LogLevel is a logrus level name
	LogLevel string `yaml:"log_level" json:"log_level"`

	// sources tracks where each value came from
	sources map[string]string

	// invalid holds environment values that could not be parsed
	invalid map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// fileConfig is the passmgr.yml layout. Integers are pointers so an
// explicit 0 in the file is told apart from an absent key.
type fileConfig struct {
	PasswordHistoryLife *int   `yaml:"password_history_life"`
	PasswordExpiryTime  *int   `yaml:"password_expiry_time"`
	LogLevel            string `yaml:"log_level"`
}

// SettingError reports a missing or malformed setting
type SettingError struct {
	Setting string
	Value   string
	Reason  string
}

func (e *SettingError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s is not set: %s", e.Setting, e.Reason)
	}
	return fmt.Sprintf("invalid %s value %q: %s", e.Setting, e.Value, e.Reason)
}

var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

func newDefault() *Config {
	return &Config{
		PasswordExpiryTime: DefaultPasswordExpiryTime,
		LogLevel:           DefaultLogLevel,
		sources:            make(map[string]string),
		invalid:            make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv(EnvConfigPath)
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig fileConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{"password_history_life", "password_expiry_time", "log_level"}
}

func (c *Config) applyFileConfig(file *fileConfig) {
	if file.PasswordHistoryLife != nil {
		c.PasswordHistoryLife = *file.PasswordHistoryLife
		c.sources["password_history_life"] = "file"
	}
	if file.PasswordExpiryTime != nil {
		c.PasswordExpiryTime = *file.PasswordExpiryTime
		c.sources["password_expiry_time"] = "file"
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		c.sources["log_level"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := strings.TrimSpace(os.Getenv(EnvPasswordHistory)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.PasswordHistoryLife = i
		} else {
			c.invalid[EnvPasswordHistory] = val
		}
		c.sources["password_history_life"] = "environment"
	}
	if val := strings.TrimSpace(os.Getenv(EnvPasswordExpiryTime)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.PasswordExpiryTime = i
		} else {
			c.invalid[EnvPasswordExpiryTime] = val
		}
		c.sources["password_expiry_time"] = "environment"
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// HistoryLife returns PASSWORD_HISTORY_LIFE, or a *SettingError when it is
// missing, malformed or not positive.
func (c *Config) HistoryLife() (int, error) {
	if val, ok := c.invalid[EnvPasswordHistory]; ok {
		return 0, &SettingError{Setting: EnvPasswordHistory, Value: val, Reason: "must be an integer"}
	}
	if c.PasswordHistoryLife == 0 && c.Source("password_history_life") == "default" {
		return 0, &SettingError{Setting: EnvPasswordHistory, Reason: "must be a positive integer"}
	}
	if c.PasswordHistoryLife <= 0 {
		return 0, &SettingError{
			Setting: EnvPasswordHistory,
			Value:   strconv.Itoa(c.PasswordHistoryLife),
			Reason:  "must be a positive integer",
		}
	}
	return c.PasswordHistoryLife, nil
}

// ExpiryTime returns PASSWORD_EXPIRY_TIME, or a *SettingError when it is
// malformed or negative. 0 is a valid value.
func (c *Config) ExpiryTime() (int, error) {
	if val, ok := c.invalid[EnvPasswordExpiryTime]; ok {
		return 0, &SettingError{Setting: EnvPasswordExpiryTime, Value: val, Reason: "must be an integer"}
	}
	if c.PasswordExpiryTime < 0 {
		return 0, &SettingError{
			Setting: EnvPasswordExpiryTime,
			Value:   strconv.Itoa(c.PasswordExpiryTime),
			Reason:  "must not be negative",
		}
	}
	return c.PasswordExpiryTime, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.HistoryLife(); err != nil {
		return err
	}
	if _, err := c.ExpiryTime(); err != nil {
		return err
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	historyLife := ""
	if val, ok := c.invalid[EnvPasswordHistory]; ok {
		historyLife = val
	} else if c.PasswordHistoryLife != 0 || c.Source("password_history_life") != "default" {
		historyLife = strconv.Itoa(c.PasswordHistoryLife)
	}
	expiryTime := strconv.Itoa(c.PasswordExpiryTime)
	if val, ok := c.invalid[EnvPasswordExpiryTime]; ok {
		expiryTime = val
	}
	return []Attribute{
		{Name: "password_history_life", Value: historyLife, Source: c.Source("password_history_life")},
		{Name: "password_expiry_time", Value: expiryTime, Source: c.Source("password_expiry_time")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-20s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-20s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-20s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
