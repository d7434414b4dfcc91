package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName names the XDG sub-directories used for config and data.
const AppName = "wtl"

// Config is the root configuration for wtl, stored in
// $XDG_CONFIG_HOME/wtl/config.yaml.
type Config struct {
	// DataDir holds log.json, overtimes.json and activity.json.
	DataDir string `mapstructure:"data_dir"`
	// Reference is the target working time per day.
	Reference time.Duration `mapstructure:"reference"`
	// Editor opens raw store files for manual correction.
	Editor   string         `mapstructure:"editor"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Activity ActivityConfig `mapstructure:"activity"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ScheduleConfig holds the independent tick cadences of the run loop.
type ScheduleConfig struct {
	OvertimeInterval time.Duration `mapstructure:"overtime_interval"`
	ActivityInterval time.Duration `mapstructure:"activity_interval"`
}

// ActivityConfig controls the activity aggregator.
type ActivityConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	FlushEvery int  `mapstructure:"flush_every"`
	// ForegroundCommand prints the name of the foreground process.
	ForegroundCommand string `mapstructure:"foreground_command"`
	// IdleCommand prints the milliseconds since the last keyboard or mouse input.
	IdleCommand string `mapstructure:"idle_command"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig enables the prometheus endpoint when Address is set.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// DefaultPath returns $XDG_CONFIG_HOME/wtl/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultDataDir returns $XDG_DATA_HOME/wtl.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultEditor returns $VISUAL, $EDITOR or vi.
func DefaultEditor() string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return "vi"
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# wtl configuration
#
# All settings are optional; the defaults below are used when a key is
# missing. Every key can also be set through the environment, e.g.
# WTL_REFERENCE=7h30m or WTL_SCHEDULE_OVERTIME_INTERVAL=30s.

# Directory holding log.json, overtimes.json and activity.json.
# Empty means $XDG_DATA_HOME/wtl.
data_dir: ""

# Target working time per day. Reaching it closes the running interval,
# records the overtime and shows a notification once per day.
reference: 8h

# Program used by "wtl edit". Empty means $VISUAL, $EDITOR or vi.
editor: ""

schedule:
  # How often "wtl run" checks for overtime.
  overtime_interval: 60s
  # How often "wtl run" samples keyboard/mouse activity.
  activity_interval: 1s

activity:
  enabled: true
  # Activity ticks between writes of activity.json.
  flush_every: 60
  # Command printing the foreground process name, e.g.
  #   sh -c 'ps -o comm= -p $(xdotool getactivewindow getwindowpid)'
  # Empty disables per-process attribution.
  foreground_command: ""
  # Command printing milliseconds since the last input, e.g. xprintidle.
  idle_command: ""

logging:
  # debug, info, warn or error
  level: info
  # text or json
  format: text

metrics:
  # Listen address for /metrics, e.g. 127.0.0.1:9465. Empty disables it.
  address: ""
`

// Load reads the config at path, creating it with annotated defaults on first
// run. Environment variables prefixed WTL_ override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	// Fill empty fields so callers always get a usable Config.
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if cfg.Editor == "" {
		cfg.Editor = DefaultEditor()
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("reference", "8h")
	v.SetDefault("editor", "")
	v.SetDefault("schedule.overtime_interval", "60s")
	v.SetDefault("schedule.activity_interval", "1s")
	v.SetDefault("activity.enabled", true)
	v.SetDefault("activity.flush_every", 60)
	v.SetDefault("activity.foreground_command", "")
	v.SetDefault("activity.idle_command", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("metrics.address", "")
}

func validate(cfg *Config) error {
	if cfg.Reference <= 0 {
		return fmt.Errorf("reference must be positive, got %s", cfg.Reference)
	}
	if cfg.Schedule.OvertimeInterval <= 0 {
		return fmt.Errorf("schedule.overtime_interval must be positive, got %s", cfg.Schedule.OvertimeInterval)
	}
	if cfg.Schedule.ActivityInterval <= 0 {
		return fmt.Errorf("schedule.activity_interval must be positive, got %s", cfg.Schedule.ActivityInterval)
	}
	if cfg.Activity.FlushEvery <= 0 {
		return fmt.Errorf("activity.flush_every must be positive, got %d", cfg.Activity.FlushEvery)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
