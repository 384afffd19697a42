package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the top-level clauderank configuration.
type Config struct {
	ClaudeHome  string      `mapstructure:"claude_home" validate:"required"`
	DataDir     string      `mapstructure:"data_dir" validate:"required"`
	Log         Log         `mapstructure:"log"`
	Streak      Streak      `mapstructure:"streak"`
	Sync        Sync        `mapstructure:"sync"`
	Watch       Watch       `mapstructure:"watch"`
	Leaderboard Leaderboard `mapstructure:"leaderboard"`
}

// Log defines logging preferences.
type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Streak selects what happens to a streak after a missed day.
type Streak struct {
	Recovery string `mapstructure:"recovery" validate:"oneof=none freeze grace"`
}

// Sync defines sync throttling.
type Sync struct {
	MinInterval time.Duration `mapstructure:"min_interval" validate:"gte=0"`
}

// Watch defines watcher behavior.
type Watch struct {
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

// Leaderboard holds the shared leaderboard directory and the name this
// machine publishes under.
type Leaderboard struct {
	Dir      string `mapstructure:"dir"`
	Username string `mapstructure:"username" validate:"omitempty,max=39,excludesall=/\\"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func newViper(cfgFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault("claude_home", DefaultClaudeHome)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("log.format", DefaultLog.Format)
	v.SetDefault("streak.recovery", RecoveryNone)
	v.SetDefault("sync.min_interval", DefaultSync.MinInterval)
	v.SetDefault("watch.debounce", DefaultWatch.Debounce)
	v.SetDefault("leaderboard.dir", "")
	v.SetDefault("leaderboard.username", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	return v
}

// readOptional reads the config file if it exists; a missing file is not
// an error.
func readOptional(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Load reads configuration from the given path (or the default location)
// and returns a validated Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := newViper(cfgFile)
	if err := readOptional(v); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	cfg.ClaudeHome = expandPath(cfg.ClaudeHome)
	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.Leaderboard.Dir = expandPath(cfg.Leaderboard.Dir)

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors by config key rather than Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("mapstructure"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Validate checks enum and range constraints on cfg.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		key := strings.TrimPrefix(e.Namespace(), "Config.")
		msgs = append(msgs, fmt.Sprintf("%s %s", key, friendlyMessage(e)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "excludesall":
		return "must not contain path separators"
	default:
		return "is invalid"
	}
}

// Set writes key=value into the config file, creating it if needed, and
// returns the path written.
func Set(cfgFile, key, value string) (string, error) {
	v := newViper(cfgFile)
	if err := readOptional(v); err != nil {
		return "", fmt.Errorf("reading config: %w", err)
	}
	v.Set(key, value)

	path := v.ConfigFileUsed()
	if path == "" {
		path = filepath.Join(ConfigDir(), DefaultConfigFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}

// DBPath returns the full path to the SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
