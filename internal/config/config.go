package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment override, e.g.
// FLAKEGEN_FORMATTER_COMMAND=alejandra.
const envPrefix = "FLAKEGEN"

// Config holds user settings for flakegen.
type Config struct {
	// Path is the default output directory for init.
	Path      string          `mapstructure:"path"`
	Formatter FormatterConfig `mapstructure:"formatter"`
	Templates TemplatesConfig `mapstructure:"templates"`
}

// FormatterConfig configures the optional post-generation formatting pass.
type FormatterConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TemplatesConfig lists extra directories searched for user templates.
type TemplatesConfig struct {
	Dirs []string `mapstructure:"dirs"`
}

// Defaults returns the configuration used when no file or environment
// override is present.
func Defaults() Config {
	return Config{
		Path: ".",
		Formatter: FormatterConfig{
			Enabled: true,
			Command: "nixfmt",
			Timeout: 10 * time.Second,
		},
	}
}

// Load reads configuration from path, or from the first config file found in
// the lookup order when path is empty:
//  1. .flakegen/config.yaml (current directory)
//  2. <Dir()>/config.yaml
//
// A missing implicit config file is not an error. Environment variables
// prefixed with FLAKEGEN_ override file values. The second return value is the
// file that was read, or "" when defaults were used.
func Load(path string) (Config, string, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := path
	if file == "" {
		file = findConfigFile()
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, file, nil
}

// Validate rejects settings that cannot work at runtime.
func (c Config) Validate() error {
	var problems []string
	if c.Formatter.Enabled && strings.TrimSpace(c.Formatter.Command) == "" {
		problems = append(problems, "formatter.command is empty while formatter.enabled is true")
	}
	if c.Formatter.Timeout < 0 {
		problems = append(problems, "formatter.timeout must not be negative")
	}
	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("path", d.Path)
	v.SetDefault("formatter.enabled", d.Formatter.Enabled)
	v.SetDefault("formatter.command", d.Formatter.Command)
	v.SetDefault("formatter.args", d.Formatter.Args)
	v.SetDefault("formatter.timeout", d.Formatter.Timeout)
	v.SetDefault("templates.dirs", d.Templates.Dirs)
}

// findConfigFile returns the first existing config file in lookup order.
func findConfigFile() string {
	candidates := []string{filepath.Join(".flakegen", "config.yaml")}
	if dir := Dir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, "config.yaml"))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
