package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Ashfaaq98/caseportal/internal/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	dbPath   string
	redisURL string
	logLevel string
	apiURL   string
)

// logger is shared by every command. The dashboard command redirects it to a
// file while the TUI owns the terminal.
var logger = logging.New("info", os.Stderr)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "caseportal",
	Short: "Terminal client for tracking eviction case progress",
	Long: `Caseportal lets a landlord client sign in with a case number and access code
and follow their eviction case from notice to possession.

Features:
- Case progress, timeline and next hearing at a glance
- Case documents, payment status and important dates
- Scriptable status and update commands for staff
- Local SQLite audit log with optional Redis activity stream`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.caseportal.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:5000/api", "Case API base URL")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/caseportal.db", "SQLite audit database path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis URL for the activity stream (empty disables it)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".caseportal" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".caseportal")
	}

	// CASEPORTAL_API_BASE_URL overrides api.base_url, and so on.
	viper.SetEnvPrefix("caseportal")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		logger.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
		watchConfig()
	}

	logging.SetLevel(logger, viper.GetString("log.level"))
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:5000/api")
	viper.SetDefault("api.timeout", 15*time.Second)
	viper.SetDefault("database.path", "./data/caseportal.db")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("session.default_case_number", "21456")
	viper.SetDefault("ui.theme", "dark")
	viper.SetDefault("firm.name", "DFW Eviction Pros")
	viper.SetDefault("firm.phone", "(945) 998-0643")
	viper.SetDefault("firm.email", "support@dfw-eviction.com")
	viper.SetDefault("firm.default_county", "Dallas")
	viper.SetDefault("firm.default_court", "JP 4-1")
}

// watchConfig reloads the log level when the config file changes. Other keys
// take effect on the next run.
func watchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := viper.GetString("log.level")
		if !logging.SetLevel(logger, level) {
			logger.WithField("level", level).Warn("invalid log level in config, using info")
			return
		}
		logger.WithFields(logrus.Fields{"file": e.Name, "level": level}).Info("config reloaded")
	})
	viper.WatchConfig()
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: viper.GetString("api.base_url"),
			Timeout: viper.GetDuration("api.timeout"),
		},
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("redis.url"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
		Session: SessionConfig{
			DefaultCaseNumber: viper.GetString("session.default_case_number"),
		},
		UI: UIConfig{
			Theme: viper.GetString("ui.theme"),
		},
		Firm: FirmConfig{
			Name:          viper.GetString("firm.name"),
			Phone:         viper.GetString("firm.phone"),
			Email:         viper.GetString("firm.email"),
			DefaultCounty: viper.GetString("firm.default_county"),
			DefaultCourt:  viper.GetString("firm.default_court"),
		},
	}
}

// Config represents the application configuration
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Session  SessionConfig  `mapstructure:"session"`
	UI       UIConfig       `mapstructure:"ui"`
	Firm     FirmConfig     `mapstructure:"firm"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SessionConfig struct {
	// DefaultCaseNumber fills in a login response that lacks a case number.
	// Empty turns such a response into a login failure.
	DefaultCaseNumber string `mapstructure:"default_case_number"`
}

type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

type FirmConfig struct {
	Name  string `mapstructure:"name"`
	Phone string `mapstructure:"phone"`
	Email string `mapstructure:"email"`
	// DefaultCounty and DefaultCourt fill case details the API leaves empty.
	DefaultCounty string `mapstructure:"default_county"`
	DefaultCourt  string `mapstructure:"default_court"`
}

func (c Config) String() string {
	return fmt.Sprintf("api=%s db=%s redis=%t theme=%s", c.API.BaseURL, c.Database.Path, c.Redis.URL != "", c.UI.Theme)
}
