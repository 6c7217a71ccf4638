package config

import (
	"context"
	"fmt"
	"os"

	"github.com/mwalsh/fixtrader/pkg/secrets"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	FIX     FIXConfig     `mapstructure:"fix"`
	Trading TradingConfig `mapstructure:"trading"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	GCP     GCPConfig     `mapstructure:"gcp"`
}

type FIXConfig struct {
	// Path to the quickfix session settings file (SenderCompID,
	// TargetCompID, host/port, heartbeat interval, ...).
	SettingsFile string `mapstructure:"settings_file"`

	// Optional credential carried on the Logon message.
	SessionPassword string `mapstructure:"session_password"`

	// Seconds to wait for logon before giving up.
	LogonTimeout int `mapstructure:"logon_timeout"`
}

type TradingConfig struct {
	Symbols          []string `mapstructure:"symbols"`
	OrderCount       int      `mapstructure:"order_count"`
	DurationMinutes  int      `mapstructure:"duration_minutes"`
	OrdersPerSecond  float64  `mapstructure:"orders_per_second"`
	CancelsPerSecond float64  `mapstructure:"cancels_per_second"`
	MinPrice         float64  `mapstructure:"min_price"`
	MaxPrice         float64  `mapstructure:"max_price"`
	MaxOrderQty      int64    `mapstructure:"max_order_qty"`
	SettleSeconds    int      `mapstructure:"settle_seconds"`
}

type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	AuthSecret string `mapstructure:"auth_secret"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GCPConfig struct {
	ProjectID       string              `mapstructure:"project_id"`
	UseSecrets      bool                `mapstructure:"use_secrets"`
	CredentialsFile string              `mapstructure:"credentials_file"`
	SecretNames     secrets.SecretNames `mapstructure:"secret_names"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/fixtrader")
	}

	// Read environment variables
	v.SetEnvPrefix("FIXTRADER")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override with environment variables if set
	overrideFromEnv(&config)

	// Load secrets from GCP if enabled
	if config.GCP.UseSecrets && config.GCP.ProjectID != "" {
		ctx := context.Background()
		logger := logrus.New()
		if err := loadSecretsFromGCP(ctx, &config, logger); err != nil {
			return nil, fmt.Errorf("error loading secrets from GCP: %w", err)
		}
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// FIX session defaults
	v.SetDefault("fix.settings_file", "./config/fix.cfg")
	v.SetDefault("fix.logon_timeout", 30)

	// Trading defaults
	v.SetDefault("trading.symbols", []string{"MSFT", "AAPL", "BAC"})
	v.SetDefault("trading.order_count", 1000)
	v.SetDefault("trading.duration_minutes", 5)
	v.SetDefault("trading.orders_per_second", 10)
	v.SetDefault("trading.cancels_per_second", 10)
	v.SetDefault("trading.min_price", 100)
	v.SetDefault("trading.max_price", 200)
	v.SetDefault("trading.max_order_qty", 100)
	v.SetDefault("trading.settle_seconds", 30)

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.auth_secret", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// GCP defaults
	v.SetDefault("gcp.use_secrets", false)
	v.SetDefault("gcp.project_id", "")
	v.SetDefault("gcp.credentials_file", "")

	// Secret name defaults
	secretNames := secrets.DefaultSecretNames()
	v.SetDefault("gcp.secret_names.session_password", secretNames.SessionPassword)
	v.SetDefault("gcp.secret_names.api_auth_secret", secretNames.APIAuthSecret)
}

func overrideFromEnv(config *Config) {
	if settingsFile := os.Getenv("FIX_SETTINGS_FILE"); settingsFile != "" {
		config.FIX.SettingsFile = settingsFile
	}
	if password := os.Getenv("FIX_SESSION_PASSWORD"); password != "" {
		config.FIX.SessionPassword = password
	}
	if authSecret := os.Getenv("API_AUTH_SECRET"); authSecret != "" {
		config.Server.AuthSecret = authSecret
	}

	// GCP configuration from environment
	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		config.GCP.ProjectID = projectID
	}
	if useSecrets := os.Getenv("GCP_USE_SECRETS"); useSecrets == "true" {
		config.GCP.UseSecrets = true
	}
}

func loadSecretsFromGCP(ctx context.Context, config *Config, logger *logrus.Logger) error {
	secretManager, err := secrets.NewGCPSecretManager(ctx, config.GCP.ProjectID, config.GCP.CredentialsFile, logger)
	if err != nil {
		return fmt.Errorf("failed to create secret manager: %w", err)
	}
	defer secretManager.Close()

	// Only load secrets if they're not already set
	if config.FIX.SessionPassword == "" {
		config.FIX.SessionPassword = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.SessionPassword, "")
	}
	if config.Server.AuthSecret == "" {
		config.Server.AuthSecret = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.APIAuthSecret, "")
	}

	logger.Info("Successfully loaded secrets from GCP Secret Manager")
	return nil
}
