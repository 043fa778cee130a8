package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/rxtech-lab/argo-threshold/pkg/marketdata/provider"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider   = provider.ProviderPolygon
	DefaultStorePath  = "argo-threshold.duckdb"
	DefaultListenAddr = ":8080"
	DefaultLogLevel   = "info"
)

// AppConfig is the on-disk application configuration.
type AppConfig struct {
	// Provider selects where price series come from: polygon, binance or file.
	Provider provider.ProviderType `yaml:"provider" validate:"required,oneof=polygon binance file"`
	// DataPath is the parquet or CSV file read by the file provider.
	DataPath string `yaml:"data_path" validate:"required_if=Provider file"`
	// StorePath is the DuckDB file holding past runs. Empty keeps runs in memory.
	StorePath  string `yaml:"store_path"`
	ListenAddr string `yaml:"listen_addr" validate:"required"`
	LogLevel   string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	// Engine is passed to the backtest engine as its YAML configuration.
	Engine map[string]any `yaml:"engine"`

	PolygonApiKey    string `yaml:"polygon_api_key"`
	BinanceApiKey    string `yaml:"binance_api_key"`
	BinanceSecretKey string `yaml:"binance_secret_key"`
}

// Default returns the configuration used when no file is given.
func Default() AppConfig {
	return AppConfig{
		Provider:         DefaultProvider,
		DataPath:         "",
		StorePath:        DefaultStorePath,
		ListenAddr:       DefaultListenAddr,
		LogLevel:         DefaultLogLevel,
		Engine:           nil,
		PolygonApiKey:    "",
		BinanceApiKey:    "",
		BinanceSecretKey: "",
	}
}

// Load reads the file at path on top of the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %q", path)
		}

		cfg, err = Parse(data)
		if err != nil {
			return AppConfig{}, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults without validating.
func Parse(data []byte) (AppConfig, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	cfg.Provider = provider.ProviderType(strings.ToLower(string(cfg.Provider)))

	return cfg, nil
}

func (c AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid app configuration", err)
	}

	return nil
}

func (c *AppConfig) applyEnv() {
	c.PolygonApiKey = getEnv("POLYGON_API_KEY", c.PolygonApiKey)
	c.BinanceApiKey = getEnv("BINANCE_API_KEY", c.BinanceApiKey)
	c.BinanceSecretKey = getEnv("BINANCE_SECRET_KEY", c.BinanceSecretKey)
	c.StorePath = getEnv("ARGO_STORE_PATH", c.StorePath)
}

// ProviderConfig returns the credentials and paths the provider factory needs.
func (c AppConfig) ProviderConfig() provider.Config {
	return provider.Config{
		PolygonApiKey:    c.PolygonApiKey,
		BinanceApiKey:    c.BinanceApiKey,
		BinanceSecretKey: c.BinanceSecretKey,
		DataPath:         c.DataPath,
	}
}

// EngineYAML returns the engine block as a YAML document. An absent block yields "".
func (c AppConfig) EngineYAML() (string, error) {
	if len(c.Engine) == 0 {
		return "", nil
	}

	data, err := yaml.Marshal(c.Engine)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to encode engine config", err)
	}

	return string(data), nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return fallback
}
