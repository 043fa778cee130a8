package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-threshold/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/rxtech-lab/argo-threshold/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	for _, key := range []string{"POLYGON_API_KEY", "BINANCE_API_KEY", "BINANCE_SECRET_KEY", "ARGO_STORE_PATH"} {
		suite.T().Setenv(key, "")
	}
}

func (suite *ConfigTestSuite) writeConfig(content string) string {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *ConfigTestSuite) TestLoadWithoutFileUsesDefaults() {
	cfg, err := Load("")
	suite.Require().NoError(err)
	suite.Equal(Default(), cfg)
}

func (suite *ConfigTestSuite) TestLoadFile() {
	path := suite.writeConfig(`
provider: FILE
data_path: ./data/AAPL.parquet
store_path: ./runs.duckdb
listen_addr: 127.0.0.1:9000
log_level: debug
engine:
  initial_capital: 50000
  rsi_period: 10
`)

	cfg, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal(provider.ProviderFile, cfg.Provider)
	suite.Equal("./data/AAPL.parquet", cfg.DataPath)
	suite.Equal("./runs.duckdb", cfg.StorePath)
	suite.Equal("127.0.0.1:9000", cfg.ListenAddr)
	suite.Equal("debug", cfg.LogLevel)

	engineYAML, err := cfg.EngineYAML()
	suite.Require().NoError(err)

	engineConfig, err := engine.ParseConfig(engineYAML)
	suite.Require().NoError(err)
	suite.Equal(50000.0, engineConfig.InitialCapital)
	suite.Equal(10, engineConfig.RSIPeriod)
	suite.Equal(engine.DefaultConfig().SellThreshold, engineConfig.SellThreshold)
}

func (suite *ConfigTestSuite) TestEnvOverrides() {
	suite.T().Setenv("POLYGON_API_KEY", "poly-key")
	suite.T().Setenv("BINANCE_API_KEY", "bin-key")
	suite.T().Setenv("BINANCE_SECRET_KEY", "bin-secret")
	suite.T().Setenv("ARGO_STORE_PATH", "/tmp/override.duckdb")

	path := suite.writeConfig(`
provider: polygon
polygon_api_key: from-file
store_path: ./runs.duckdb
`)

	cfg, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal("poly-key", cfg.PolygonApiKey)
	suite.Equal("/tmp/override.duckdb", cfg.StorePath)

	providerConfig := cfg.ProviderConfig()
	suite.Equal("poly-key", providerConfig.PolygonApiKey)
	suite.Equal("bin-key", providerConfig.BinanceApiKey)
	suite.Equal("bin-secret", providerConfig.BinanceSecretKey)
}

func (suite *ConfigTestSuite) TestInvalidConfigs() {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown provider", content: "provider: yahoo"},
		{name: "file provider without data path", content: "provider: file"},
		{name: "empty listen address", content: "listen_addr: \"\""},
		{name: "unknown log level", content: "log_level: chatty"},
		{name: "malformed yaml", content: "provider: [polygon"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := Load(suite.writeConfig(tc.content))
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (suite *ConfigTestSuite) TestMissingFile() {
	_, err := Load(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestEngineYAMLWithoutBlock() {
	engineYAML, err := Default().EngineYAML()
	suite.Require().NoError(err)
	suite.Empty(engineYAML)
}
