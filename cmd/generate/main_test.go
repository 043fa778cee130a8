package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-threshold/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-threshold/internal/config"
	"github.com/stretchr/testify/suite"
)

type GenerateCmdTestSuite struct {
	suite.Suite
	tempDir string
	workDir string
}

func TestGenerateCmdSuite(t *testing.T) {
	suite.Run(t, new(GenerateCmdTestSuite))
}

func (suite *GenerateCmdTestSuite) SetupTest() {
	workDir, err := os.Getwd()
	suite.Require().NoError(err)
	suite.workDir = workDir

	suite.tempDir = suite.T().TempDir()
	suite.Require().NoError(os.Chdir(suite.tempDir))
}

func (suite *GenerateCmdTestSuite) TearDownTest() {
	suite.Require().NoError(os.Chdir(suite.workDir))
}

func (suite *GenerateCmdTestSuite) TestMainGeneratesAllFiles() {
	main()

	schemaContent, err := os.ReadFile(filepath.Join(suite.tempDir, "config", schemaName))
	suite.Require().NoError(err)
	suite.Contains(string(schemaContent), "backtest-engine-v1-config")
	suite.Contains(string(schemaContent), "sell_threshold")

	engineContent, err := os.ReadFile(filepath.Join(suite.tempDir, "config", engineConfigName))
	suite.Require().NoError(err)
	suite.Contains(string(engineContent), "# yaml-language-server: $schema="+schemaName)

	parsed, err := engine.ParseConfig(string(engineContent))
	suite.Require().NoError(err)
	suite.Equal(engine.DefaultConfig(), parsed)
}

func (suite *GenerateCmdTestSuite) TestAppConfigLoads() {
	main()

	appConfig, err := config.Load(filepath.Join(suite.tempDir, "config", appConfigName))
	suite.Require().NoError(err)
	suite.Equal(config.DefaultListenAddr, appConfig.ListenAddr)

	engineYAML, err := appConfig.EngineYAML()
	suite.Require().NoError(err)

	parsed, err := engine.ParseConfig(engineYAML)
	suite.Require().NoError(err)
	suite.Equal(engine.DefaultConfig(), parsed)
}

func (suite *GenerateCmdTestSuite) TestSampleConfigNotOverwritten() {
	main()

	sampleConfigPath := filepath.Join(suite.tempDir, "config", engineConfigName)
	suite.Require().NoError(os.WriteFile(sampleConfigPath, []byte("rsi_period: 5\n"), 0644))

	main()

	content, err := os.ReadFile(sampleConfigPath)
	suite.Require().NoError(err)
	suite.Equal("rsi_period: 5\n", string(content))
}

func (suite *GenerateCmdTestSuite) TestGenerateSchemaFileInvalidPath() {
	blocker := filepath.Join(suite.tempDir, "blocker")
	suite.Require().NoError(os.WriteFile(blocker, []byte("x"), 0644))

	err := generateSchemaFile(engine.DefaultConfig(), filepath.Join(blocker, "schema.json"))
	suite.Require().Error(err)
	suite.Contains(err.Error(), "failed to")
}

func (suite *GenerateCmdTestSuite) TestGenerateSampleConfigRejectsBadSchemaName() {
	err := generateSampleConfig(engine.DefaultConfig(), filepath.Join(suite.tempDir, "sample.yaml"), "schema.txt")
	suite.Require().Error(err)
	suite.Contains(err.Error(), "must have .json extension")
	suite.False(fileExists(filepath.Join(suite.tempDir, "sample.yaml")))
}

func (suite *GenerateCmdTestSuite) TestValidatePaths() {
	suite.NoError(validatePaths("/some/path/schema.json", "/some/path/config.yaml"))

	err := validatePaths("", "/some/path/config.yaml")
	suite.Require().Error(err)
	suite.Contains(err.Error(), "schema path cannot be empty")

	err = validatePaths("/some/path/schema.json", "")
	suite.Require().Error(err)
	suite.Contains(err.Error(), "sample config path cannot be empty")
}

func (suite *GenerateCmdTestSuite) TestValidateSchemaName() {
	suite.NoError(validateSchemaName("schema.json"))

	err := validateSchemaName("")
	suite.Require().Error(err)
	suite.Contains(err.Error(), "schema name cannot be empty")

	suite.Error(validateSchemaName("schema"))
}

func (suite *GenerateCmdTestSuite) TestGetSchemaReference() {
	suite.Equal("# yaml-language-server: $schema=test-schema.json\n", getSchemaReference("test-schema.json"))
}
