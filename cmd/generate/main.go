package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-threshold/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-threshold/internal/config"
	"gopkg.in/yaml.v3"
)

const (
	configDir        = "./config"
	schemaName       = "backtest-engine-v1-config.json"
	engineConfigName = "backtest-engine-v1-config.yaml"
	appConfigName    = "argo-threshold.yaml"
)

func main() {
	engineConfig := engine.DefaultConfig()

	schemaPath := filepath.Join(configDir, schemaName)
	engineConfigPath := filepath.Join(configDir, engineConfigName)
	appConfigPath := filepath.Join(configDir, appConfigName)

	if err := validatePaths(schemaPath, engineConfigPath); err != nil {
		log.Fatal(err)
	}

	if err := generateSchemaFile(engineConfig, schemaPath); err != nil {
		log.Fatal(err)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)

	if err := generateSampleConfig(engineConfig, engineConfigPath, schemaName); err != nil {
		log.Fatal(err)
	}

	if err := generateAppConfig(engineConfig, appConfigPath); err != nil {
		log.Fatal(err)
	}
}

// generateSchemaFile writes the JSON schema of the engine config, replacing any previous file.
func generateSchemaFile(engineConfig engine.BacktestEngineV1Config, schemaPath string) error {
	schemaJSON, err := engineConfig.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig writes the engine config with a schema reference. An existing file is kept.
func generateSampleConfig(engineConfig engine.BacktestEngineV1Config, samplePath, schemaName string) error {
	if err := validateSchemaName(schemaName); err != nil {
		return err
	}

	if fileExists(samplePath) {
		return nil
	}

	yamlBytes, err := yaml.Marshal(engineConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	content := append([]byte(getSchemaReference(schemaName)), yamlBytes...)
	if err := os.WriteFile(samplePath, content, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	log.Printf("Sample config successfully generated at %s", samplePath)

	return nil
}

// generateAppConfig writes a default application config embedding the engine config.
// An existing file is kept.
func generateAppConfig(engineConfig engine.BacktestEngineV1Config, appConfigPath string) error {
	if fileExists(appConfigPath) {
		return nil
	}

	engineBytes, err := yaml.Marshal(engineConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal engine config: %w", err)
	}

	appConfig := config.Default()
	if err := yaml.Unmarshal(engineBytes, &appConfig.Engine); err != nil {
		return fmt.Errorf("failed to embed engine config: %w", err)
	}

	appBytes, err := yaml.Marshal(appConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal app config: %w", err)
	}

	if err := os.WriteFile(appConfigPath, appBytes, 0644); err != nil {
		return fmt.Errorf("failed to write app config to file: %w", err)
	}

	log.Printf("App config successfully generated at %s", appConfigPath)

	return nil
}

func validatePaths(schemaPath, samplePath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if samplePath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", name)
	}

	return nil
}

func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
