package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/keunyop/rubricheck/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ModelBaseURL, convey.ShouldEqual, "http://localhost:1234")
				convey.So(cfg.StructureModel, convey.ShouldEqual, "qwen2.5-7b-instruct")
				convey.So(cfg.EvaluateModel, convey.ShouldEqual, "qwen2.5-7b-instruct")
				convey.So(cfg.ModelTimeoutSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 5<<20)
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RUBRICHECK_ADDR", ":9090")
			_ = os.Setenv("RUBRICHECK_MODEL_BASE_URL", "http://localhost:8081")
			_ = os.Setenv("RUBRICHECK_MODEL_API_KEY", "secret-key")
			_ = os.Setenv("RUBRICHECK_STRUCTURE_MODEL", "mock-structure")
			_ = os.Setenv("RUBRICHECK_EVALUATE_MODEL", "mock-evaluate")
			_ = os.Setenv("RUBRICHECK_MODEL_TIMEOUT_SECONDS", "120")
			_ = os.Setenv("RUBRICHECK_MAX_UPLOAD_BYTES", "1048576")
			_ = os.Setenv("RUBRICHECK_BATCH_WORKERS", "8")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ModelBaseURL, convey.ShouldEqual, "http://localhost:8081")
				convey.So(cfg.ModelAPIKey, convey.ShouldEqual, "secret-key")
				convey.So(cfg.StructureModel, convey.ShouldEqual, "mock-structure")
				convey.So(cfg.EvaluateModel, convey.ShouldEqual, "mock-evaluate")
				convey.So(cfg.ModelTimeoutSeconds, convey.ShouldEqual, 120)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 1048576)
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":7070"
model_base_url: "http://lmstudio.local:1234"
structure_model: "qwen2.5-0.5b-instruct"
evaluate_model: "mistral-7b-instruct"
model_timeout_seconds: 90
max_upload_bytes: 2097152
batch_workers: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RUBRICHECK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.ModelBaseURL, convey.ShouldEqual, "http://lmstudio.local:1234")
				convey.So(cfg.StructureModel, convey.ShouldEqual, "qwen2.5-0.5b-instruct")
				convey.So(cfg.EvaluateModel, convey.ShouldEqual, "mistral-7b-instruct")
				convey.So(cfg.ModelTimeoutSeconds, convey.ShouldEqual, 90)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 2097152)
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":7070"
structure_model: "qwen2.5-0.5b-instruct"
model_timeout_seconds: 90
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RUBRICHECK_CONFIG", tmpFile)
			_ = os.Setenv("RUBRICHECK_ADDR", ":9090")
			_ = os.Setenv("RUBRICHECK_STRUCTURE_MODEL", "mock-structure")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StructureModel, convey.ShouldEqual, "mock-structure")
				convey.So(cfg.ModelTimeoutSeconds, convey.ShouldEqual, 90)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RUBRICHECK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RUBRICHECK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("RUBRICHECK_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty model base URL", func() {
			_ = os.Setenv("RUBRICHECK_MODEL_BASE_URL", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(err.Error(), convey.ShouldContainSubstring, "model_base_url must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
addr: ":7070"
batch_workers: 16
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RUBRICHECK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 16)
				convey.So(cfg.ModelBaseURL, convey.ShouldEqual, "http://localhost:1234")
				convey.So(cfg.StructureModel, convey.ShouldEqual, "qwen2.5-7b-instruct")
				convey.So(cfg.ModelTimeoutSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, 5<<20)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("RUBRICHECK_MODEL_TIMEOUT_SECONDS", "invalid")
			_ = os.Setenv("RUBRICHECK_BATCH_WORKERS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given config loader edge cases", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with various addr formats", func() {
			_ = os.Setenv("RUBRICHECK_ADDR", "localhost:8080")
			_ = os.Setenv("RUBRICHECK_ADDR", "0.0.0.0:9090")
			_ = os.Setenv("RUBRICHECK_ADDR", "[::1]:8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the last value should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "[::1]:8080")
			})
		})

		convey.Convey("When loading config with YAML file containing comments", func() {
			yamlContent := `
# Grading service settings
addr: ":7070"  # Inline comment
model_timeout_seconds: 90
# Batch mode settings
batch_workers: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RUBRICHECK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should parse YAML with comments", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.ModelTimeoutSeconds, convey.ShouldEqual, 90)
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with YAML file containing an empty addr", func() {
			yamlContent := `
addr: ""
batch_workers: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RUBRICHECK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"RUBRICHECK_CONFIG",
		"RUBRICHECK_ADDR",
		"RUBRICHECK_MODEL_BASE_URL",
		"RUBRICHECK_MODEL_API_KEY",
		"RUBRICHECK_STRUCTURE_MODEL",
		"RUBRICHECK_EVALUATE_MODEL",
		"RUBRICHECK_MODEL_TIMEOUT_SECONDS",
		"RUBRICHECK_MAX_UPLOAD_BYTES",
		"RUBRICHECK_BATCH_WORKERS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "rubricheck-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
