// Package config provides centralized configuration management for chainviz.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority), including a local .env file
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CHAINVIZ_<SECTION>_<KEY>:
//
//	CHAINVIZ_SERVER_PORT=8080
//	CHAINVIZ_LOGGING_LEVEL=debug
//	CHAINVIZ_UPLOAD_MAX_BYTES=10485760
//	CHAINVIZ_UPLOAD_ALLOWED_EXTENSIONS=.csv,.xlsx
//	CHAINVIZ_CHART_WIDTH=1200
//
// CHAINVIZ_CONFIG points at the YAML file. Without it, config.yaml and
// configs/config.yaml are tried.
//
// # Validation
//
// Every section carries validator tags. Load fails when any value is out of
// range, so the rest of the application can trust the values it receives.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests use config.Default(), which needs no environment or files.
package config
