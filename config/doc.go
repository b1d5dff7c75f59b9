// Package config loads pipelinectl configuration.
//
// It uses Viper to read a YAML or JSON config file, godotenv to load an
// optional .env file, and binds environment variables on top.
//
// # Usage
//
//	cfg, err := config.Load(config.WithEnvPrefix("PIPELINECTL"))
//
// With the prefix set, PIPELINECTL_SERVER_PORT=9090 overrides server.port and
// PIPELINECTL_VALIDATION_CYCLE_TIMEOUT=1s overrides validation.cycle_timeout.
package config
