// Package config provides 12-factor configuration for the backend layer.
//
// Configuration is loaded from environment variables with sensible
// defaults; an optional YAML file can overlay the environment for local
// development.
//
// Configuration Sections:
//   - Sandbox: command timeout, output and write-payload ceilings
//   - Logging: log level and output format
//
// Environment Variables:
//   - SANDBOX_COMMAND_TIMEOUT, SANDBOX_MAX_OUTPUT_BYTES,
//     SANDBOX_MAX_WRITE_BYTES, SANDBOX_WORKDIR
//   - LOG_LEVEL, LOG_DEV
package config
