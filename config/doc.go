// Package config loads harness configuration from YAML files, .env files,
// environment variables and command-line flags.
//
// Precedence, highest first: flags that were set explicitly, environment
// variables, the config file, then ApplyDefaults.
//
// # Usage
//
//	var cfg config.HarnessConfig
//	err := config.LoadConfig("harness", &cfg,
//	    config.WithConfigFile(path),
//	    config.WithEnvPrefix("HARNESS"),
//	    config.WithFlags(flags, config.FlagBindings{"grace-period": "runner.grace_period"}),
//	)
//	cfg.ApplyDefaults()
//	err = cfg.Validate()
//
// With prefix HARNESS, HARNESS_RUNNER_GRACE_PERIOD=10s sets runner.grace_period.
package config
