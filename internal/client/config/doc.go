// Package config loads runtime configuration for the todokeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with --config.
//  3. Environment: TODOKEEPER_SERVER, TODOKEEPER_TOKEN_FILE, TODOKEEPER_TIMEOUT.
//  4. Command-line flags --server and --token-file, applied by the CLI.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "token_file": "/home/me/.config/todokeeper/token",
//	  "request_timeout": "10s"
//	}
package config
