// Package config loads runtime configuration for agendasync.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   data directory holding the database
//	-u string   portal base URL
//	-l string   log level (debug, info, warn, error)
//	-headless   run the browser without a window (default true)
//	-daemon     run scheduled syncs without the interactive prompt
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "20s" or integer
// nanoseconds. Keys not present in the file keep their defaults:
//
//	{
//	  "data_dir": "~/.agendasync",
//	  "portal_base_url": "https://portal.example.edu",
//	  "page_timeout": "20s",
//	  "sendgrid_api_key": "SG.xxx"
//	}
package config
