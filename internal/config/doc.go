// Package config provides configuration management for imagegrid.
//
// This package handles:
//   - Loading settings from YAML/JSON files via viper
//   - Environment variable overrides (IMAGEGRID_*)
//   - Default configuration values
//   - Validation
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Fetches from https://loremflickr.com/200/200
//	// Loads 140 images, 10 at a time
//	// 7x10 grid pages
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    // Missing or malformed file, or invalid values
//	}
//
// # Saving Settings
//
//	settings.MaxConcurrentDownloads = 4
//	err := settings.Save("/path/to/config.yaml")
package config
