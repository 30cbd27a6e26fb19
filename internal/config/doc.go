// Package config loads urilens settings.
//
// Settings are resolved from layers, lowest priority first:
//
//   - built-in defaults
//   - a settings file (TOML, JSON, or Sublime-style .sublime-settings)
//   - URILENS_* environment variables
//   - explicit overrides, typically command-line flags
//
// A Config can watch its settings file and reload it when the file
// changes on disk. Subscribers are told about every successful reload
// that changes the effective settings.
//
// Recognized keys:
//
//	active_scopes    list of scope selectors enabling detection
//	check_timeout    debounce delay in seconds (fractions allowed)
//	highlight_color  hex color used for the region underline
package config
