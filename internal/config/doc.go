// Package config defines and loads the application configuration.
package config
