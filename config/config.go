// Package config provides configuration management for the orange RPC
// backend. It handles loading and validating configuration from YAML files
// and environment variables.
package config

import "time"

// AppConfig represents the complete application configuration
type AppConfig struct {
	Server  ServerConfig  `koanf:"server"`
	Auth    AuthConfig    `koanf:"auth"`
	Log     LogConfig     `koanf:"log"`
	Plugins PluginsConfig `koanf:"plugins"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr     string        `koanf:"listen_addr"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// AuthConfig holds credential and ACL source configuration
type AuthConfig struct {
	// PasswordFile is the line-oriented "username hash" credential
	// source, re-read before every login attempt.
	PasswordFile string `koanf:"password_file"`
	// ACLDir holds the "<group>.acl" rule files.
	ACLDir string `koanf:"acl_dir"`
	// Users maps usernames to their ACL group memberships. Accounts
	// listed here are created at startup; accounts appearing only in
	// the password file get no groups.
	Users map[string][]string `koanf:"users"`
	// LoginRate / LoginBurst bound login attempts per second at the
	// transport layer.
	LoginRate  float64 `koanf:"login_rate"`
	LoginBurst int     `koanf:"login_burst"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// PluginsConfig holds plugin discovery configuration
type PluginsConfig struct {
	Dir string `koanf:"dir"`
}
