package config

import "time"

// DefaultAppConfig returns an AppConfig struct with sensible default values
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			ListenAddr:     ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			RequestTimeout: 60 * time.Second,
		},
		Auth: AuthConfig{
			PasswordFile: "/etc/orange/shadow",
			ACLDir:       "/usr/lib/orange/acl",
			Users:        make(map[string][]string),
			LoginRate:    5,
			LoginBurst:   3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Plugins: PluginsConfig{
			Dir: "/usr/lib/orange/plugins",
		},
	}
}
