package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent sqlchat configuration stored as
// config.toml in the .sqlchat/ directory.
type Config struct {
	Version  int            `toml:"version"`
	Database DatabaseConfig `toml:"database"`
	LLM      LLMConfig      `toml:"llm"`
	Server   ServerConfig   `toml:"server"`
	Events   EventsConfig   `toml:"events"`
}

// DatabaseConfig describes the database sqlchat answers questions against.
// When DSN is set it is passed to the driver verbatim and the discrete
// connection fields are ignored.
type DatabaseConfig struct {
	Driver   string `toml:"driver,omitempty"`
	Host     string `toml:"host,omitempty"`
	Port     uint   `toml:"port,omitempty"`
	User     string `toml:"user,omitempty"`
	Password string `toml:"password,omitempty"`
	Name     string `toml:"name,omitempty"`
	DSN      string `toml:"dsn,omitempty"`
}

// LLMConfig holds the completion service settings. API keys live in
// credentials.toml, never here.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
}

// ServerConfig holds settings for "sqlchat serve".
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
	MCP    bool   `toml:"mcp"`
}

// EventsConfig holds the audit event stream settings.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"database.driver": {
		get: func(c *Config) string { return c.Database.Driver },
		set: func(c *Config, v string) error { c.Database.Driver = v; return nil },
	},
	"database.host": {
		get: func(c *Config) string { return c.Database.Host },
		set: func(c *Config, v string) error { c.Database.Host = v; return nil },
	},
	"database.port": {
		get: func(c *Config) string {
			if c.Database.Port == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Database.Port), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 16)
			if err != nil {
				return fmt.Errorf("invalid value for database.port: %w", err)
			}
			c.Database.Port = uint(n)
			return nil
		},
	},
	"database.user": {
		get: func(c *Config) string { return c.Database.User },
		set: func(c *Config, v string) error { c.Database.User = v; return nil },
	},
	"database.password": {
		get: func(c *Config) string { return c.Database.Password },
		set: func(c *Config, v string) error { c.Database.Password = v; return nil },
	},
	"database.name": {
		get: func(c *Config) string { return c.Database.Name },
		set: func(c *Config, v string) error { c.Database.Name = v; return nil },
	},
	"database.dsn": {
		get: func(c *Config) string { return c.Database.DSN },
		set: func(c *Config, v string) error { c.Database.DSN = v; return nil },
	},
	"llm.provider": {
		get: func(c *Config) string { return c.LLM.Provider },
		set: func(c *Config, v string) error { c.LLM.Provider = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"llm.base_url": {
		get: func(c *Config) string { return c.LLM.BaseURL },
		set: func(c *Config, v string) error { c.LLM.BaseURL = v; return nil },
	},
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"server.mcp": {
		get: func(c *Config) string { return strconv.FormatBool(c.Server.MCP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for server.mcp: %w", err)
			}
			c.Server.MCP = b
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}
