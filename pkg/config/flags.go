package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline, so the same logical flag
// (e.g. --model on "sqlchat chat", "sqlchat ask" and "sqlchat serve") cannot drift.
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "llm.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagDriver         = "driver"
	FlagHost           = "host"
	FlagPort           = "port"
	FlagUser           = "user"
	FlagPassword       = "password"
	FlagDatabase       = "database"
	FlagDSN            = "dsn"
	FlagProvider       = "provider"
	FlagModel          = "model"
	FlagBaseURL        = "base-url"
	FlagListen         = "listen"
	FlagEventsProvider = "events-provider"
	FlagEventsBrokers  = "events-brokers"
	FlagEventsTopic    = "events-topic"
)

// SessionFlags are shared by every command that opens a question-answering
// session against a database.
var SessionFlags = FlagSet{
	FlagDriver:   {Name: "driver", ViperKey: "database.driver", Description: "Database driver (mysql, postgres, sqlite)"},
	FlagHost:     {Name: "host", Shorthand: "H", ViperKey: "database.host", Description: "Database host"},
	FlagPort:     {Name: "port", Shorthand: "P", ViperKey: "database.port", Description: "Database port"},
	FlagUser:     {Name: "user", Shorthand: "u", ViperKey: "database.user", Description: "Database user"},
	FlagPassword: {Name: "password", ViperKey: "database.password", Description: "Database password"},
	FlagDatabase: {Name: "database", Shorthand: "D", ViperKey: "database.name", Description: "Database name (file path for sqlite)"},
	FlagDSN:      {Name: "dsn", ViperKey: "database.dsn", Description: "Driver DSN, overrides the discrete connection flags"},
	FlagProvider: {Name: "provider", ViperKey: "llm.provider", Description: "Completion provider (openai, anthropic, ollama)"},
	FlagModel:    {Name: "model", Shorthand: "m", ViperKey: "llm.model", Description: "Completion model name"},
	FlagBaseURL:  {Name: "base-url", ViperKey: "llm.base_url", Description: "Override the completion provider base URL"},
}

// ServeFlags are the flags only "sqlchat serve" registers.
var ServeFlags = FlagSet{
	FlagListen:         {Name: "listen", Shorthand: "l", ViperKey: "server.listen", Description: "Address for the API server to listen on"},
	FlagEventsProvider: {Name: "events-provider", ViperKey: "events.provider", Description: "Audit event stream provider (none, kafka)"},
	FlagEventsBrokers:  {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma separated Kafka brokers"},
	FlagEventsTopic:    {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for audit events"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFlags registers every flag of fs on cmd, binding each to a throwaway
// target; values are read back through viper after BindRegisteredFlags.
func AddFlags(cmd *cobra.Command, fs FlagSet) {
	for key, def := range fs {
		if def.ViperKey == "database.port" {
			AddUintFlag(cmd, fs, key, new(uint))
			continue
		}
		AddStringFlag(cmd, fs, key, new(string))
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// Keys returns the registry keys of fs, for BindRegisteredFlags.
func (fs FlagSet) Keys() []string {
	keys := make([]string, 0, len(fs))
	for k := range fs {
		keys = append(keys, k)
	}
	return keys
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
