package config

const (
	defaultDriver = "mysql"
	defaultHost   = "localhost"
	defaultPort   = 3306

	defaultLLMProvider = "openai"
	defaultLLMModel    = "gpt-4"

	defaultServerListen = ":8090"

	defaultEventsProvider = "none"
	defaultEventsTopic    = "sqlchat.questions"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Database: DatabaseConfig{
			Driver: defaultDriver,
			Host:   defaultHost,
			Port:   defaultPort,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Model:    defaultLLMModel,
		},
		Server: ServerConfig{
			Listen: defaultServerListen,
			MCP:    true,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
