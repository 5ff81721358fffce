// Package bootstrap wires a resolved Config into the running pipeline: the
// database connection, the completion provider, and the components every
// session shares.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/papercomputeco/sqlchat/pkg/config"
	"github.com/papercomputeco/sqlchat/pkg/conversation"
	"github.com/papercomputeco/sqlchat/pkg/credentials"
	"github.com/papercomputeco/sqlchat/pkg/database"
	"github.com/papercomputeco/sqlchat/pkg/errkind"
	"github.com/papercomputeco/sqlchat/pkg/executor"
	"github.com/papercomputeco/sqlchat/pkg/llm/provider"
	"github.com/papercomputeco/sqlchat/pkg/schema"
	"github.com/papercomputeco/sqlchat/pkg/translate"
)

// Options are the inputs to Start.
type Options struct {
	Config *config.Config

	// Credentials resolves the provider API key. Required unless APIKey is set
	// or the provider needs no key.
	Credentials *credentials.Manager

	// APIKey overrides any stored or environment key.
	APIKey string

	// Conn reuses an already open connection instead of dialing Config.Database.
	Conn *database.Conn

	Logger *slog.Logger
}

// Runtime is the process-wide state shared by every session.
type Runtime struct {
	conn      *database.Conn
	inspector *schema.Inspector
	executor  *executor.Executor
	creds     *credentials.Manager
	apiKey    string
	logger    *slog.Logger

	mu         sync.RWMutex
	cfg        *config.Config
	translator *translate.Translator
	observers  []conversation.Observer
}

// Start resolves credentials, opens the database and builds the translator.
// Any failure is a StartupFailure and nothing is left open.
func Start(ctx context.Context, opts Options) (*Runtime, error) {
	if opts.Config == nil {
		return nil, errkind.New(errkind.StartupFailure, "no configuration provided")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Runtime{
		creds:  opts.Credentials,
		apiKey: opts.APIKey,
		logger: logger,
		cfg:    opts.Config,
	}

	p, err := r.newProvider(opts.Config)
	if err != nil {
		return nil, err
	}

	conn := opts.Conn
	if conn == nil {
		conn, err = database.Open(ctx, DatabaseOptions(opts.Config), logger)
		if err != nil {
			return nil, err
		}
	}

	r.conn = conn
	r.translator = translate.NewTranslator(p, opts.Config.LLM.Model, conn.Dialect(), logger)
	r.inspector = schema.NewInspector(conn, logger)
	r.executor = executor.NewExecutor(conn, logger)

	logger.Info("sqlchat ready",
		"dialect", conn.Dialect(),
		"provider", opts.Config.LLM.Provider,
		"model", opts.Config.LLM.Model,
	)

	return r, nil
}

// newProvider resolves the API key and builds the completion provider.
// Nothing here touches the network.
func (r *Runtime) newProvider(cfg *config.Config) (provider.Provider, error) {
	key := r.apiKey
	if key == "" && r.creds != nil {
		var err error
		key, err = r.creds.ResolveAPIKey(cfg.LLM.Provider, "")
		if err != nil {
			return nil, errkind.Wrap(errkind.StartupFailure, "resolving API key", err)
		}
	} else if key == "" && credentials.IsSupportedProvider(cfg.LLM.Provider) {
		return nil, errkind.Wrap(errkind.StartupFailure, "resolving API key",
			fmt.Errorf("%w for %s", credentials.ErrMissingAPIKey, cfg.LLM.Provider))
	}

	p, err := provider.New(provider.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   key,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, errkind.Wrap(errkind.StartupFailure, "creating completion provider", err)
	}

	return p, nil
}

// DatabaseOptions maps the [database] section onto connection options.
func DatabaseOptions(cfg *config.Config) database.Options {
	return database.Options{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		DSN:      cfg.Database.DSN,
	}
}

// AddObserver registers an observer attached to every session created
// afterwards.
func (r *Runtime) AddObserver(o conversation.Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// NewSession starts a session using the current translator.
func (r *Runtime) NewSession(opts ...conversation.Option) *conversation.Session {
	r.mu.RLock()
	translator := r.translator
	observers := append([]conversation.Observer(nil), r.observers...)
	r.mu.RUnlock()

	base := []conversation.Option{
		conversation.WithLogger(r.logger),
		conversation.WithObservers(observers...),
	}
	return conversation.NewSession(r.inspector, translator, r.executor, append(base, opts...)...)
}

// Reload swaps the translator when the [llm] section changed. Sessions that
// already exist keep the translator they were created with. Database
// settings are only read at startup.
func (r *Runtime) Reload(cfg *config.Config) error {
	r.mu.RLock()
	current := r.cfg
	r.mu.RUnlock()

	if current.Database != cfg.Database {
		r.logger.Warn("database settings changed; restart to apply them")
	}
	if current.LLM == cfg.LLM {
		return nil
	}

	p, err := r.newProvider(cfg)
	if err != nil {
		return err
	}
	translator := translate.NewTranslator(p, cfg.LLM.Model, r.conn.Dialect(), r.logger)

	r.mu.Lock()
	r.cfg = cfg
	r.translator = translator
	r.mu.Unlock()

	r.logger.Info("completion settings reloaded",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
	)
	return nil
}

// Config returns the configuration currently in effect.
func (r *Runtime) Config() *config.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Translator returns the translator new sessions use.
func (r *Runtime) Translator() *translate.Translator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.translator
}

func (r *Runtime) Inspector() *schema.Inspector { return r.inspector }

func (r *Runtime) Executor() *executor.Executor { return r.executor }

func (r *Runtime) Dialect() database.Dialect { return r.conn.Dialect() }

// Close releases the database connection.
func (r *Runtime) Close() error {
	return r.conn.Close()
}
