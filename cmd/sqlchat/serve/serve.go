// Package servecmder provides the serve command, which runs the sqlchat HTTP
// API and MCP server.
package servecmder

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/sqlchat/api"
	"github.com/papercomputeco/sqlchat/api/mcp"
	"github.com/papercomputeco/sqlchat/api/sessions"
	"github.com/papercomputeco/sqlchat/cmd/sqlchat/cmdutil"
	"github.com/papercomputeco/sqlchat/pkg/config"
	"github.com/papercomputeco/sqlchat/pkg/eventstream"
	"github.com/papercomputeco/sqlchat/pkg/eventstream/kafka"
	"github.com/papercomputeco/sqlchat/pkg/eventstream/nop"
	"github.com/papercomputeco/sqlchat/pkg/eventstream/worker"
	"github.com/papercomputeco/sqlchat/pkg/logger"
	"github.com/papercomputeco/sqlchat/pkg/metrics"
)

type serveCommander struct {
	logFile string
	logJSON bool

	logger *slog.Logger
}

const serveLongDesc string = `Run the sqlchat API server.

The server exposes conversational sessions over HTTP, an MCP endpoint with
the ask_database and describe_schema tools, and prometheus metrics. All
sessions share one database connection.

Edits to the [llm] section of config.toml are applied to sessions created
after the change. Database settings are read once at startup.

Endpoints:
  GET    /ping
  GET    /v1/schema
  GET    /v1/sessions
  POST   /v1/sessions
  GET    /v1/sessions/:id
  DELETE /v1/sessions/:id
  POST   /v1/sessions/:id/questions   {"question": "..."}
  GET    /metrics
  POST   /mcp

Examples:
  sqlchat serve
  sqlchat serve --listen :9000 --events-provider kafka --events-brokers localhost:9092`

const serveShortDesc string = "Run the sqlchat API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdutil.AddSessionFlags(cmd)
	config.AddFlags(cmd, config.ServeFlags)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.logJSON, "log-json", false, "Write JSON logs to stderr instead of colorized text")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	cfg, v, err := cmdutil.LoadConfig(cmd, config.SessionFlags, config.ServeFlags)
	if err != nil {
		return err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	closeLog, err := c.setupLogger(cmd.ErrOrStderr(), debug)
	if err != nil {
		return err
	}
	defer closeLog()

	rt, err := cmdutil.Start(cmd.Context(), cmd, cfg, c.logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	m := metrics.New()
	rt.AddObserver(m)

	backend, err := newPublisher(cfg.Events)
	if err != nil {
		return err
	}
	publisher, err := worker.NewPool(&worker.Config{Publisher: backend, Logger: c.logger})
	if err != nil {
		_ = backend.Close()
		return fmt.Errorf("creating event pool: %w", err)
	}
	defer publisher.Close()
	rt.AddObserver(eventstream.NewObserver(publisher, eventstream.EventSource{
		Service:  "sqlchat",
		Dialect:  string(rt.Dialect()),
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
	}, c.logger))

	registry := sessions.NewRegistry(rt,
		sessions.WithGauge(m),
		sessions.WithLogger(c.logger),
	)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Sessions: registry,
		Schema:   rt.Inspector(),
		Noop:     !cfg.Server.MCP,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	server := api.NewServer(api.Config{
		ListenAddr:     cfg.Server.Listen,
		MetricsHandler: m.Handler(),
		MCPHandler:     mcpServer.Handler(),
	}, registry, rt.Inspector(), c.logger)

	if v.ConfigFileUsed() != "" {
		config.WatchConfig(v, func(e fsnotify.Event, next *config.Config) {
			c.logger.Info("config file changed", "file", e.Name)
			if err := rt.Reload(next); err != nil {
				c.logger.Warn("config reload failed, keeping previous settings", "error", err)
			}
		})
	}

	c.logger.Info("serving",
		"listen", cfg.Server.Listen,
		"dialect", rt.Dialect(),
		"mcp", cfg.Server.MCP,
		"events", cfg.Events.Provider,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
		return server.Shutdown()
	}
}

// setupLogger logs to stderr and, with --log-file, to a JSON file as well.
func (c *serveCommander) setupLogger(stderr io.Writer, debug bool) (func(), error) {
	console := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(!c.logJSON),
		logger.WithPrefix("serve"),
		logger.WithJSON(c.logJSON),
		logger.WithWriter(stderr),
	)

	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(console, logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	))
	return func() { _ = f.Close() }, nil
}

// newPublisher selects the audit event backend from the [events] section.
func newPublisher(cfg config.EventsConfig) (eventstream.Publisher, error) {
	switch cfg.Provider {
	case "", "none":
		return nop.NewPublisher(), nil
	case "kafka":
		p, err := kafka.NewPublisher(kafka.Config{Brokers: cfg.Brokers, Topic: cfg.Topic})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events provider %q (supported: none, kafka)", cfg.Provider)
	}
}

