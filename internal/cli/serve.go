// ABOUTME: The serve command: API server, observability server, watcher
// ABOUTME: Signal-driven graceful shutdown with ordered teardown

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mheron/grouptree/internal/config"
	"github.com/mheron/grouptree/internal/logger"
	"github.com/mheron/grouptree/internal/metrics"
	"github.com/mheron/grouptree/internal/server"
	"github.com/mheron/grouptree/pkg/session"
)

type serveFlags struct {
	configPath string
	host       string
	port       int
	obsPort    int
	watch      bool
}

// NewServeCommand creates the "serve" command.
func NewServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the grouptree API and observability servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&flags.host, "host", "", "Listen host (overrides config)")
	cmd.Flags().IntVar(&flags.port, "port", 0, "API port (overrides config)")
	cmd.Flags().IntVar(&flags.obsPort, "obs-port", 0, "Observability port (overrides config)")
	cmd.Flags().BoolVar(&flags.watch, "watch", true, "Watch codes files for outside changes")

	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.host != "" {
		cfg.Server.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Server.Port = flags.port
	}
	if flags.obsPort != 0 {
		cfg.Server.ObsPort = flags.obsPort
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("pretty") {
		cfg.Log.Pretty = logPretty
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch = flags.watch
	}

	logger.InitGlobalLogger(logger.Config{
		Level:      cfg.Log.Level,
		Pretty:     cfg.Log.Pretty,
		WithCaller: cfg.Log.WithCaller,
	})
	log := logger.GetGlobalLogger()
	m := metrics.NewMetrics()
	sessions := session.NewManager()

	var watcher *server.Watcher
	if cfg.Watch {
		watcher, err = server.NewWatcher(sessions, log, m)
		if err != nil {
			return err
		}
	}

	apiServer := server.NewServer(cfg.APIAddr(), log, m, sessions, watcher)
	obsServer := server.NewObservabilityServer(cfg.ObsAddr(), log)

	errCh := make(chan error, 2)
	go func() { errCh <- apiServer.Start() }()
	go func() { errCh <- obsServer.Start() }()
	log.LogServerReady(cfg.APIAddr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("signal received").Str("signal", sig.String()).Send()
	case err := <-errCh:
		if err != nil {
			log.Error("server failed").Err(err).Send()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error("api shutdown failed").Err(err).Send()
	}
	if err := obsServer.Shutdown(ctx); err != nil {
		log.Error("observability shutdown failed").Err(err).Send()
	}
	return nil
}
