package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"eduvid/internal/catalog"
	"eduvid/internal/daemon"
	"eduvid/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var startSession bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon: content API, live session control and event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx, startSession)
		},
	}
	cmd.Flags().BoolVar(&startSession, "session", false, "Start a live session as soon as the daemon is up")
	return cmd
}

func runServe(cmdCtx context.Context, ctx *commandContext, startSession bool) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logHub := logging.NewStreamHub(4096)
	logger, err := logging.NewFromConfig(cfg, logHub)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		logging.ErrorWithContext(logger, "catalog open failed", "catalog_open_failed",
			logging.Error(err),
			logging.String("path", cfg.Content.CatalogPath),
			logging.String(logging.FieldErrorHint, "check content.catalog_path permissions"),
		)
		return err
	}

	d, err := daemon.New(cfg, store, logger, daemon.WithLogStream(logHub))
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	if startSession {
		if sess, err := d.StartSession(); err != nil {
			attrs := []logging.Attr{
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "POST /api/session to retry"),
				logging.String(logging.FieldImpact, "no live session until started"),
			}
			if sess != nil {
				attrs = append(attrs, logging.String("reason", sess.Snapshot().Message))
			}
			logging.WarnWithContext(logger, "initial session failed", "session_start_failed", attrs...)
		}
	}

	<-signalCtx.Done()
	logger.Info("eduvid daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}
