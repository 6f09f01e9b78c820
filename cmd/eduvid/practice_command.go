package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eduvid/internal/camera"
	"eduvid/internal/daemon"
	"eduvid/internal/session"
)

type practiceOptions struct {
	framesDir string
	duration  time.Duration
	jsonLines bool
}

func newPracticeCommand(ctx *commandContext) *cobra.Command {
	var opts practiceOptions

	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Run a live recognition session in the terminal",
		Long: "Opens the camera, recognizes what it sees and prints each confirmed subject " +
			"with its feature card. Press Ctrl+C to stop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPractice(cmd, ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.framesDir, "frames", "", "Replay JPEG stills from this directory instead of a camera")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	cmd.Flags().BoolVar(&opts.jsonLines, "json", false, "Print session events as JSON lines")
	return cmd
}

func runPractice(cmd *cobra.Command, ctx *commandContext, opts practiceOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if opts.framesDir != "" {
		dir, err := filepath.Abs(opts.framesDir)
		if err != nil {
			return err
		}
		cfg.Camera.FramesDir = dir
	}

	logger, err := ctx.fileLogger("practice.log")
	if err != nil {
		return err
	}
	rec, err := daemon.NewRecognizer(cfg)
	if err != nil {
		return err
	}
	store, err := ctx.openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if opts.duration > 0 {
		var stop context.CancelFunc
		runCtx, stop = context.WithTimeout(runCtx, opts.duration)
		defer stop()
	}

	svc := daemon.NewContentService(cfg, store, logger)
	var monitor *camera.Monitor
	acquire := daemon.NewAcquire(cfg, logger)
	watched := func(ctx context.Context) (camera.Stream, error) {
		stream, err := acquire(ctx)
		if err == nil {
			monitor.Watch(stream.Device())
		}
		return stream, err
	}
	sess := session.New(daemon.SessionOptions(cfg, rec, watched, daemon.NewProvider(cfg, svc), store, logger))
	if cfg.Camera.WatchHotplug && cfg.Camera.FramesDir == "" {
		monitor = camera.NewMonitor(logger, sess.DeviceRemoved)
		_ = monitor.Start(runCtx)
		defer monitor.Stop()
	}

	out := cmd.OutOrStdout()
	colorize := !opts.jsonLines && shouldColorize(out)
	if !opts.jsonLines {
		fmt.Fprintln(out, "Loading model and camera...")
	}
	if err := sess.Start(runCtx); err != nil {
		if msg := sess.Snapshot().Message; msg != "" {
			return errors.New(msg)
		}
		return err
	}
	defer sess.Close()

	final := streamEvents(cmd, sess, opts.jsonLines, colorize)
	if final.Stage == session.StageError {
		return errors.New(final.Message)
	}
	return nil
}

// streamEvents prints session events until the session releases and returns
// the last stage event seen.
func streamEvents(cmd *cobra.Command, sess *session.Session, jsonLines, colorize bool) session.Event {
	out := cmd.OutOrStdout()
	var since uint64
	var last session.Event
	for {
		entries, next, _ := sess.Events().Fetch(context.Background(), since, 64, true)
		if len(entries) == 0 {
			return last
		}
		since = next
		for _, entry := range entries {
			ev := entry.Value
			if ev.Type == session.EventStage {
				last = ev
			}
			if jsonLines {
				if err := writeJSONLine(out, ev); err != nil {
					return last
				}
				continue
			}
			printEvent(out, ev, colorize)
		}
	}
}

func printEvent(out io.Writer, ev session.Event, colorize bool) {
	switch ev.Type {
	case session.EventStage:
		switch ev.Stage {
		case session.StageDetecting:
			fmt.Fprintln(out, renderStatusLine("Session", statusOK, "Detecting; point the camera at an object", colorize))
		case session.StageError:
			fmt.Fprintln(out, renderStatusLine("Session", statusError, ev.Message, colorize))
		case session.StageClosed:
			fmt.Fprintln(out, renderStatusLine("Session", statusInfo, "Closed", colorize))
		}
	case session.EventSubject:
		if ev.Subject != "" {
			fmt.Fprintln(out, renderStatusLine("Subject", statusInfo, ev.Subject, colorize))
		}
	case session.EventFeatures:
		if ev.Features == nil {
			return
		}
		fmt.Fprintf(out, "\n%s (%s)\n", ev.Features.Name, ev.Features.Category)
		for _, f := range ev.Features.Features {
			fmt.Fprintf(out, "  - %s: %s\n", f.Title, f.Detail)
		}
		fmt.Fprintln(out)
	}
}

func writeJSONLine(out io.Writer, ev session.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}
