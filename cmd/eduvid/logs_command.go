package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"eduvid/internal/logging"
	"eduvid/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var sessionID string
	var component string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			filtered := strings.TrimSpace(sessionID) != "" || strings.TrimSpace(component) != ""

			client, err := logs.NewStreamClient(cfg.Paths.APIBind)
			if err != nil {
				return fmt.Errorf("log API client: %w", err)
			}
			query := logs.StreamQuery{Limit: lines, Tail: true, Component: component, SessionID: sessionID}
			err = streamAPILogs(cmd.Context(), client, query, follow, out)
			if err == nil || !logs.IsAPIUnavailable(err) {
				return err
			}
			if filtered {
				return errors.New("log filters need a running daemon (start with `eduvid serve`)")
			}

			logPath := filepath.Join(cfg.Paths.LogDir, "eduvid.log")
			tail, offset, err := logs.LastLines(logPath, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			err = logs.Follow(cmd.Context(), logPath, offset, 0, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of recent lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only show entries for this session ID")
	cmd.Flags().StringVar(&component, "component", "", "Only show entries from this component")
	return cmd
}

func streamAPILogs(ctx context.Context, client *logs.StreamClient, query logs.StreamQuery, follow bool, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := client.Fetch(ctx, query)
	if err != nil {
		return err
	}
	for _, evt := range resp.Events {
		fmt.Fprintln(out, formatLogEvent(evt))
	}
	if !follow {
		return nil
	}

	query.Tail = false
	query.Follow = true
	query.Since = resp.Next
	for {
		resp, err := client.Fetch(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for _, evt := range resp.Events {
			fmt.Fprintln(out, formatLogEvent(evt))
		}
		if resp.Next > query.Since {
			query.Since = resp.Next
		}
	}
}

func formatLogEvent(evt logging.LogEvent) string {
	var b strings.Builder
	b.WriteString(evt.Timestamp.Local().Format(time.TimeOnly))
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s", strings.ToUpper(evt.Level))
	if evt.Component != "" {
		b.WriteString(" [" + evt.Component + "]")
	}
	if evt.SessionID != "" {
		b.WriteString(" " + shortID(evt.SessionID))
	}
	b.WriteString(" " + evt.Message)
	if len(evt.Fields) > 0 {
		keys := make([]string, 0, len(evt.Fields))
		for key := range evt.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			b.WriteString(" " + key + "=" + evt.Fields[key])
		}
	}
	return b.String()
}
