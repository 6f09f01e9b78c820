package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"eduvid/internal/config"
	"eduvid/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the camera, models, content sources and daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			daemonUp := daemonReachable(cmd.Context(), cfg)
			if jsonOutput {
				return writeJSON(cmd, struct {
					Checks []preflight.Result `json:"checks"`
					Daemon bool               `json:"daemon_running"`
				}{results, daemonUp})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if daemonUp {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, "listening on "+cfg.Paths.APIBind, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusInfo, "not running (start with `eduvid serve`)", colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	return cmd
}

func daemonReachable(ctx context.Context, cfg *config.Config) bool {
	probeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, "http://"+cfg.Paths.APIBind+"/ping", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
