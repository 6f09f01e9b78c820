package preflight

import (
	"context"

	"eduvid/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every applicable check for cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckCamera(cfg),
	}
	if cfg.Camera.FramesDir == "" {
		results = append(results, CheckFFmpeg(ctx, cfg.Camera.FFmpegBinary))
	}
	results = append(results, CheckClassifiers(ctx, cfg)...)
	results = append(results, CheckLLM(ctx, cfg.LLM))
	if cfg.Content.BaseURL != "" {
		results = append(results, CheckContentAPI(ctx, cfg.Content.BaseURL))
	}
	return results
}

// Failed filters results down to the failures.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
