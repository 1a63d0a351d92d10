package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/arturoeanton/repolens/internal/port"
)

// ProbeResult is the outcome of one provider probe.
type ProbeResult struct {
	OK        bool   `json:"ok"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	Dimension int    `json:"dimension,omitempty"`
}

// HealthReport covers both provider endpoints.
type HealthReport struct {
	Model     string      `json:"model"`
	Embedding ProbeResult `json:"embedding"`
	Chat      ProbeResult `json:"chat"`
}

// Healthy reports whether both probes succeeded.
func (r HealthReport) Healthy() bool {
	return r.Embedding.OK && r.Chat.OK
}

// HealthCheck probes the embedding and chat endpoints with tiny requests.
// It is only run on demand and never at startup.
func HealthCheck(ctx context.Context, provider port.AIProvider, dimension int) HealthReport {
	report := HealthReport{Model: provider.ModelName()}

	start := time.Now()
	vec, err := provider.Embed(ctx, "Hello world")
	report.Embedding.LatencyMS = time.Since(start).Milliseconds()
	switch {
	case err != nil:
		report.Embedding.Error = err.Error()
	case dimension > 0 && len(vec) != dimension:
		report.Embedding.Error = port.CheckDimension(vec, dimension).Error()
		report.Embedding.Dimension = len(vec)
	default:
		report.Embedding.OK = true
		report.Embedding.Dimension = len(vec)
	}

	start = time.Now()
	reply, err := provider.Complete(ctx, port.CompletionRequest{
		Prompt:    "Say hello in one sentence.",
		MaxTokens: 50,
	})
	report.Chat.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		report.Chat.Error = err.Error()
	} else {
		report.Chat.OK = true
		report.Chat.Detail = reply
	}

	slog.Info("provider health check",
		"model", report.Model,
		"embedding_ok", report.Embedding.OK,
		"chat_ok", report.Chat.OK,
	)
	return report
}
