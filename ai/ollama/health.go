package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// healthCheckTimeout bounds a single probe of the Ollama server.
const healthCheckTimeout = 3 * time.Second

// waitDelays are the pauses between startup connection attempts.
var waitDelays = []time.Duration{
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
	30 * time.Second,
}

// healthChecker probes the Ollama server's tags endpoint.
// Listing models is the cheapest request that exercises the full stack
// without loading a model.
type healthChecker struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func newHealthChecker(host string) *healthChecker {
	return &healthChecker{
		url:    host + "/api/tags",
		client: &http.Client{Timeout: healthCheckTimeout},
		logger: slog.Default().With("component", "ollama-health"),
	}
}

// Check performs a single health probe.
func (h *healthChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// Wait retries health probes with increasing delays until the server
// responds or the delays are exhausted. Returns the last probe error on
// failure so callers can decide to run in restricted mode.
func (h *healthChecker) Wait(ctx context.Context) error {
	err := h.Check(ctx)
	if err == nil {
		return nil
	}

	for attempt, delay := range waitDelays {
		h.logger.Warn("ollama not ready, retrying",
			"attempt", attempt+1,
			"delay", delay,
			"err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		err = h.Check(ctx)
		if err == nil {
			h.logger.Info("ollama ready", "attempts", attempt+2)
			return nil
		}
	}

	h.logger.Error("ollama never became ready", "err", err)
	return err
}
