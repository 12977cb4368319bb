package arr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/telarr-bot/telarr/core/logger"
)

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("arr: unexpected status %d: %s", e.Code, e.Body)
}

// client is the shared HTTP plumbing of the concrete backends.
type client struct {
	name    string
	baseURL string
	apiKey  string
	http    *http.Client
}

func newClient(name, apiHost, apiBase, apiKey string) *client {
	return &client{
		name:    name,
		baseURL: strings.TrimRight(apiHost, "/") + apiBase,
		apiKey:  apiKey,
		http:    buildHTTPClient(),
	}
}

func (c *client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.name, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	took := logger.Took(start)
	if err != nil {
		logger.ARR.Warn("request failed",
			slog.String("event", "arr.request"),
			slog.String("service", c.name),
			slog.String("method", method),
			slog.String("path", path),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %s %s: %w", c.name, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.ARR.Warn("unexpected status",
			slog.String("event", "arr.request"),
			slog.String("service", c.name),
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("http_code", resp.StatusCode),
			slog.Duration("duration", took),
		)
		return &StatusError{Code: resp.StatusCode, Body: logger.SanitizeLimit(string(raw), 256)}
	}

	logger.ARR.Debug("request done",
		slog.String("event", "arr.request"),
		slog.String("service", c.name),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", took),
	)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", c.name, path, err)
	}
	return nil
}

func (c *client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

// getList fetches a listing and degrades to an empty result on failure:
// submenu screens render with zero options instead of aborting the dialogue.
func getList[T any](ctx context.Context, c *client, path string, params url.Values) []T {
	var out []T
	if err := c.get(ctx, path, params, &out); err != nil {
		logger.ARR.Warn("listing degraded to empty",
			slog.String("event", "arr.listing"),
			slog.String("service", c.name),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return nil
	}
	return out
}
