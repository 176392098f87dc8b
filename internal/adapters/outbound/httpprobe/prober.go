package httpprobe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stackshot/stackshot/internal/domain"
)

// Prober implements domain.StatusProber with a plain HTTP GET.
type Prober struct {
	client    *http.Client
	userAgent string
}

// New creates a Prober. A nil client gets a 10s default; the caller's context
// deadline still applies per request.
func New(client *http.Client, userAgent string) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Prober{client: client, userAgent: userAgent}
}

// Probe requests baseURL+path and reports the status code. Transport failures
// are reported in APIResult.Err; the status is 0 in that case.
func (p *Prober) Probe(ctx context.Context, baseURL, path, apiKey string) domain.APIResult {
	url := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	res := domain.APIResult{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	if apiKey != "" {
		req.Header.Set("X-Api-Key", apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			res.Err = "timeout: " + err.Error()
		} else {
			res.Err = err.Error()
		}
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	res.Status = resp.StatusCode
	return res
}
