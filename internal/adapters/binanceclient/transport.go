package binanceclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// transport issues GET, POST, and DELETE calls against the exchange and
// normalizes every failure mode into *APIError: network failures and
// unparseable bodies carry the sentinel code -1, exchange-reported errors
// keep their original code and message. No retries happen at this layer -
// callers decide whether an idempotent read is worth retrying.
type transport struct {
	httpClient *http.Client
	apiKey     string
}

func (t *transport) get(ctx context.Context, url string, p *params, authenticated bool) ([]byte, error) {
	return t.do(ctx, http.MethodGet, url, p, authenticated)
}

func (t *transport) post(ctx context.Context, url string, p *params, authenticated bool) ([]byte, error) {
	return t.do(ctx, http.MethodPost, url, p, authenticated)
}

func (t *transport) delete(ctx context.Context, url string, p *params, authenticated bool) ([]byte, error) {
	return t.do(ctx, http.MethodDelete, url, p, authenticated)
}

// do executes a single request. Parameters travel in the query string for
// every method: the exchange accepts order parameters that way, and it keeps
// the signed payload identical to what is sent.
func (t *transport) do(ctx context.Context, method, url string, p *params, authenticated bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, transportError(err)
	}
	if p != nil {
		req.URL.RawQuery = p.Encode()
	}
	if authenticated {
		req.Header.Set(apiKeyHeader, t.apiKey)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	// Error bodies are probed on every response: the exchange reports some
	// failures with a 200 status.
	var apiErr APIError
	_ = json.Unmarshal(body, &apiErr)
	if apiErr.populated() {
		return body, &apiErr
	}

	if resp.StatusCode != http.StatusOK {
		return body, transportError(fmt.Errorf("unexpected HTTP status %d", resp.StatusCode))
	}

	return body, nil
}
