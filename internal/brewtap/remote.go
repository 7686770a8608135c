package brewtap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrFormulaNotFound is returned for formulae the public API does not know,
// which is expected for third-party taps.
var ErrFormulaNotFound = errors.New("formula not found upstream")

// HTTPDoer describes the HTTP client used by the remote client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteClient fetches formula versions from the formulae.brew.sh API.
type RemoteClient struct {
	baseURL string
	client  HTTPDoer
}

// NewRemoteClient constructs a remote API client. A nil doer falls back to
// a default HTTP client with the given timeout.
func NewRemoteClient(baseURL string, timeout time.Duration, client HTTPDoer) *RemoteClient {
	if client == nil {
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &RemoteClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
	}
}

type formulaDocument struct {
	Name     string `json:"name"`
	Versions struct {
		Stable string `json:"stable"`
	} `json:"versions"`
	Revision int `json:"revision"`
}

// Formula fetches the upstream version of one formula. Transient 5xx
// responses are retried once.
func (c *RemoteClient) Formula(ctx context.Context, name string) (Formula, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Formula{}, errors.New("formula name is required")
	}
	if c.baseURL == "" {
		return Formula{}, errors.New("remote API base URL is not configured")
	}

	endpoint := fmt.Sprintf("%s/formula/%s.json", c.baseURL, url.PathEscape(name))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return Formula{}, err
	}

	var doc formulaDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return Formula{}, fmt.Errorf("parse formula %s: %w", name, err)
	}
	return Formula{
		Name:     doc.Name,
		Version:  doc.Versions.Stable,
		Revision: doc.Revision,
	}, nil
}

func (c *RemoteClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("read response: %w", readErr)
			}
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrFormulaNotFound
		case resp.StatusCode >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
		}
	}
	return nil, lastErr
}
