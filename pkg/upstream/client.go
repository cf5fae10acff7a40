package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"acaradar-web/internal/pkg/logger"
)

// QueryParam is one ordered query pair. Keys may repeat (journals[]).
type QueryParam struct {
	Key   string
	Value string
}

// Executor issues a single upstream call on behalf of a browser session.
type Executor interface {
	Execute(ctx context.Context, holder CookieHolder, method, path string, body any, query []QueryParam) (*Response, error)
}

// Client talks to the upstream API. It never retries: one Execute is one network call.
type Client struct {
	BaseURL string
	Client  *http.Client
	jar     *CookieJar
	logger  logger.ILogger
}

// Ensure Client implements Executor
var _ Executor = &Client{}

func NewClient(baseURL string, jar *CookieJar, log logger.ILogger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		// Transport defaults only; the poll budget bounds the slow path.
		Client: &http.Client{},
		jar:    jar,
		logger: log,
	}
}

func (c *Client) Execute(ctx context.Context, holder CookieHolder, method, path string, body any, query []QueryParam) (*Response, error) {
	target := c.buildURL(path, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal upstream body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.jar != nil {
		if cookie := c.jar.Extract(holder); cookie != "" {
			req.Header.Set("Cookie", cookie)
		}
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		c.logger.Warn("Upstream", "Upstream unreachable", map[string]interface{}{
			"method": method,
			"url":    target,
			"error":  err.Error(),
		})
		return nil, &UnavailableError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("Upstream", "Upstream response cut short", map[string]interface{}{
			"method": method,
			"url":    target,
			"error":  err.Error(),
		})
		return nil, &UnavailableError{Method: method, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	// Cookies are only taken from a complete response.
	// Header.Values canonicalizes the key, so set-cookie and Set-Cookie both match.
	if c.jar != nil {
		c.jar.MergeAndStore(holder, resp.Header.Values("Set-Cookie"))
	}

	c.logger.Debug("Upstream", "Upstream call finished", map[string]interface{}{
		"method": method,
		"url":    target,
		"status": resp.StatusCode,
	})

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

func (c *Client) buildURL(path string, query []QueryParam) string {
	target := c.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) == 0 {
		return target
	}

	encoded := make([]string, 0, len(query))
	for _, p := range query {
		encoded = append(encoded, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + strings.Join(encoded, "&")
}
