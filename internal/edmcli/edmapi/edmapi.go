// Package edmapi talks to the remote EDM admin API
package edmapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/imroc/req/v3"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/log"
)

// Requester is the request capability the import and grid components depend on.
// Failures carry *errors.HTTPError when the remote answered, and wrap
// errors.ErrTransportFailure when it could not be reached.
type Requester interface {
	Post(ctx context.Context, path string, body any, out any) error
	Get(ctx context.Context, path string, out any) error
}

// Creds are the admin login credentials
type Creds struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Options tune the HTTP client
type Options struct {
	Timeout  time.Duration
	Insecure bool
}

// Client implements Requester on top of req
type Client struct {
	URL    string
	Creds  *Creds
	Client *req.Client
}

// New builds a client for baseURL. When token is empty and creds are set it logs in first.
func New(ctx context.Context, baseURL, token string, creds *Creds, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, errors.ErrEmptyURL
	}

	c := &Client{
		URL:    strings.TrimRight(baseURL, "/"),
		Creds:  creds,
		Client: newHTTPClient(opts),
	}
	if token != "" {
		c.Client.SetCommonBearerAuthToken(token)
		return c, nil
	}
	if creds != nil && creds.Username != "" {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newHTTPClient(opts Options) *req.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := req.C().
		SetUserAgent("edmcli").
		SetTimeout(timeout).
		SetCommonHeader("Accept", "application/json").
		EnableKeepAlives()
	if opts.Insecure {
		client.SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // G402: opt-in for self-signed staging servers
			MinVersion:         tls.VersionTLS12,
		})
	}

	if transport := client.GetTransport(); transport != nil {
		transport.SetMaxIdleConns(100).
			SetIdleConnTimeout(90 * time.Second).
			SetMaxConnsPerHost(10)
	}
	return client
}

// envelope is the {code, data, message} wrapper the admin backend puts around payloads.
// Code zero means success.
type envelope struct {
	Code    *int            `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
}

// requestExecutor is a function that executes an HTTP request
type requestExecutor func(*req.Request, string) (*req.Response, error)

// doRequest handles common HTTP request logic
func (c *Client) doRequest(ctx context.Context, method, path string, out any, executor requestExecutor) error {
	if c == nil || c.Client == nil {
		return fmt.Errorf("edmapi client is not initialized")
	}

	fullURL := c.URL + path
	log.DebugH3("Making %s request to: %s", method, fullURL)

	resp, err := executor(c.Client.R().SetContext(ctx), fullURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.DebugH3("%s request failed for %s: %v", method, fullURL, err)
		return fmt.Errorf("%w: %s %s: %v", errors.ErrTransportFailure, method, path, err)
	}

	body := resp.Bytes()
	if !resp.IsSuccessState() {
		return &errors.HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    remoteMessage(body),
		}
	}

	payload, err := unwrap(body)
	if err != nil {
		var httpErr *errors.HTTPError
		if errors.As(err, &httpErr) {
			httpErr.Method, httpErr.Path, httpErr.StatusCode = method, path, resp.StatusCode
		}
		return err
	}

	if out != nil && len(bytes.TrimSpace(payload)) > 0 && !bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("%w: decode %s %s response: %v", errors.ErrRemoteRejection, method, path, err)
		}
	}

	log.DebugH3("%s request successful for: %s", method, fullURL)
	return nil
}

// unwrap strips the envelope when there is one and turns a non-zero code into a rejection
func unwrap(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || env.Code == nil {
		return trimmed, nil
	}
	if *env.Code != 0 {
		msg := env.Message
		if msg == "" {
			msg = env.Msg
		}
		return nil, &errors.HTTPError{Code: *env.Code, Message: msg}
	}
	return env.Data, nil
}

// remoteMessage pulls a human readable reason out of an error body
func remoteMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Msg != "" {
			return env.Msg
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

// Get issues a GET against path and decodes the payload into out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, out, func(r *req.Request, url string) (*req.Response, error) {
		return r.Get(url)
	})
}

// Post sends body as JSON to path and decodes the payload into out
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, out, func(r *req.Request, url string) (*req.Response, error) {
		if body == nil {
			body = struct{}{}
		}
		return r.SetBodyJsonMarshal(body).Post(url)
	})
}
