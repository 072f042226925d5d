package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/afero"

	"github.com/willdrewes/easy-curl-client/client/download"
	"github.com/willdrewes/easy-curl-client/client/throttle"
)

// Client wraps the std-lib *http.Client
// It sets a default *http.Client and *http.Transport, which
// can be customized via optional funcs.
type Client struct {
	c      *http.Client
	fs     afero.Fs
	logger *slog.Logger
}

func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:      &http.Client{},
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.fs != nil {
		client.fs = opts.fs
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// FS returns the filesystem the client writes downloads to.
func (c *Client) FS() afero.Fs {
	return c.fs
}

// Stream issues a GET against rawURL and hands the response to fn once
// the status is confirmed to be 200. The body is drained and closed after
// fn returns.
func (c *Client) Stream(ctx context.Context, rawURL string, fn func(*http.Response) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("instantiating request: %w", err)
	}

	return c.exec(req, http.StatusOK, fn)
}

// Fetch streams the resource at rawURL into destPath on the client's
// filesystem using dl, defaulting to [download.Handle] when dl is nil.
func (c *Client) Fetch(ctx context.Context, rawURL, destPath string, dl download.Func, opts ...download.Option) (Transfer, error) {
	if dl == nil {
		dl = download.Handle
	}

	var tr Transfer
	fetchFn := func(resp *http.Response) error {
		n, err := dl(ctx, c.fs, resp.Body, resp.ContentLength, destPath, c.logger, opts...)
		if err != nil {
			return fmt.Errorf("download: %w", err)
		}

		tr = Transfer{Size: n, ContentType: resp.Header.Get("Content-Type")}

		return nil
	}

	if err := c.Stream(ctx, rawURL, fetchFn); err != nil {
		return Transfer{}, err
	}

	return tr, nil
}

// exec runs the request and injected function on success after validating the expected status code.
func (c *Client) exec(req *http.Request, expCode int, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("exec http do: %w", err)
	}

	discardBody := true
	defer func() { c.closeBody(resp, discardBody) }()

	if resp.StatusCode != expCode {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		return &UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(b),
			Err:        ErrUnexpectedStatusCode,
		}
	}

	if err := fn(resp); err != nil {
		discardBody = false
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

func (c *Client) closeBody(resp *http.Response, discard bool) {
	if discard {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			c.logger.Error("failed to discard unused body", "error", err)
		}
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}
