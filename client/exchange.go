package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Extra option names understood by [Client.Exchange].
const (
	ExtraHost      = "host"       // string: overrides the Host header.
	ExtraBasicAuth = "basic_auth" // string "user:password".
	ExtraClose     = "close"      // bool: close the connection after the exchange.
)

// Exchange performs one round trip described by ex and returns the raw
// response stream. A body sent without a Content-Type header is labelled
// application/x-www-form-urlencoded. Any status code is a successful exchange; only
// transport-level failures return an error.
//
// Redirects are followed when ex.FollowRedirects is set, up to
// ex.MaxRedirects hops, after which [ErrTooManyRedirects] is returned.
func (c *Client) Exchange(ctx context.Context, ex Exchange) (*RawResponse, error) {
	req, err := ex.request(ctx)
	if err != nil {
		return nil, err
	}

	hc := *c.c
	if ex.Timeout > 0 {
		hc.Timeout = ex.Timeout
	}

	var redirects int
	hc.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if !ex.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) > ex.MaxRedirects {
			return fmt.Errorf("%w: limit %d", ErrTooManyRedirects, ex.MaxRedirects)
		}
		redirects = len(via)
		return nil
	}

	var capture *captureHeader
	if ex.CaptureRequestHeader {
		capture = &captureHeader{next: hc.Transport}
		if capture.next == nil {
			capture.next = http.DefaultTransport
		}
		hc.Transport = capture
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exec http do: %w", err)
	}
	defer c.closeBody(resp, true)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	var raw bytes.Buffer
	if ex.IncludeHeader {
		fmt.Fprintf(&raw, "%s %s\r\n", resp.Proto, resp.Status)
		if err := resp.Header.Write(&raw); err != nil {
			return nil, fmt.Errorf("writing header block: %w", err)
		}
		raw.WriteString("\r\n")
	}
	headerSize := raw.Len()
	raw.Write(body)

	info := Info{
		StatusCode:    resp.StatusCode,
		HeaderSize:    headerSize,
		TotalTime:     time.Since(start),
		EffectiveURL:  resp.Request.URL.String(),
		RedirectCount: redirects,
		ContentType:   resp.Header.Get("Content-Type"),
		Proto:         resp.Proto,
	}
	if capture != nil {
		info.RequestHeader = capture.last()
	}

	c.logger.Debug("exchange complete", "method", req.Method, "url", info.EffectiveURL, "status", info.StatusCode, "elapsed", info.TotalTime.String())

	return &RawResponse{Raw: raw.Bytes(), Info: info}, nil
}

func (ex Exchange) request(ctx context.Context) (*http.Request, error) {
	method := ex.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(ex.Body) > 0 {
		body = bytes.NewReader(ex.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, ex.URL, body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for _, line := range ex.Header {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		value = strings.TrimSpace(value)

		switch http.CanonicalHeaderKey(name) {
		case "Host":
			req.Host = value
		case "Content-Length":
			// net/http derives it from the body.
		default:
			req.Header.Add(name, value)
		}
	}

	if len(ex.Body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if ex.UserAgent != "" {
		req.Header.Set("User-Agent", ex.UserAgent)
	}

	for name, v := range ex.Extra {
		if err := applyExtra(req, name, v); err != nil {
			return nil, err
		}
	}

	return req, nil
}

func applyExtra(req *http.Request, name string, v any) error {
	switch name {
	case ExtraHost:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string, got %T", ErrUnsupportedOption, name, v)
		}
		req.Host = s
	case ExtraBasicAuth:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string, got %T", ErrUnsupportedOption, name, v)
		}
		user, pass, _ := strings.Cut(s, ":")
		req.SetBasicAuth(user, pass)
	case ExtraClose:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: %s must be a bool, got %T", ErrUnsupportedOption, name, v)
		}
		req.Close = b
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOption, name)
	}

	return nil
}

// captureHeader is an http.RoundTripper recording the request line and
// headers of the last request it sent.
type captureHeader struct {
	next http.RoundTripper

	mu  sync.Mutex
	raw string
}

func (ch *captureHeader) RoundTrip(r *http.Request) (*http.Response, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\r\n", r.Method, r.URL.RequestURI(), r.Proto)

	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	fmt.Fprintf(&b, "Host: %s\r\n", host)
	_ = r.Header.Write(&b)
	b.WriteString("\r\n")

	ch.mu.Lock()
	ch.raw = b.String()
	ch.mu.Unlock()

	return ch.next.RoundTrip(r)
}

func (ch *captureHeader) last() string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.raw
}
