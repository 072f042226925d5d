package curl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/willdrewes/easy-curl-client/client"
	"github.com/willdrewes/easy-curl-client/client/download"
)

// Transport performs the network side of a [Curl]. [*client.Client]
// satisfies it.
type Transport interface {
	Exchange(ctx context.Context, ex client.Exchange) (*client.RawResponse, error)
	Fetch(ctx context.Context, rawURL, destPath string, dl download.Func, opts ...download.Option) (client.Transfer, error)
}

// Curl accumulates a request configuration, executes it, and keeps the
// most recent result. It is not safe for concurrent use.
type Curl struct {
	cfg RequestConfig
	err error

	transport    Transport
	fs           afero.Fs
	downloadDir  string
	downloadOpts []download.Option
	logger       *slog.Logger
	tracer       trace.Tracer

	resolved ResolvedOptions
	resp     *Response
	file     *FileInfo
}

// New returns a Curl ready to be configured. Unless WithTransport is
// given, the transport is a [client.Client] writing to the same
// filesystem.
func New(optFns ...Option) (*Curl, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying curl option: %w", err)
		}
	}

	c := Curl{
		cfg:          RequestConfig{Method: http.MethodGet},
		fs:           opts.fs,
		downloadDir:  opts.downloadDir,
		downloadOpts: opts.downloadOpts,
		logger:       opts.logger,
		tracer:       opts.tracer,
		transport:    opts.transport,
	}

	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.downloadDir == "" {
		c.downloadDir = os.TempDir()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	if c.transport == nil {
		clientOpts := append([]client.Option{client.WithFS(c.fs), client.WithLogger(c.logger)}, opts.clientOpts...)
		cl, err := client.Build(clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("building transport: %w", err)
		}
		c.transport = cl
	}

	if opts.url != "" {
		c.SetURL(opts.url)
		if c.err != nil {
			return nil, c.err
		}
	}

	return &c, nil
}

// Err returns the first error recorded by a setter. Once set it is kept
// for the life of the instance and every later setter is a no-op.
func (c *Curl) Err() error {
	return c.err
}

func (c *Curl) fail(err error) *Curl {
	if c.err == nil {
		c.err = err
	}
	return c
}

// /////////////////////////////////////////////////////////////////
// Setters

// SetURL sets the request URL.
func (c *Curl) SetURL(rawURL string) *Curl {
	if c.err != nil {
		return c
	}
	if err := validateVar("url", rawURL, "required,url"); err != nil {
		return c.fail(err)
	}
	c.cfg.URL = rawURL
	return c
}

// SetMethod sets the HTTP method. GET, POST, PUT and DELETE are
// accepted in any case; anything else is a configuration error.
func (c *Curl) SetMethod(method string) *Curl {
	if c.err != nil {
		return c
	}
	method = strings.ToUpper(method)
	if err := validateVar("method", method, "required,oneof=GET POST PUT DELETE"); err != nil {
		return c.fail(err)
	}
	c.cfg.Method = method
	return c
}

// SetPostParams merges params into the form parameters.
func (c *Curl) SetPostParams(params map[string]string) *Curl {
	if c.err != nil {
		return c
	}
	c.cfg.PostParams.Merge(params)
	return c
}

// SetPostParam sets a single form parameter.
func (c *Curl) SetPostParam(key, value string) *Curl {
	if c.err != nil {
		return c
	}
	c.cfg.PostParams.Set(key, value)
	return c
}

// SetHeaders appends raw "Name: value" lines. Nothing is de-duplicated.
// If any line is malformed none are added.
func (c *Curl) SetHeaders(lines ...string) *Curl {
	if c.err != nil {
		return c
	}
	headers := make([]Header, 0, len(lines))
	for _, line := range lines {
		h, err := ParseHeader(line)
		if err != nil {
			return c.fail(&ConfigurationError{Err: err})
		}
		headers = append(headers, h)
	}
	c.cfg.Headers = append(c.cfg.Headers, headers...)
	return c
}

// AddHeader appends one header.
func (c *Curl) AddHeader(name, value string) *Curl {
	return c.addHeaders([]Header{{Name: name, Value: value}})
}

// addHeaders appends headers only when every name is valid.
func (c *Curl) addHeaders(headers []Header) *Curl {
	if c.err != nil {
		return c
	}

	checked := make([]Header, 0, len(headers))
	for _, h := range headers {
		name := strings.TrimSpace(h.Name)
		if name == "" || strings.ContainsAny(name, ":\r\n") {
			return c.fail(configErrorf("invalid header name %q", h.Name))
		}
		checked = append(checked, Header{Name: name, Value: h.Value})
	}
	c.cfg.Headers = append(c.cfg.Headers, checked...)
	return c
}

// SetRequestBody sets a raw body. When non-empty it is sent instead of
// the form parameters.
func (c *Curl) SetRequestBody(body string) *Curl {
	if c.err != nil {
		return c
	}
	c.cfg.Body = body
	return c
}

// SetOption stores a custom option that overrides defaults at compile
// time. KeyHeaders is routed to the header list; it accepts []string
// raw lines or []Header.
func (c *Curl) SetOption(k Key, v any) *Curl {
	if c.err != nil {
		return c
	}

	if k == KeyHeaders {
		switch h := v.(type) {
		case []string:
			return c.SetHeaders(h...)
		case []Header:
			return c.addHeaders(h)
		default:
			return c.fail(configErrorf("option %q must be []string or []Header, got %T", k, v))
		}
	}

	norm, err := normalizeOption(k, v)
	if err != nil {
		return c.fail(err)
	}

	if c.cfg.Options == nil {
		c.cfg.Options = make(map[Key]any)
	}
	c.cfg.Options[k] = norm
	return c
}

// SetOptions stores every option in opts, in key order.
func (c *Curl) SetOptions(opts map[Key]any) *Curl {
	for _, k := range slices.Sorted(maps.Keys(opts)) {
		c.SetOption(k, opts[k])
	}
	return c
}

// /////////////////////////////////////////////////////////////////
// Accessors

func (c *Curl) URL() string         { return c.cfg.URL }
func (c *Curl) Method() string      { return c.cfg.Method }
func (c *Curl) PostParams() Params  { return c.cfg.PostParams.clone() }
func (c *Curl) Headers() []Header   { return slices.Clone(c.cfg.Headers) }
func (c *Curl) RequestBody() string { return c.cfg.Body }

// Config returns a copy of the accumulated configuration.
func (c *Curl) Config() RequestConfig {
	cfg := c.cfg
	cfg.PostParams = c.cfg.PostParams.clone()
	cfg.Headers = slices.Clone(c.cfg.Headers)
	cfg.Options = maps.Clone(c.cfg.Options)
	return cfg
}

// Options returns the options resolved for the last exchange, or nil.
func (c *Curl) Options() ResolvedOptions { return c.resolved.Clone() }

// Response returns the last decomposed response, or nil.
func (c *Curl) Response() *Response { return c.resp }

// StatusCode returns the last status code, or 0.
func (c *Curl) StatusCode() int {
	if c.resp == nil {
		return 0
	}
	return c.resp.StatusCode
}

// ResponseHeaders returns a copy of the last response headers, or nil.
func (c *Curl) ResponseHeaders() map[string]string {
	if c.resp == nil {
		return nil
	}
	return maps.Clone(c.resp.Headers)
}

// ResponseBody returns the last response body, or nil.
func (c *Curl) ResponseBody() []byte {
	if c.resp == nil {
		return nil
	}
	return c.resp.Body
}

// Info returns the transport metadata of the last exchange.
func (c *Curl) Info() client.Info {
	if c.resp == nil {
		return client.Info{}
	}
	return c.resp.Info
}

// FileInfo returns the last successful download, or nil.
func (c *Curl) FileInfo() *FileInfo { return c.file }

// /////////////////////////////////////////////////////////////////
// Operations

// Execute compiles the current configuration, performs one exchange and
// stores the decomposed response. It returns the response body. Every
// call issues a new exchange. Transport errors are returned as they are.
func (c *Curl) Execute(ctx context.Context) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "curl.execute")
	defer span.End()

	body, err := c.execute(ctx, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return body, nil
}

func (c *Curl) execute(ctx context.Context, span trace.Span) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}

	resolved, err := Compile(c.cfg)
	if err != nil {
		return nil, err
	}
	c.resolved = resolved

	ex := resolved.Exchange()
	span.SetAttributes(
		attribute.String("url", ex.URL),
		attribute.String("method", ex.Method),
	)

	raw, err := c.transport.Exchange(ctx, ex)
	if err != nil {
		return nil, err
	}

	c.resp = Decompose(raw)
	span.SetAttributes(attribute.Int("status", c.resp.StatusCode))

	c.logger.Debug("curl execute", "method", ex.Method, "url", ex.URL, "status", c.resp.StatusCode, "headers", len(c.resp.Headers), "bytes", len(c.resp.Body))

	return c.resp.Body, nil
}

// Download fetches rawURL, or the configured URL when rawURL is empty,
// into a fresh file under the download directory. A non-empty rawURL
// also becomes the configured URL. Every failure is a [*DownloadError].
func (c *Curl) Download(ctx context.Context, rawURL string, strategy Strategy) (*FileInfo, error) {
	ctx, span := c.tracer.Start(ctx, "curl.download")
	defer span.End()

	span.SetAttributes(attribute.String("strategy", strategy.String()))

	fi, err := c.download(ctx, rawURL, strategy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return fi, nil
}

func (c *Curl) download(ctx context.Context, rawURL string, strategy Strategy) (*FileInfo, error) {
	target := rawURL
	if target == "" {
		target = c.cfg.URL
	}

	dlErr := func(path string, err error) error {
		de := DownloadError{URL: target, Path: path, Err: err}
		var statusErr *client.UnexpectedStatusError
		if errors.As(err, &statusErr) {
			de.Code = statusErr.StatusCode
		}
		return &de
	}

	if c.err != nil {
		return nil, dlErr("", c.err)
	}

	if err := validateVar("url", target, "required,url"); err != nil {
		return nil, dlErr("", err)
	}
	c.cfg.URL = target

	dl, err := strategy.fn()
	if err != nil {
		return nil, dlErr("", err)
	}

	token, err := pathToken(target)
	if err != nil {
		return nil, dlErr("", err)
	}
	if err := c.fs.MkdirAll(c.downloadDir, 0o755); err != nil {
		return nil, dlErr("", fmt.Errorf("creating download dir: %w", err))
	}
	path := filepath.Join(c.downloadDir, token+"."+Extension(target))

	tr, err := c.transport.Fetch(ctx, target, path, dl, c.downloadOpts...)
	if err != nil {
		return nil, dlErr(path, err)
	}

	if tr.Size <= 0 {
		if err := c.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Debug("removing empty download", "path", path, "error", err)
		}
		return nil, dlErr(path, ErrEmptyDownload)
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return nil, dlErr(path, fmt.Errorf("%w: %w", ErrUnreadableFile, err))
	}
	if err := f.Close(); err != nil {
		return nil, dlErr(path, fmt.Errorf("%w: %w", ErrUnreadableFile, err))
	}

	c.file = &FileInfo{
		Path:        path,
		ContentType: strings.TrimSpace(tr.ContentType),
		Size:        tr.Size,
	}

	c.logger.Debug("curl download", "url", target, "path", path, "strategy", strategy.String(), "bytes", tr.Size)

	return c.file, nil
}
