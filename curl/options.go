package curl

import (
	"errors"
	"log/slog"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"

	"github.com/willdrewes/easy-curl-client/client"
	"github.com/willdrewes/easy-curl-client/client/download"
)

// Option is a functional option for configuring a [Curl] via [New].
type Option func(*options) error

type options struct {
	transport    Transport
	clientOpts   []client.Option
	fs           afero.Fs
	downloadDir  string
	downloadOpts []download.Option
	logger       *slog.Logger
	tracer       trace.Tracer
	url          string
}

// WithTransport replaces the transport built from [client.Build]. The
// transport must write downloads to the same filesystem given by WithFS.
func WithTransport(t Transport) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("transport must not be nil")
		}
		o.transport = t
		return nil
	}
}

// WithClientOptions forwards options to the default transport.
// They are ignored when WithTransport is used.
func WithClientOptions(opts ...client.Option) Option {
	return func(o *options) error {
		o.clientOpts = append(o.clientOpts, opts...)
		return nil
	}
}

// WithFS sets the filesystem downloads land on. Defaults to the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(o *options) error {
		if fs == nil {
			return errors.New("fs must not be nil")
		}
		o.fs = fs
		return nil
	}
}

// WithDownloadDir sets the directory downloads are written to.
// Defaults to [os.TempDir].
func WithDownloadDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return errors.New("download dir must not be empty")
		}
		o.downloadDir = dir
		return nil
	}
}

// WithDownloadOptions applies opts to every download, e.g. progress logging.
func WithDownloadOptions(opts ...download.Option) Option {
	return func(o *options) error {
		o.downloadOpts = append(o.downloadOpts, opts...)
		return nil
	}
}

// WithLogger injects a custom [slog.Logger].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer injects the given tracer. A no-op tracer is used otherwise.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// WithURL presets the request URL.
func WithURL(rawURL string) Option {
	return func(o *options) error {
		o.url = rawURL
		return nil
	}
}
