package curl

import (
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/willdrewes/easy-curl-client/client"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRedirects = 3
)

// ResolvedOptions is the final option set handed to the transport.
type ResolvedOptions map[Key]any

// Defaults returns the option set every request starts from.
func Defaults() ResolvedOptions {
	return ResolvedOptions{
		KeyTimeout:               defaultTimeout,
		KeyMaxRedirects:          defaultMaxRedirects,
		KeyFollowRedirects:       true,
		KeyCaptureRequestHeaders: true,
		KeyIncludeHeaders:        true,
	}
}

// Compile turns cfg into resolved options. Later steps overwrite
// earlier ones: URL and method, then the computed body, then the
// defaults, then custom options, and finally the header list. cfg is
// not modified.
func Compile(cfg RequestConfig) (ResolvedOptions, error) {
	cfg.Method = strings.ToUpper(cfg.Method)
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	opts := ResolvedOptions{
		KeyURL:    cfg.URL,
		KeyMethod: cfg.Method,
	}

	headers := slices.Clone(cfg.Headers)

	if cfg.Method != http.MethodGet {
		if cfg.Method == http.MethodPost {
			opts[KeyPost] = true
		}

		body := cfg.Body
		if body == "" {
			body = cfg.PostParams.Encode()
		}
		if body != "" {
			opts[KeyBody] = body
			headers = append(headers, Header{Name: "Content-Length", Value: strconv.Itoa(len(body))})
		}
	}

	maps.Copy(opts, Defaults())
	maps.Copy(opts, cfg.Options)

	if len(headers) > 0 {
		opts[KeyHeaders] = headers
	}

	return opts, nil
}

// Clone returns a shallow copy with its own header slice.
func (o ResolvedOptions) Clone() ResolvedOptions {
	if o == nil {
		return nil
	}
	cpy := maps.Clone(o)
	if h, ok := o[KeyHeaders].([]Header); ok {
		cpy[KeyHeaders] = slices.Clone(h)
	}
	return cpy
}

// Exchange serializes o into the transport's request description.
// Headers become raw lines here and nowhere earlier.
func (o ResolvedOptions) Exchange() client.Exchange {
	ex := client.Exchange{
		URL:                  o.string(KeyURL),
		Method:               o.string(KeyMethod),
		Body:                 []byte(o.string(KeyBody)),
		Timeout:              o.duration(KeyTimeout),
		FollowRedirects:      o.bool(KeyFollowRedirects),
		MaxRedirects:         o.int(KeyMaxRedirects),
		CaptureRequestHeader: o.bool(KeyCaptureRequestHeaders),
		IncludeHeader:        o.bool(KeyIncludeHeaders),
		UserAgent:            o.string(KeyUserAgent),
	}

	if o.bool(KeyPost) && (ex.Method == "" || ex.Method == http.MethodGet) {
		ex.Method = http.MethodPost
	}

	if headers, ok := o[KeyHeaders].([]Header); ok {
		ex.Header = make([]string, len(headers))
		for i, h := range headers {
			ex.Header[i] = h.String()
		}
	}

	for k, v := range o {
		if name, ok := k.Passthrough(); ok {
			if ex.Extra == nil {
				ex.Extra = make(map[string]any)
			}
			ex.Extra[name] = v
		}
	}

	return ex
}

func (o ResolvedOptions) string(k Key) string {
	s, _ := o[k].(string)
	return s
}

func (o ResolvedOptions) bool(k Key) bool {
	b, _ := o[k].(bool)
	return b
}

func (o ResolvedOptions) int(k Key) int {
	n, _ := o[k].(int)
	return n
}

func (o ResolvedOptions) duration(k Key) time.Duration {
	d, _ := o[k].(time.Duration)
	return d
}

// normalizeOption checks that v has the shape k expects and returns the
// form stored in the config. Timeouts given as whole seconds become a
// time.Duration.
func normalizeOption(k Key, v any) (any, error) {
	if !k.Valid() {
		return nil, configErrorf("unknown option %q", k)
	}

	if _, ok := k.Passthrough(); ok {
		if v == nil {
			return nil, configErrorf("option %q must not be nil", k)
		}
		return v, nil
	}

	switch k {
	case KeyURL:
		s, ok := v.(string)
		if !ok {
			return nil, configErrorf("option %q must be a string, got %T", k, v)
		}
		if err := validateVar(string(k), s, "required,url"); err != nil {
			return nil, err
		}
		return s, nil

	case KeyMethod:
		s, ok := v.(string)
		if !ok {
			return nil, configErrorf("option %q must be a string, got %T", k, v)
		}
		s = strings.ToUpper(s)
		if err := validateVar(string(k), s, "required,oneof=GET POST PUT DELETE"); err != nil {
			return nil, err
		}
		return s, nil

	case KeyBody, KeyUserAgent:
		s, ok := v.(string)
		if !ok {
			return nil, configErrorf("option %q must be a string, got %T", k, v)
		}
		return s, nil

	case KeyPost, KeyFollowRedirects, KeyCaptureRequestHeaders, KeyIncludeHeaders:
		b, ok := v.(bool)
		if !ok {
			return nil, configErrorf("option %q must be a bool, got %T", k, v)
		}
		return b, nil

	case KeyTimeout:
		var d time.Duration
		switch t := v.(type) {
		case time.Duration:
			d = t
		case int:
			d = time.Duration(t) * time.Second
		default:
			return nil, configErrorf("option %q must be a time.Duration or whole seconds, got %T", k, v)
		}
		if d < 0 {
			return nil, configErrorf("option %q must not be negative", k)
		}
		return d, nil

	case KeyMaxRedirects:
		n, ok := v.(int)
		if !ok {
			return nil, configErrorf("option %q must be an int, got %T", k, v)
		}
		if n < 0 {
			return nil, configErrorf("option %q must not be negative", k)
		}
		return n, nil
	}

	return nil, configErrorf("option %q cannot be stored", k)
}
