package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

// execFn represents a func to operate on a response.
type execFn func(response *http.Response) error

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrTooManyRedirects is returned when an exchange follows more redirects than allowed.
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrMalformedHeader is returned for a raw header line without a colon.
	ErrMalformedHeader = errors.New("malformed header line")
	// ErrUnsupportedOption is returned for an extra option the transport does not know.
	ErrUnsupportedOption = errors.New("unsupported transport option")
)

// UnexpectedStatusError is returned when the HTTP response status code
// does not match the expected value.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// Exchange describes a single request/response round trip.
// Header holds raw "Name: value" lines, sent in order.
// Extra carries transport-specific settings keyed by name; see
// [Client.Exchange] for the names understood.
type Exchange struct {
	URL                  string
	Method               string
	Header               []string
	Body                 []byte
	Timeout              time.Duration
	FollowRedirects      bool
	MaxRedirects         int
	CaptureRequestHeader bool
	IncludeHeader        bool
	UserAgent            string
	Extra                map[string]any
}

// Info is the metadata the transport reports about a finished exchange.
type Info struct {
	StatusCode    int
	HeaderSize    int
	TotalTime     time.Duration
	EffectiveURL  string
	RedirectCount int
	ContentType   string
	RequestHeader string
	Proto         string
}

// RawResponse is the undivided response stream: when the exchange asked
// for it, the first Info.HeaderSize bytes of Raw are the header block and
// the remainder is the body.
type RawResponse struct {
	Raw  []byte
	Info Info
}

// Transfer reports what [Client.Fetch] wrote.
type Transfer struct {
	Size        int64
	ContentType string
}
