package curl

import (
	"strings"

	"github.com/willdrewes/easy-curl-client/client"
)

// Response is the decomposed result of one exchange. It is built once
// and never modified.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Info       client.Info
}

// Decompose splits raw into its header block and body. The first
// Info.HeaderSize bytes are the header block; a size past the end of
// the stream is clamped. The body is kept as bytes.
func Decompose(raw *client.RawResponse) *Response {
	size := min(max(raw.Info.HeaderSize, 0), len(raw.Raw))

	return &Response{
		StatusCode: raw.Info.StatusCode,
		Headers:    ParseHeaders(string(raw.Raw[:size])),
		Body:       raw.Raw[size:],
		Info:       raw.Info,
	}
}

// ParseHeaders reads "Name: value" lines from a header block. Lines
// without ": " are skipped, such as the status line and blank lines.
// A repeated name keeps its last value.
func ParseHeaders(block string) map[string]string {
	headers := make(map[string]string)

	for line := range strings.SplitSeq(block, "\n") {
		line = strings.TrimSuffix(line, "\r")

		name, value, ok := strings.Cut(line, ": ")
		if !ok || name == "" {
			continue
		}
		headers[name] = value
	}

	return headers
}
