package curl

import (
	"fmt"
	"strings"
)

// Key identifies one transport option. The named constants form a closed
// set; transport-specific settings travel through [Passthrough].
type Key string

const (
	KeyURL                   Key = "url"
	KeyMethod                Key = "method"
	KeyPost                  Key = "post"
	KeyBody                  Key = "body"
	KeyHeaders               Key = "headers"
	KeyTimeout               Key = "timeout"
	KeyMaxRedirects          Key = "max_redirects"
	KeyFollowRedirects       Key = "follow_redirects"
	KeyCaptureRequestHeaders Key = "capture_request_headers"
	KeyIncludeHeaders        Key = "include_headers"
	KeyUserAgent             Key = "user_agent"
)

const passthroughPrefix = "x-"

var knownKeys = map[Key]struct{}{
	KeyURL:                   {},
	KeyMethod:                {},
	KeyPost:                  {},
	KeyBody:                  {},
	KeyHeaders:               {},
	KeyTimeout:               {},
	KeyMaxRedirects:          {},
	KeyFollowRedirects:       {},
	KeyCaptureRequestHeaders: {},
	KeyIncludeHeaders:        {},
	KeyUserAgent:             {},
}

// Passthrough builds a key whose value is handed to the transport
// verbatim under name.
func Passthrough(name string) Key {
	return Key(passthroughPrefix + name)
}

// Passthrough reports the transport name behind a passthrough key.
func (k Key) Passthrough() (string, bool) {
	name, ok := strings.CutPrefix(string(k), passthroughPrefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Valid reports whether k is a named key or a passthrough key.
func (k Key) Valid() bool {
	if _, ok := knownKeys[k]; ok {
		return true
	}
	_, ok := k.Passthrough()
	return ok
}

func (k Key) String() string {
	return string(k)
}

// ParseKey maps a textual option name to a Key.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown option %q", s)
	}
	return k, nil
}
