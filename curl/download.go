package curl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/willdrewes/easy-curl-client/client/download"
)

// Strategy selects how a download is written. The zero value streams.
type Strategy int

const (
	// Chunked streams the body to disk with bounded memory.
	Chunked Strategy = iota
	// Buffered reads the whole body into memory and writes it once.
	Buffered
)

func (s Strategy) String() string {
	switch s {
	case Chunked:
		return "chunked"
	case Buffered:
		return "buffered"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps "chunked" or "buffered" to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "", "chunked":
		return Chunked, nil
	case "buffered":
		return Buffered, nil
	default:
		return 0, fmt.Errorf("unknown download strategy %q", s)
	}
}

func (s Strategy) fn() (download.Func, error) {
	switch s {
	case Chunked:
		return download.Handle, nil
	case Buffered:
		return download.Buffer, nil
	default:
		return nil, configErrorf("unknown download strategy %s", s)
	}
}

// FileInfo describes a completed download. Ownership of the file at
// Path passes to the caller.
type FileInfo struct {
	Path        string
	ContentType string
	Size        int64
}

// PlaceholderExtension is used when no usable extension can be read
// from a URL.
const PlaceholderExtension = "tmp"

var extensionRe = regexp.MustCompile(`^[A-Za-z0-9]{1,3}$`)

// Extension infers a file extension from rawURL. The query string is
// dropped, the text after the last '.' is lowercased, and anything from
// a ':' onward is cut. Results that are not 1 to 3 alphanumerics fall
// back to [PlaceholderExtension].
func Extension(rawURL string) string {
	sanitized, _, _ := strings.Cut(rawURL, "?")
	sanitized = strings.TrimSpace(sanitized)

	ext := sanitized
	if i := strings.LastIndex(sanitized, "."); i >= 0 {
		ext = sanitized[i+1:]
	}
	ext = strings.ToLower(ext)
	ext, _, _ = strings.Cut(ext, ":")

	if !extensionRe.MatchString(ext) {
		return PlaceholderExtension
	}

	return ext
}

// pathToken derives a file name token unique per call. A time-ordered
// random UUID is hashed together with the URL.
func pathToken(rawURL string) (string, error) {
	seed, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating path token: %w", err)
	}

	return uuid.NewSHA1(seed, []byte(rawURL)).String(), nil
}
