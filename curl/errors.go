package curl

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every [*ConfigurationError].
	ErrConfiguration = errors.New("configuration error")
	// ErrDownload matches every [*DownloadError].
	ErrDownload = errors.New("download error")

	ErrEmptyDownload  = errors.New("downloaded file is empty")
	ErrUnreadableFile = errors.New("downloaded file is not readable")
)

// ConfigurationError reports a request that cannot be built, either
// because of field-level validation failures or a malformed value.
type ConfigurationError struct {
	Fields FieldErrors
	Err    error
}

func (e *ConfigurationError) Error() string {
	switch {
	case len(e.Fields) > 0:
		return fmt.Sprintf("%v: %s", ErrConfiguration, e.Fields)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", ErrConfiguration, e.Err)
	default:
		return ErrConfiguration.Error()
	}
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Err: fmt.Errorf(format, args...)}
}

// DownloadError is the single error surface of [Curl.Download]. Code is
// the HTTP status when the server answered with something other than 200.
type DownloadError struct {
	URL  string
	Path string
	Code int
	Err  error
}

func (e *DownloadError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%v: %s [%d]: %v", ErrDownload, e.URL, e.Code, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrDownload, e.URL, e.Err)
}

func (e *DownloadError) Is(target error) bool {
	return target == ErrDownload
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
