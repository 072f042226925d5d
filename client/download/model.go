package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
)

// defaultChunkSize is the copy buffer used by [Handle] when
// [WithChunkSize] is not supplied.
const defaultChunkSize = 32 << 10 // 32KB

var (
	ErrContentLengthMismatch = errors.New("content length mismatch")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrDownloadCancelled     = errors.New("download cancelled")
)

// Error wraps one of the package sentinels with detail about
// what was observed.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Func is the shape shared by [Handle] and [Buffer], letting callers
// pick a strategy as a value.
type Func func(ctx context.Context, fs afero.Fs, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) (int64, error)
