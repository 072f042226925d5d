package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const tempPattern = ".easycurl-dl-*"

// Handle streams body to destPath in fixed-size chunks. Bytes land in a
// temp file next to destPath which is renamed on success and removed on
// any error. It returns the number of bytes written.
func Handle(ctx context.Context, fs afero.Fs, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) (int64, error) {
	opts, err := parseOptions(optFns)
	if err != nil {
		return 0, err
	}

	body = &contextReader{ctx: ctx, r: body}

	return writeAtomic(fs, destPath, logger, func(w io.Writer) (int64, error) {
		w = opts.wrap(w, logger, destPath, contentLength)

		// writerOnly hides io.ReaderFrom so the chunk size is honoured.
		n, err := io.CopyBuffer(writerOnly{w}, body, make([]byte, opts.chunkSize))
		if err != nil {
			return n, copyErr(err)
		}

		return n, opts.verify(n, contentLength)
	})
}

// Buffer reads the whole body into memory before writing anything, then
// writes it to destPath in a single pass through a temp file. It returns
// the number of bytes written.
func Buffer(ctx context.Context, fs afero.Fs, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) (int64, error) {
	opts, err := parseOptions(optFns)
	if err != nil {
		return 0, err
	}

	data, err := io.ReadAll(&contextReader{ctx: ctx, r: body})
	if err != nil {
		return 0, copyErr(err)
	}

	return writeAtomic(fs, destPath, logger, func(w io.Writer) (int64, error) {
		w = opts.wrap(w, logger, destPath, contentLength)

		n, err := w.Write(data)
		if err != nil {
			return int64(n), fmt.Errorf("writing buffered body: %w", err)
		}

		return int64(n), opts.verify(int64(n), contentLength)
	})
}

// writeAtomic creates a temp file alongside destPath, hands it to fill,
// then syncs and renames it. The temp file is removed when anything fails.
func writeAtomic(fs afero.Fs, destPath string, logger *slog.Logger, fill func(io.Writer) (int64, error)) (int64, error) {
	if destPath == "" {
		return 0, errors.New("destPath must not be empty")
	}

	file, err := afero.TempFile(fs, filepath.Dir(destPath), tempPattern)
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) && !errors.Is(err, afero.ErrFileClosed) {
			logger.Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := fs.Remove(file.Name()); err != nil {
				logger.Error("failed to remove temp file", "error", err)
			}
		}
	}()

	n, err := fill(file)
	if err != nil {
		return n, err
	}

	if err := file.Sync(); err != nil {
		return n, fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return n, fmt.Errorf("closing temp file: %w", err)
	}
	if err := fs.Rename(file.Name(), destPath); err != nil {
		return n, fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true

	return n, nil
}

func (o options) wrap(w io.Writer, logger *slog.Logger, path string, total int64) io.Writer {
	if o.checksum != nil {
		o.checksum.hash.Reset()
		w = io.MultiWriter(w, o.checksum)
	}

	if o.progress {
		w = newProgressWriter(w, logger, path, total)
	}

	return w
}

func (o options) verify(n, contentLength int64) error {
	if contentLength >= 0 && n != contentLength {
		return &Error{
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", contentLength, n),
		}
	}

	return o.checksum.Verify()
}

func copyErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrDownloadCancelled, err)
	}

	return fmt.Errorf("copying file body: %w", err)
}

// contextReader stops yielding bytes once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(p)
}

type writerOnly struct {
	io.Writer
}
