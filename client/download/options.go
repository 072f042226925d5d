package download

import (
	"errors"
	"fmt"
	"hash"
)

// Option defines optional settings for writing a download.
// WithChecksum enables checksum validation of the written bytes.
// h is a hash.Hash instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string. h is reset at the start of every
// download, so the option may be reused sequentially but not shared by
// concurrent downloads.
//
// WithProgress enables periodic progress logging via the logger
// supplied to Handle or Buffer.
//
// WithChunkSize sets the copy buffer used when streaming.
type Option func(*options) error

type options struct {
	checksum  *checksumVerifier
	progress  bool
	chunkSize int
}

func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &checksumVerifier{hash: h, expected: expected}
		return nil
	}
}

func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

func WithChunkSize(n int) Option {
	return func(opts *options) error {
		if n <= 0 {
			return fmt.Errorf("chunk size must be positive, got %d", n)
		}
		opts.chunkSize = n
		return nil
	}
}

func parseOptions(optFns []Option) (options, error) {
	opts := options{chunkSize: defaultChunkSize}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return options{}, fmt.Errorf("applying option: %w", err)
		}
	}

	return opts, nil
}
