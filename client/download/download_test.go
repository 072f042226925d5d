package download

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func TestStrategies(t *testing.T) {
	body := []byte(strings.Repeat("easycurl", 1024))

	strategies := map[string]Func{
		"chunked":  Handle,
		"buffered": Buffer,
	}

	testCases := map[string]struct {
		contentLength int64
		opts          func() []Option
		expErr        error
	}{
		"knownLength":   {contentLength: int64(len(body))},
		"unknownLength": {contentLength: -1},
		"smallChunks": {
			contentLength: int64(len(body)),
			opts:          func() []Option { return []Option{WithChunkSize(7)} },
		},
		"checksumPass": {
			contentLength: -1,
			opts:          func() []Option { return []Option{WithChecksum(sha256.New(), sum(body))} },
		},
		"checksumFail": {
			contentLength: -1,
			opts:          func() []Option { return []Option{WithChecksum(sha256.New(), sum([]byte("nope")))} },
			expErr:        ErrChecksumMismatch,
		},
		"lengthMismatch": {contentLength: int64(len(body)) + 10, expErr: ErrContentLengthMismatch},
		"withProgress": {
			contentLength: int64(len(body)),
			opts:          func() []Option { return []Option{WithProgress()} },
		},
	}

	for sName, fn := range strategies {
		for name, tc := range testCases {
			t.Run(sName+"/"+name, func(t *testing.T) {
				fs := afero.NewMemMapFs()
				if err := fs.MkdirAll("/dl", 0o755); err != nil {
					t.Fatal(err)
				}

				var opts []Option
				if tc.opts != nil {
					opts = tc.opts()
				}

				n, err := fn(t.Context(), fs, bytes.NewReader(body), tc.contentLength, "/dl/out.bin", discardLogger(), opts...)
				if tc.expErr != nil {
					if !errors.Is(err, tc.expErr) {
						t.Fatalf("exp err %v; got: %v", tc.expErr, err)
					}
					var dlErr *Error
					if !errors.As(err, &dlErr) {
						t.Errorf("exp *Error, got %T", err)
					}
					if ok, _ := afero.Exists(fs, "/dl/out.bin"); ok {
						t.Error("dest file must not exist after failure")
					}
					assertNoTemp(t, fs)
					return
				}

				if err != nil {
					t.Fatalf("exp nil err, got: %v", err)
				}
				if n != int64(len(body)) {
					t.Errorf("exp %d bytes, got %d", len(body), n)
				}

				got, err := afero.ReadFile(fs, "/dl/out.bin")
				if err != nil {
					t.Fatalf("reading result: %v", err)
				}
				if !bytes.Equal(got, body) {
					t.Error("file contents mismatch")
				}
				assertNoTemp(t, fs)
			})
		}
	}
}

func TestChecksumReused(t *testing.T) {
	body := []byte(strings.Repeat("reuse", 512))
	opt := WithChecksum(sha256.New(), sum(body))

	fs := afero.NewMemMapFs()
	runs := []struct {
		name string
		fn   Func
		body []byte
		exp  error
	}{
		{name: "chunked", fn: Handle, body: body},
		{name: "buffered", fn: Buffer, body: body},
		{name: "corrupt", fn: Handle, body: []byte("corrupt"), exp: ErrChecksumMismatch},
		{name: "afterFailure", fn: Buffer, body: body},
	}

	for i, r := range runs {
		dest := fmt.Sprintf("/out-%d.bin", i)
		_, err := r.fn(t.Context(), fs, bytes.NewReader(r.body), -1, dest, discardLogger(), opt)
		if r.exp == nil && err != nil {
			t.Fatalf("%s: exp nil err, got: %v", r.name, err)
		}
		if r.exp != nil && !errors.Is(err, r.exp) {
			t.Fatalf("%s: exp err %v, got: %v", r.name, r.exp, err)
		}
	}
}

func TestHandle_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Handle(ctx, fs, strings.NewReader("data"), 4, "/out.bin", discardLogger())
	if !errors.Is(err, ErrDownloadCancelled) {
		t.Fatalf("exp ErrDownloadCancelled, got: %v", err)
	}
	assertNoTemp(t, fs)
}

func TestBuffer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Buffer(ctx, afero.NewMemMapFs(), strings.NewReader("data"), 4, "/out.bin", discardLogger())
	if !errors.Is(err, ErrDownloadCancelled) {
		t.Fatalf("exp ErrDownloadCancelled, got: %v", err)
	}
}

func TestOptionValidation(t *testing.T) {
	testCases := map[string]Option{
		"nilHash":       WithChecksum(nil, "abc"),
		"emptyChecksum": WithChecksum(sha256.New(), ""),
		"zeroChunk":     WithChunkSize(0),
		"negativeChunk": WithChunkSize(-1),
	}

	for name, opt := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Handle(t.Context(), afero.NewMemMapFs(), strings.NewReader("x"), 1, "/x", discardLogger(), opt)
			if err == nil {
				t.Fatal("exp error for invalid option")
			}
		})
	}
}

func TestEmptyDestPath(t *testing.T) {
	_, err := Handle(t.Context(), afero.NewMemMapFs(), strings.NewReader("x"), 1, "", discardLogger())
	if err == nil {
		t.Fatal("exp error for empty destPath")
	}
}

func assertNoTemp(t *testing.T, fs afero.Fs) {
	t.Helper()

	err := afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(info.Name(), ".easycurl-dl-") {
			t.Errorf("temp file left behind: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walking fs: %v", err)
	}
}
