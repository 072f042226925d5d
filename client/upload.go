package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sync"
)

// Upload posts the file at path on the client's filesystem as a single
// multipart form field and returns the raw response body. The file is
// streamed, so the request is sent with chunked transfer encoding. The
// status code is not inspected.
func (c *Client) Upload(ctx context.Context, rawURL, field, path string) ([]byte, error) {
	if field == "" {
		return nil, errors.New("field must not be empty")
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening upload file: %w", err)
	}

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, pr)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("instantiating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var (
		size int64
		wg   sync.WaitGroup
	)
	wg.Go(func() {
		defer f.Close()

		n, err := writeFormFile(w, field, filepath.Base(path), f)
		size = n
		pw.CloseWithError(err)
	})

	// Closing the read side unblocks a writer the server never drained.
	defer func() {
		pr.Close()
		wg.Wait()
	}()

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exec http do: %w", err)
	}
	defer c.closeBody(resp, true)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	pr.Close()
	wg.Wait()

	c.logger.Debug("upload complete", "url", rawURL, "field", field, "status", resp.StatusCode, "bytes", size)

	return body, nil
}

// writeFormFile writes src as the only part of w and closes w. It
// returns the number of file bytes copied.
func writeFormFile(w *multipart.Writer, field, name string, src io.Reader) (int64, error) {
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return 0, fmt.Errorf("creating form file: %w", err)
	}

	n, err := io.Copy(part, src)
	if err != nil {
		return n, fmt.Errorf("copying upload file: %w", err)
	}

	if err := w.Close(); err != nil {
		return n, fmt.Errorf("closing multipart writer: %w", err)
	}

	return n, nil
}
