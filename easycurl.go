// Package easycurl is the entry point for building and executing
// single HTTP exchanges and file transfers.
package easycurl

import (
	"context"
	"fmt"

	"github.com/willdrewes/easy-curl-client/client"
	"github.com/willdrewes/easy-curl-client/curl"
)

// New instantiates a *curl.Curl with the provided options.
// If not specified, an OS filesystem, the system temp dir and a
// default *client.Client are used.
func New(opts ...curl.Option) (*curl.Curl, error) {
	return curl.New(opts...)
}

type uploadRequest struct {
	URL   string `json:"url" validate:"required,url"`
	Field string `json:"field" validate:"required"`
	Path  string `json:"path" validate:"required"`
}

// UploadFile posts the file at localPath under fieldName as multipart
// form data and returns the raw response body untouched. The status
// code is not inspected.
func UploadFile(ctx context.Context, remoteURL, fieldName, localPath string, opts ...client.Option) ([]byte, error) {
	if err := curl.Validate(uploadRequest{URL: remoteURL, Field: fieldName, Path: localPath}); err != nil {
		return nil, err
	}

	c, err := client.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("building client: %w", err)
	}

	return c.Upload(ctx, remoteURL, fieldName, localPath)
}
