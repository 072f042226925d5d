// Package client provides the HTTP transport behind easycurl, built on
// [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithThrottle(5, 2),
//	)
//
// # Exchanges
//
// [Client.Exchange] performs one round trip and returns the undivided
// response stream together with transport [Info]. Every status code is a
// successful exchange:
//
//	raw, err := c.Exchange(ctx, client.Exchange{
//		URL:             "https://api.example.com/v1/items",
//		Method:          http.MethodPost,
//		Header:          []string{"Content-Type: application/json"},
//		Body:            payload,
//		FollowRedirects: true,
//		MaxRedirects:    3,
//		IncludeHeader:   true,
//	})
//
// # Downloading Files
//
// [Client.Fetch] streams a 200 response to the client's filesystem using
// either [download.Handle] or [download.Buffer]:
//
//	tr, err := c.Fetch(ctx, rawURL, "/tmp/file.bin", download.Handle,
//		download.WithChecksum(sha256.New(), expectedHex),
//		download.WithProgress(),
//	)
//
// # Uploading Files
//
// [Client.Upload] posts one file as multipart form data and returns the
// raw response body without inspecting the status.
package client
