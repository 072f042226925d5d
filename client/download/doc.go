// Package download writes HTTP response bodies to an [afero.Fs] with
// optional checksum validation and progress reporting.
//
// # Strategies
//
// [Handle] streams the body in fixed-size chunks, so memory use stays
// flat regardless of the resource size. [Buffer] reads the whole body
// first and writes it in one pass. Both land bytes in a temporary file
// alongside the destination and rename it on success:
//
//	n, err := download.Handle(ctx, afero.NewOsFs(), resp.Body, resp.ContentLength, destPath, logger,
//		download.WithChunkSize(64<<10),
//		download.WithChecksum(sha256.New(), expectedHex),
//	)
//
// Most callers should use [github.com/willdrewes/easy-curl-client/client.Client.Fetch],
// which invokes either function after checking the response status.
package download
