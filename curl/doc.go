// Package curl builds, executes and decomposes single HTTP exchanges.
//
// A [Curl] accumulates a [RequestConfig] through chained setters. The
// first setter failure is recorded, turns later setters into no-ops, and
// surfaces from [Curl.Err], [Curl.Execute] and [Curl.Download]:
//
//	c, err := curl.New()
//	body, err := c.SetURL("https://api.example.com/items").
//		SetMethod("post").
//		SetPostParams(map[string]string{"name": "widget"}).
//		SetHeaders("Accept: application/json").
//		SetOption(curl.KeyTimeout, 10*time.Second).
//		Execute(ctx)
//
// [Compile] layers the request onto [Defaults] and the custom options;
// [Decompose] splits the raw response into headers and body.
//
// [Curl.Download] writes a resource under the download directory using
// either the [Chunked] or [Buffered] strategy and reports a [FileInfo].
package curl
