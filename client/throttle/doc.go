// Package throttle provides an [http.RoundTripper] that rate-limits
// outbound exchanges with a token bucket from [golang.org/x/time/rate].
//
// Wrap an existing transport with [NewRoundTripper]:
//
//	rt, err := throttle.NewRoundTripper(
//		throttle.Config{RPS: 10, Burst: 5},
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//
// Once the burst is spent, exchanges block until a token frees up or the
// request context ends.
package throttle
