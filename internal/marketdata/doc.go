// Package marketdata acquires the inputs the analysis engines run on:
// daily adjusted-close history and options-chain snapshots from a
// configurable HTTP JSON provider.
//
// The client guards the provider with a token-bucket rate limiter and a
// circuit breaker, fans multi-ticker history fetches out under a bounded
// errgroup, and optionally reads through a Redis cache. Fetched series are
// aligned onto a shared date index (rows with any missing or non-finite
// close are dropped, never imputed) and converted to simple daily returns
// and Pearson correlation matrices for the engines.
//
// Per-ticker fetch failures during a multi-ticker fetch are reported in the
// missing list rather than failing the call; only a fully failed fetch
// returns an error.
package marketdata
