// Package services implements the orchestration layer between the HTTP
// handlers and the analysis engines. Each service owns one request flow:
// resolve defaults from configuration, fetch market data, run the engine,
// and shape the response.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Interface-driven data access for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain errors from internal/errors, wrapped with %w
//	5. Business metrics recorded per operation
//
// # Common Service Pattern
//
// Services typically follow this structure:
//
//	type ExampleService struct {
//	    data    MarketData
//	    engine  *example.Engine
//	    cfg     config.AnalyticsConfig
//	    metrics *infrastructure.Metrics
//	    logger  *slog.Logger
//	}
//
//	func (s *ExampleService) Operation(ctx context.Context, input Input) (*Output, error) {
//	    table, missing, err := s.data.FetchHistory(ctx, input.Tickers, start, end)
//	    if err != nil {
//	        return nil, fmt.Errorf("fetch history: %w", err)
//	    }
//	    result, err := s.engine.Run(ctx, table)
//	    s.metrics.RecordAnalysis(ctx, "example", time.Since(started), err)
//	    ...
//	}
//
// # Available Services
//
// The package provides these services:
//
//	- HRPService: correlation matrices and hierarchical clustering
//	- StatArbService: cointegration tests, pair scans, spread series
//	- OptionsService: implied-volatility surfaces
//	- HealthService: process health and dependency readiness
//
// # Error Handling
//
// Services return the domain taxonomy from internal/errors: ValidationError
// for structurally invalid input, InsufficientDataError for valid requests
// over degenerate data, and UpstreamError (wrapped) when the market-data
// provider fails. The HTTP error handler maps each to its RFC 7807 response.
//
// # Testing
//
// Services are tested against a stub MarketData implementation serving
// synthetic aligned tables and chain snapshots, so no network or engine
// mocking is involved.
package services
